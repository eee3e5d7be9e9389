package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Vovarama1992/audioproc/internal/config"
	"github.com/Vovarama1992/audioproc/internal/sequencer"
)

type fakeChat struct {
	inputs []string
	reply  func(piece string) (ChatResponse, error)
}

func (f *fakeChat) Complete(_ context.Context, req ChatRequest) (ChatResponse, error) {
	piece := req.User[strings.Index(req.User, "TEXT:\n")+len("TEXT:\n"):]
	f.inputs = append(f.inputs, piece)
	return f.reply(piece)
}

// один "токен" на слово
type wordCounter struct{}

func (wordCounter) Count(_, text string) int { return len(strings.Fields(text)) }

func cleanConfig() config.RequestConfig {
	return config.Defaults(config.ModeClean)
}

func TestClean_AcceptsGoodResult(t *testing.T) {
	chat := &fakeChat{reply: func(piece string) (ChatResponse, error) {
		return ChatResponse{Content: "  " + strings.ReplaceAll(piece, "teh", "the") + "\n", FinishReason: "stop"}, nil
	}}
	c := NewCleaner(chat, wordCounter{}, zaptest.NewLogger(t))

	res, err := c.Clean(context.Background(), "teh quick brown fox.", cleanConfig(), nil)
	if err != nil {
		t.Fatalf("Clean() error = %v", err)
	}

	if !res.Accepted || res.Text() != "the quick brown fox." {
		t.Errorf("result = %+v", res)
	}
	if res.Confidence != 1 || res.Pieces != 1 || res.Attempts != 1 {
		t.Errorf("confidence=%v pieces=%d attempts=%d", res.Confidence, res.Pieces, res.Attempts)
	}
}

func TestClean_GateKeepsOriginal(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	chat := &fakeChat{reply: func(string) (ChatResponse, error) {
		return ChatResponse{Content: "Completely unrelated answer about weather.", FinishReason: "stop"}, nil
	}}
	c := NewCleaner(chat, wordCounter{}, zap.New(core))

	original := "Chapter one. It was a dark and stormy night, and the rain fell in torrents."
	res, err := c.Clean(context.Background(), original, cleanConfig(), nil)
	if err != nil {
		t.Fatalf("Clean() error = %v", err)
	}

	if res.Accepted {
		t.Errorf("quality %v should be below threshold", res.Quality)
	}
	if res.Text() != original {
		t.Error("rejected result should fall back to original text")
	}
	if logs.FilterMessage("cleaning quality below threshold, keeping original text").Len() != 1 {
		t.Error("expected a gate warning")
	}
}

func TestClean_ThresholdIsConfigurable(t *testing.T) {
	chat := &fakeChat{reply: func(string) (ChatResponse, error) {
		return ChatResponse{Content: "Something else entirely.", FinishReason: "stop"}, nil
	}}
	c := NewCleaner(chat, wordCounter{}, nil)

	cfg := cleanConfig()
	cfg.Cleaning.QualityThreshold = 0

	res, err := c.Clean(context.Background(), "Original words here.", cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Accepted {
		t.Error("zero threshold should accept any result")
	}
}

func TestClean_SplitsByTokenBudgetInOrder(t *testing.T) {
	chat := &fakeChat{reply: func(piece string) (ChatResponse, error) {
		return ChatResponse{Content: strings.ToUpper(strings.TrimSpace(piece)), FinishReason: "stop"}, nil
	}}
	c := NewCleaner(chat, wordCounter{}, zaptest.NewLogger(t))

	cfg := cleanConfig()
	cfg.Cleaning.MaxTokens = 10 // бюджет 9 слов на кусок

	var sentences []string
	for i := 0; i < 12; i++ {
		sentences = append(sentences, "one two three four five.")
	}
	text := strings.Join(sentences, " ")

	res, err := c.Clean(context.Background(), text, cfg, sequencer.NewPacer(0))
	if err != nil {
		t.Fatalf("Clean() error = %v", err)
	}

	if res.Pieces < 2 || len(chat.inputs) != res.Pieces {
		t.Fatalf("pieces = %d, calls = %d", res.Pieces, len(chat.inputs))
	}
	for _, in := range chat.inputs {
		if n := len(strings.Fields(in)); n > 9 {
			t.Errorf("piece has %d tokens, budget 9", n)
		}
	}
	if res.Cleaned != strings.ToUpper(text) {
		t.Errorf("cleaned = %q", res.Cleaned)
	}
}

func TestClean_BlankPiecesNotSent(t *testing.T) {
	chat := &fakeChat{reply: func(piece string) (ChatResponse, error) {
		return ChatResponse{Content: strings.ToUpper(strings.TrimSpace(piece)), FinishReason: "stop"}, nil
	}}
	c := NewCleaner(chat, wordCounter{}, zaptest.NewLogger(t))

	cfg := cleanConfig()
	cfg.Cleaning.MaxTokens = 10

	var sentences []string
	for i := 0; i < 12; i++ {
		sentences = append(sentences, "one two three four five.")
	}
	text := strings.Join(sentences, " ") + strings.Repeat("\n", 600)

	res, err := c.Clean(context.Background(), text, cfg, nil)
	if err != nil {
		t.Fatalf("Clean() error = %v", err)
	}

	for i, in := range chat.inputs {
		if strings.TrimSpace(in) == "" {
			t.Errorf("request %d carries blank input", i+1)
		}
	}
	if res.Pieces != len(chat.inputs) {
		t.Errorf("pieces = %d, calls = %d", res.Pieces, len(chat.inputs))
	}
	if res.Cleaned != strings.ToUpper(text) {
		t.Errorf("trailing blank lines lost: cleaned has %d bytes, want %d", len(res.Cleaned), len(text))
	}
}

func TestClean_FailureReportsAttempts(t *testing.T) {
	calls := 0
	chat := &fakeChat{reply: func(piece string) (ChatResponse, error) {
		calls++
		if calls == 1 {
			return ChatResponse{Content: piece, FinishReason: "stop"}, nil
		}
		return ChatResponse{}, &openai.APIError{HTTPStatusCode: http.StatusUnauthorized}
	}}
	c := NewCleaner(chat, wordCounter{}, zaptest.NewLogger(t))

	cfg := cleanConfig()
	cfg.Cleaning.MaxTokens = 10

	text := strings.Repeat("one two three four five. ", 4)
	res, err := c.Clean(context.Background(), text, cfg, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if res.Attempts != 1 || res.Pieces < 2 {
		t.Errorf("attempts = %d, pieces = %d", res.Attempts, res.Pieces)
	}
}

func TestClean_PermanentErrorFails(t *testing.T) {
	chat := &fakeChat{reply: func(string) (ChatResponse, error) {
		return ChatResponse{}, &openai.APIError{HTTPStatusCode: http.StatusUnauthorized}
	}}
	c := NewCleaner(chat, nil, zaptest.NewLogger(t))

	_, err := c.Clean(context.Background(), "some text", cleanConfig(), nil)

	var cerr *sequencer.ChunkError
	if !errors.As(err, &cerr) {
		t.Fatalf("err = %v, want ChunkError", err)
	}
	if len(chat.inputs) != 1 {
		t.Errorf("calls = %d, want 1", len(chat.inputs))
	}
}

func TestClean_EmptyText(t *testing.T) {
	c := NewCleaner(&fakeChat{}, nil, nil)
	if _, err := c.Clean(context.Background(), " \n\t", cleanConfig(), nil); !errors.Is(err, ErrEmptyText) {
		t.Errorf("err = %v, want ErrEmptyText", err)
	}
}

func TestKeepEdges(t *testing.T) {
	tests := []struct{ original, cleaned, want string }{
		{"Hello world. ", "Hello, world.", "Hello, world. "},
		{"\n\nPara two.\n", "  Paragraph two. ", "\n\nParagraph two.\n"},
		{"   ", "ignored", "   "},
	}
	for _, tt := range tests {
		if got := keepEdges(tt.original, tt.cleaned); got != tt.want {
			t.Errorf("keepEdges(%q, %q) = %q, want %q", tt.original, tt.cleaned, got, tt.want)
		}
	}
}

func TestOpenAIClient_Complete(t *testing.T) {
	var got openai.ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"Clean."},"finish_reason":"length"}]}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient("sk-test", srv.URL+"/v1")
	resp, err := client.Complete(context.Background(), ChatRequest{
		Model:       "gpt-4",
		System:      cleaningSystemPrompt,
		User:        "dirty",
		Temperature: 0.1,
		MaxTokens:   4000,
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	if resp.Content != "Clean." || resp.FinishReason != "length" {
		t.Errorf("resp = %+v", resp)
	}
	if got.Model != "gpt-4" || got.MaxTokens != 4000 || len(got.Messages) != 2 {
		t.Errorf("request = %+v", got)
	}
	if got.Messages[0].Role != openai.ChatMessageRoleSystem || got.Messages[1].Content != "dirty" {
		t.Errorf("messages = %+v", got.Messages)
	}
}

func TestAnalyzeOpenAIError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&openai.APIError{HTTPStatusCode: 401}, "Invalid OpenAI API key."},
		{&openai.APIError{HTTPStatusCode: 429}, "OpenAI rate limit exceeded."},
		{&openai.APIError{HTTPStatusCode: 429, Code: "insufficient_quota"}, "OpenAI quota exhausted, check billing."},
		{&openai.APIError{HTTPStatusCode: 400, Message: "invalid model ID"}, "Model is specified incorrectly."},
		{&openai.APIError{HTTPStatusCode: 503}, "OpenAI internal error."},
		{context.DeadlineExceeded, "Request timed out."},
		{errors.New("disk full"), ""},
	}
	for _, tt := range tests {
		if got := AnalyzeOpenAIError(tt.err); got != tt.want {
			t.Errorf("AnalyzeOpenAIError(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
