package speech

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap/zaptest"

	"github.com/Vovarama1992/audioproc/internal/config"
	"github.com/Vovarama1992/audioproc/internal/retry"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *OpenAIClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewOpenAIClient("sk-test", srv.URL+"/v1")
}

func TestSynthesize_SendsSettings(t *testing.T) {
	var got map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/speech" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("auth header = %q", r.Header.Get("Authorization"))
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "audio/aac")
		_, _ = w.Write([]byte("AUDIO"))
	})

	svc := NewService(client, client, zaptest.NewLogger(t))
	audio, err := svc.Synthesize(context.Background(), config.DefaultSettings().TTS, "Hello there.")
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if string(audio) != "AUDIO" {
		t.Errorf("audio = %q", audio)
	}

	if got["model"] != "tts-1" || got["voice"] != "alloy" || got["response_format"] != "aac" {
		t.Errorf("request = %v", got)
	}
	if got["input"] != "Hello there." || got["speed"] != 1.1 {
		t.Errorf("request = %v", got)
	}
}

func TestSynthesize_RateLimitIsClassified(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"Rate limit reached","type":"requests","code":"rate_limit_exceeded"}}`))
	})

	_, err := client.Synthesize(context.Background(), SynthesisRequest{Model: "tts-1", Voice: "alloy", Input: "x"})
	if err == nil {
		t.Fatal("expected error")
	}
	if kind := retry.Classify(err); kind != retry.KindRateLimited {
		t.Errorf("Classify() = %s, want rate_limited", kind)
	}
}

func TestSynthesize_InvalidKeyIsPermanent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`))
	})

	_, err := client.Synthesize(context.Background(), SynthesisRequest{Model: "tts-1", Voice: "alloy", Input: "x"})

	var apiErr *openai.APIError
	if !errors.As(err, &apiErr) || apiErr.HTTPStatusCode != http.StatusUnauthorized {
		t.Fatalf("err = %v, want 401 APIError", err)
	}
	if kind := retry.Classify(err); kind != retry.KindPermanent {
		t.Errorf("Classify() = %s, want permanent", kind)
	}
}

func TestSynthesize_EmptyAudio(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	_, err := client.Synthesize(context.Background(), SynthesisRequest{Model: "tts-1", Voice: "alloy", Input: "x"})
	if !errors.Is(err, ErrEmptyAudio) {
		t.Errorf("err = %v, want ErrEmptyAudio", err)
	}
}

func writeAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "talk.mp3")
	if err := os.WriteFile(path, []byte("ID3fake"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestTranscribe_JSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/transcriptions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if r.FormValue("model") != "whisper-1" || r.FormValue("language") != "es" {
			t.Errorf("form = %v", r.MultipartForm.Value)
		}
		if _, hdr, err := r.FormFile("file"); err != nil || hdr.Filename != "talk.mp3" {
			t.Errorf("file part: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"hola","language":"spanish","duration":1.5}`))
	})

	cfg := config.DefaultSettings().Transcription
	cfg.Language = "es"

	svc := NewService(client, client, zaptest.NewLogger(t))
	resp, err := svc.Transcribe(context.Background(), cfg, writeAudio(t))
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if resp.Text != "hola" || resp.Language != "spanish" || resp.Duration != 1.5 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestTranscribe_TextFormat(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("plain words\n"))
	})

	resp, err := client.Transcribe(context.Background(), TranscriptionRequest{
		FilePath: writeAudio(t),
		Model:    "whisper-1",
		Format:   "text",
	})
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if resp.Text != "plain words\n" {
		t.Errorf("text = %q", resp.Text)
	}
}

func TestTranscribe_MissingFile(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(http.ResponseWriter, *http.Request) { calls++ })

	_, err := client.Transcribe(context.Background(), TranscriptionRequest{
		FilePath: filepath.Join(t.TempDir(), "nope.wav"),
		Model:    "whisper-1",
	})
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want not exist", err)
	}
	if calls != 0 {
		t.Errorf("server called %d times", calls)
	}
	if retry.Classify(err) != retry.KindPermanent {
		t.Error("local I/O error should be permanent")
	}
}
