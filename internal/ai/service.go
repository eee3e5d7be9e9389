package ai

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/Vovarama1992/audioproc/internal/assembler"
	"github.com/Vovarama1992/audioproc/internal/chunker"
	"github.com/Vovarama1992/audioproc/internal/config"
	"github.com/Vovarama1992/audioproc/internal/sequencer"
)

var ErrEmptyText = errors.New("nothing to clean")

// Result — итог чистки одного текста.
type Result struct {
	Original   string
	Cleaned    string
	Quality    float64
	Confidence float64
	Changes    []string
	Pieces     int
	Attempts   int
	Model      string
	Duration   time.Duration

	// Accepted — прошёл ли гейт качества
	Accepted bool
}

// Text — что отдавать дальше: очищенный текст или исходный.
func (r Result) Text() string {
	if r.Accepted {
		return r.Cleaned
	}
	return r.Original
}

type Cleaner struct {
	chat   ChatClient
	tokens TokenCounter
	log    *zap.Logger
}

func NewCleaner(chat ChatClient, tokens TokenCounter, log *zap.Logger) *Cleaner {
	if log == nil {
		log = zap.NewNop()
	}
	if tokens == nil {
		tokens = estimator{}
	}
	return &Cleaner{
		chat:   chat,
		tokens: tokens,
		log:    log.Named("cleaner"),
	}
}

// Clean чистит текст через чат-модель. Длинный текст режется по бюджету токенов,
// куски уходят последовательно через общий pacer модели.
func (c *Cleaner) Clean(ctx context.Context, text string, cfg config.RequestConfig, pacer *sequencer.Pacer) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{}, ErrEmptyText
	}

	start := time.Now()
	cs := cfg.Cleaning
	log := c.log.With(zap.String("model", cs.Model), zap.String("level", cs.Level))

	pieces := c.split(text, cs)

	// куски из одних пробелов в чат не шлём, в склейку они идут как есть
	var (
		send  []string
		index []int
	)
	for i, p := range pieces {
		if !chunker.IsBlank(p) {
			send = append(send, p)
			index = append(index, i)
		}
	}
	log.Info("cleaning text",
		zap.Int("chars", utf8.RuneCountInString(text)),
		zap.Int("pieces", len(send)),
	)

	call := func(ctx context.Context, _ int, piece string) (ChatResponse, error) {
		return c.chat.Complete(ctx, ChatRequest{
			Model:       cs.Model,
			System:      cleaningSystemPrompt,
			User:        buildCleaningPrompt(piece, cs),
			Temperature: cs.Temperature,
			MaxTokens:   cs.MaxTokens,
		})
	}

	seq := sequencer.New[string, ChatResponse](call, pacer, sequencer.OptionsFor(cfg, config.ModeClean))
	results, err := seq.Run(ctx, log, send)
	if err != nil {
		return Result{Pieces: len(send), Attempts: sequencer.TotalAttempts(results), Model: cs.Model}, err
	}

	cleanedPieces := slices.Clone(pieces)
	confidence := 1.0
	for k, r := range results {
		i := index[k]
		cleanedPieces[i] = keepEdges(pieces[i], r.Payload.Content)
		confidence = min(confidence, Confidence(r.Payload.FinishReason))
	}
	cleaned := assembler.AssembleText(cleanedPieces)

	res := Result{
		Original:   text,
		Cleaned:    cleaned,
		Quality:    QualityScore(text, cleaned, Weights{Length: cs.LengthWeight, Similarity: cs.SimilarityWeight}),
		Confidence: confidence,
		Changes:    describeChanges(text, cleaned),
		Pieces:     len(send),
		Attempts:   sequencer.TotalAttempts(results),
		Model:      cs.Model,
		Duration:   time.Since(start),
	}
	res.Accepted = res.Quality >= cs.QualityThreshold

	if res.Accepted {
		log.Info("text cleaned",
			zap.Float64("quality", res.Quality),
			zap.Float64("confidence", res.Confidence),
			zap.Duration("took", res.Duration),
		)
	} else {
		log.Warn("cleaning quality below threshold, keeping original text",
			zap.Float64("quality", res.Quality),
			zap.Float64("threshold", cs.QualityThreshold),
		)
	}
	return res, nil
}

// split — куски, каждый в пределах бюджета токенов на ответ.
func (c *Cleaner) split(text string, cs config.CleaningSettings) []string {
	budget := cs.MaxTokens * 9 / 10
	tokens := c.tokens.Count(cs.Model, text)
	if budget <= 0 || tokens <= budget {
		return []string{text}
	}

	chars := utf8.RuneCountInString(text)
	maxChars := max(chars*budget/tokens, 1)
	for {
		pieces := chunker.Split(text, maxChars)
		if fits(c.tokens, cs.Model, pieces, budget) || maxChars <= 256 {
			return pieces
		}
		maxChars = maxChars * 3 / 4
	}
}

func fits(tc TokenCounter, model string, pieces []string, budget int) bool {
	for _, p := range pieces {
		if tc.Count(model, p) > budget {
			return false
		}
	}
	return true
}

// keepEdges возвращает куску пробелы по краям, которые модель срезает:
// иначе при склейке слипнутся предложения и абзацы.
func keepEdges(original, cleaned string) string {
	if strings.TrimSpace(original) == "" {
		return original
	}
	lead := original[:len(original)-len(strings.TrimLeftFunc(original, unicode.IsSpace))]
	trail := original[len(strings.TrimRightFunc(original, unicode.IsSpace)):]
	return lead + strings.TrimSpace(cleaned) + trail
}

type estimator struct{}

func (estimator) Count(_, text string) int { return EstimateTokens(text) }

// AnalyzeOpenAIError — человекочитаемая диагностика для отчёта.
func AnalyzeOpenAIError(err error) string {
	if err == nil {
		return ""
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if code, _ := apiErr.Code.(string); code == "insufficient_quota" || code == "billing_hard_limit_reached" {
			return "OpenAI quota exhausted, check billing."
		}
		switch {
		case apiErr.HTTPStatusCode == 401:
			return "Invalid OpenAI API key."
		case apiErr.HTTPStatusCode == 404:
			return "Model not found."
		case apiErr.HTTPStatusCode == 429:
			return "OpenAI rate limit exceeded."
		case apiErr.HTTPStatusCode == 400 && strings.Contains(strings.ToLower(apiErr.Message), "model"):
			return "Model is specified incorrectly."
		case apiErr.HTTPStatusCode == 400:
			return "Malformed request to OpenAI."
		case apiErr.HTTPStatusCode >= 500:
			return "OpenAI internal error."
		}
	}

	var reqErr *openai.RequestError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "Request timed out."
	case errors.Is(err, context.Canceled):
		return "Cancelled."
	case errors.As(err, &reqErr):
		return "Unknown OpenAI error: " + reqErr.Error()
	}
	// не ошибка провайдера: диагностировать нечего
	return ""
}
