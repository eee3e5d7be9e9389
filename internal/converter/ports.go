package converter

import (
	"context"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Vovarama1992/audioproc/internal/ai"
	"github.com/Vovarama1992/audioproc/internal/config"
	"github.com/Vovarama1992/audioproc/internal/sequencer"
)

type SpeechService interface {
	Synthesize(ctx context.Context, cfg config.TTSSettings, text string) ([]byte, error)
	Transcribe(ctx context.Context, cfg config.TranscriptionSettings, path string) (openai.AudioResponse, error)
}

type TextCleaner interface {
	Clean(ctx context.Context, text string, cfg config.RequestConfig, pacer *sequencer.Pacer) (ai.Result, error)
}

// TextRules — замены букв и слов перед синтезом.
type TextRules interface {
	Process(ctx context.Context, text string) (string, error)
}
