package speech

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

// Synthesizer — текст → аудио (один кусок).
type Synthesizer interface {
	Synthesize(ctx context.Context, req SynthesisRequest) ([]byte, error)
}

// Transcriber — аудиофайл → текст/структура.
type Transcriber interface {
	Transcribe(ctx context.Context, req TranscriptionRequest) (openai.AudioResponse, error)
}

type SynthesisRequest struct {
	Model  string
	Voice  string
	Format string
	Speed  float64
	Input  string
}

type TranscriptionRequest struct {
	FilePath    string
	Model       string
	Format      string
	Language    string
	Prompt      string
	Temperature float32
}
