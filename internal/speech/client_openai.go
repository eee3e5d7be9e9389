package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

var ErrEmptyAudio = errors.New("provider returned empty audio")

type OpenAIClient struct {
	client *openai.Client
}

func NewOpenAIClient(apiKey, baseURL string) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
	}
}

// TEXT → SPEECH
func (c *OpenAIClient) Synthesize(ctx context.Context, req SynthesisRequest) ([]byte, error) {
	resp, err := c.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(req.Model),
		Input:          req.Input,
		Voice:          openai.SpeechVoice(req.Voice),
		ResponseFormat: openai.SpeechResponseFormat(req.Format),
		Speed:          req.Speed,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, ErrEmptyAudio
	}
	return audio, nil
}

// SPEECH → TEXT
func (c *OpenAIClient) Transcribe(ctx context.Context, req TranscriptionRequest) (openai.AudioResponse, error) {
	// до сети проверяем, что файл вообще читается
	if _, err := os.Stat(req.FilePath); err != nil {
		return openai.AudioResponse{}, fmt.Errorf("open audio: %w", err)
	}

	return c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:       req.Model,
		FilePath:    req.FilePath,
		Prompt:      req.Prompt,
		Temperature: req.Temperature,
		Language:    req.Language,
		Format:      openai.AudioResponseFormat(req.Format),
	})
}
