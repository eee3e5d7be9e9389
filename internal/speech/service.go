package speech

import (
	"context"
	"path/filepath"

	"github.com/dustin/go-humanize"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/Vovarama1992/audioproc/internal/config"
)

// === Единый сервис (и для стт и для ттс) ===

type Service struct {
	tts Synthesizer
	stt Transcriber
	log *zap.Logger
}

func NewService(tts Synthesizer, stt Transcriber, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		tts: tts,
		stt: stt,
		log: log.Named("speech"),
	}
}

func (s *Service) Synthesize(ctx context.Context, cfg config.TTSSettings, text string) ([]byte, error) {
	audio, err := s.tts.Synthesize(ctx, SynthesisRequest{
		Model:  cfg.Model,
		Voice:  cfg.Voice,
		Format: cfg.Format,
		Speed:  cfg.Speed,
		Input:  text,
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug("audio received",
		zap.String("model", cfg.Model),
		zap.Int("chars", len([]rune(text))),
		zap.String("size", humanize.Bytes(uint64(len(audio)))),
	)
	return audio, nil
}

func (s *Service) Transcribe(ctx context.Context, cfg config.TranscriptionSettings, path string) (openai.AudioResponse, error) {
	resp, err := s.stt.Transcribe(ctx, TranscriptionRequest{
		FilePath:    path,
		Model:       cfg.Model,
		Format:      cfg.Format,
		Language:    cfg.Language,
		Prompt:      cfg.Prompt,
		Temperature: cfg.Temperature,
	})
	if err != nil {
		return openai.AudioResponse{}, err
	}

	s.log.Debug("transcription received",
		zap.String("file", filepath.Base(path)),
		zap.String("language", resp.Language),
		zap.Int("chars", len([]rune(resp.Text))),
	)
	return resp, nil
}
