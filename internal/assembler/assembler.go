package assembler

import (
	"fmt"
	"io"
	"strings"

	json "github.com/goccy/go-json"
	openai "github.com/sashabaranov/go-openai"
)

// WriteAudio пишет куски аудио подряд, в порядке чанков.
// Для mp3/aac/opus/flac-стримов достаточно сырой склейки, перекодирования нет.
func WriteAudio(w io.Writer, parts [][]byte) (int64, error) {
	var written int64
	for i, p := range parts {
		n, err := w.Write(p)
		written += int64(n)
		if err != nil {
			return written, fmt.Errorf("write audio part %d: %w", i, err)
		}
	}
	return written, nil
}

// AssembleText склеивает очищенные куски текста по порядку.
func AssembleText(parts []string) string {
	return strings.Join(parts, "")
}

// === транскрипция ===

// Segment — кусок транскрипции с таймкодами.
type Segment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcript — поля, которые реально нужны из ответа Whisper.
type Transcript struct {
	Text     string    `json:"text"`
	Language string    `json:"language,omitempty"`
	Duration float64   `json:"duration,omitempty"`
	Segments []Segment `json:"segments,omitempty"`
}

// ExtractTranscript достаёт нужные поля из ответа.
func ExtractTranscript(resp openai.AudioResponse) Transcript {
	t := Transcript{
		Text:     resp.Text,
		Language: resp.Language,
		Duration: resp.Duration,
	}
	for _, s := range resp.Segments {
		t.Segments = append(t.Segments, Segment{
			ID:    s.ID,
			Start: s.Start,
			End:   s.End,
			Text:  s.Text,
		})
	}
	return t
}

// IsStructured — форматы, где ответ приходит JSON-ом.
func IsStructured(format string) bool {
	return format == "" ||
		format == string(openai.AudioResponseFormatJSON) ||
		format == string(openai.AudioResponseFormatVerboseJSON)
}

type fullResponse struct {
	Task     string  `json:"task,omitempty"`
	Language string  `json:"language,omitempty"`
	Duration float64 `json:"duration,omitempty"`
	Text     string  `json:"text"`
	Segments any     `json:"segments,omitempty"`
	Words    any     `json:"words,omitempty"`
}

// EncodeTranscriptJSON — полный структурированный ответ, с отступами.
func EncodeTranscriptJSON(resp openai.AudioResponse) ([]byte, error) {
	full := fullResponse{
		Task:     resp.Task,
		Language: resp.Language,
		Duration: resp.Duration,
		Text:     resp.Text,
	}
	if len(resp.Segments) > 0 {
		full.Segments = resp.Segments
	}
	if len(resp.Words) > 0 {
		full.Words = resp.Words
	}

	out, err := json.MarshalIndent(full, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode transcription: %w", err)
	}
	return append(out, '\n'), nil
}
