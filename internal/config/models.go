package config

import (
	"slices"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// === каталоги значений, которые показывает меню и проверяет Validate ===

// в клиенте нет константы под gpt-4o-mini-tts
const TTSModelMini = "gpt-4o-mini-tts"

var TTSModels = []string{
	string(openai.TTSModel1),
	string(openai.TTSModel1HD),
	TTSModelMini,
}

var Voices = []string{
	string(openai.VoiceAlloy),
	string(openai.VoiceEcho),
	string(openai.VoiceFable),
	string(openai.VoiceOnyx),
	string(openai.VoiceNova),
	string(openai.VoiceShimmer),
}

var Speeds = []float64{0.75, 1.0, 1.25, 1.5}

var AudioFormats = []string{
	string(openai.SpeechResponseFormatMp3),
	string(openai.SpeechResponseFormatOpus),
	string(openai.SpeechResponseFormatAac),
	string(openai.SpeechResponseFormatFlac),
	string(openai.SpeechResponseFormatWav),
	string(openai.SpeechResponseFormatPcm),
}

var TranscriptionModels = []string{
	openai.Whisper1,
	"gpt-4o-transcribe",
	"gpt-4o-mini-transcribe",
}

var TranscriptionFormats = []string{
	string(openai.AudioResponseFormatJSON),
	string(openai.AudioResponseFormatText),
	string(openai.AudioResponseFormatSRT),
	string(openai.AudioResponseFormatVerboseJSON),
	string(openai.AudioResponseFormatVTT),
}

// Language{Code:""} — автоопределение.
type Language struct {
	Code string
	Name string
}

var Languages = []Language{
	{"", "Auto-detect"},
	{"en", "English"},
	{"es", "Spanish"},
	{"fr", "French"},
	{"de", "German"},
}

var CleaningModels = []string{
	openai.GPT4TurboPreview,
	openai.GPT4,
	openai.GPT3Dot5Turbo,
}

var CleaningLevels = []string{"light", "medium", "aggressive"}

// минимальные паузы между запросами по опубликованным лимитам провайдера
var modelDelays = map[string]time.Duration{
	string(openai.TTSModel1):   600 * time.Millisecond,
	string(openai.TTSModel1HD): 6 * time.Second,
	TTSModelMini:               600 * time.Millisecond,
	openai.Whisper1:            1200 * time.Millisecond,
}

// MinDelayFor — пауза для модели; для чат-моделей и неизвестных 0.
func MinDelayFor(model string) time.Duration {
	return modelDelays[model]
}

func oneOf(list []string, v string) bool {
	return slices.Contains(list, v)
}

// === входные файлы по режимам ===

var TextExtensions = []string{".txt", ".md", ".text"}

var AudioExtensions = []string{".mp3", ".mp4", ".mpeg", ".mpga", ".m4a", ".wav", ".webm", ".ogg", ".flac"}

// InputExtensions — какие файлы берёт режим при обходе каталога.
func InputExtensions(mode Mode) []string {
	if mode == ModeTranscribe {
		return AudioExtensions
	}
	return TextExtensions
}
