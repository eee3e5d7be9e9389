package config

import (
	"fmt"
	"time"
)

type Mode string

const (
	ModeTTS        Mode = "tts"
	ModeTranscribe Mode = "transcribe"
	ModeClean      Mode = "clean"
)

const (
	DefaultMaxAttempts = 3
	DefaultBackoffBase = time.Second
	DefaultBackoffMax  = 60 * time.Second

	DefaultMaxChars         = 4096
	DefaultQualityThreshold = 0.5
)

// таймауты одного запроса по режимам
var requestTimeouts = map[Mode]time.Duration{
	ModeTTS:        60 * time.Second,
	ModeTranscribe: 300 * time.Second,
	ModeClean:      60 * time.Second,
}

type TTSSettings struct {
	Model    string  `yaml:"model" json:"model"`
	Voice    string  `yaml:"voice" json:"voice"`
	Format   string  `yaml:"format" json:"format"`
	Speed    float64 `yaml:"speed" json:"speed"`
	MaxChars int     `yaml:"max_chars" json:"max_chars"`
}

type TranscriptionSettings struct {
	Model       string  `yaml:"model" json:"model"`
	Format      string  `yaml:"format" json:"format"`
	Language    string  `yaml:"language,omitempty" json:"language,omitempty"`
	Prompt      string  `yaml:"prompt,omitempty" json:"prompt,omitempty"`
	Temperature float32 `yaml:"temperature" json:"temperature"`
}

type CleaningSettings struct {
	Enabled            bool    `yaml:"enabled" json:"enabled"`
	Model              string  `yaml:"model" json:"model"`
	Temperature        float32 `yaml:"temperature" json:"temperature"`
	MaxTokens          int     `yaml:"max_tokens" json:"max_tokens"`
	Level              string  `yaml:"level" json:"level"`
	PreserveFormatting bool    `yaml:"preserve_formatting" json:"preserve_formatting"`
	FixGrammar         bool    `yaml:"fix_grammar" json:"fix_grammar"`
	ImproveFlow        bool    `yaml:"improve_flow" json:"improve_flow"`
	ContextPrompt      string  `yaml:"context_prompt,omitempty" json:"context_prompt,omitempty"`

	// гейт качества: ниже порога берём исходный текст
	QualityThreshold float64 `yaml:"quality_threshold" json:"quality_threshold"`
	LengthWeight     float64 `yaml:"length_weight" json:"length_weight"`
	SimilarityWeight float64 `yaml:"similarity_weight" json:"similarity_weight"`
}

type SequencingSettings struct {
	// 0: пауза из таблицы моделей
	MinDelay time.Duration
	// 0: таймаут по режиму; явное значение действует на все запросы задачи
	RequestTimeout time.Duration
	MaxAttempts    int
	BackoffBase    time.Duration
	BackoffMax     time.Duration
}

// Settings — то, что сохраняется в профиль.
type Settings struct {
	TTS           TTSSettings           `yaml:"tts" json:"tts"`
	Transcription TranscriptionSettings `yaml:"transcription" json:"transcription"`
	Cleaning      CleaningSettings      `yaml:"cleaning" json:"cleaning"`
}

// RequestConfig — итоговые параметры одной задачи.
// Передаётся по значению; после Validate не меняется.
type RequestConfig struct {
	Mode          Mode
	TTS           TTSSettings
	Transcription TranscriptionSettings
	Cleaning      CleaningSettings
	Sequencing    SequencingSettings
	OutputDir     string
}

func DefaultSettings() Settings {
	return Settings{
		TTS: TTSSettings{
			Model:    "tts-1",
			Voice:    "alloy",
			Format:   "aac",
			Speed:    1.1,
			MaxChars: DefaultMaxChars,
		},
		Transcription: TranscriptionSettings{
			Model:       "whisper-1",
			Format:      "json",
			Temperature: 0,
		},
		Cleaning: CleaningSettings{
			Model:              "gpt-4-turbo-preview",
			Temperature:        0.1,
			MaxTokens:          4000,
			Level:              "medium",
			PreserveFormatting: true,
			FixGrammar:         true,
			ImproveFlow:        true,
			QualityThreshold:   DefaultQualityThreshold,
			LengthWeight:       0.5,
			SimilarityWeight:   0.5,
		},
	}
}

// Defaults — конфиг режима без профиля и флагов.
func Defaults(mode Mode) RequestConfig {
	s := DefaultSettings()
	return RequestConfig{
		Mode:          mode,
		TTS:           s.TTS,
		Transcription: s.Transcription,
		Cleaning:      s.Cleaning,
		Sequencing: SequencingSettings{
			MaxAttempts: DefaultMaxAttempts,
			BackoffBase: DefaultBackoffBase,
			BackoffMax:  DefaultBackoffMax,
		},
	}
}

// Resolve собирает конфиг задачи: дефолты → профиль → окружение.
// Флаги и ответы меню накладываются поверх результата.
func Resolve(mode Mode, env *Config, profile *Settings) RequestConfig {
	c := Defaults(mode)
	if profile != nil {
		c = c.WithSettings(*profile)
	}
	return c.WithEnv(env)
}

// WithEnv — ретраи из окружения.
func (c RequestConfig) WithEnv(env *Config) RequestConfig {
	if env == nil {
		return c
	}
	c.Sequencing.MaxAttempts = env.MaxAttempts
	c.Sequencing.BackoffBase = env.BackoffBase
	c.Sequencing.BackoffMax = env.BackoffMax
	if c.OutputDir == "" {
		c.OutputDir = env.OutputDir
	}
	return c
}

// WithSettings — секции профиля заменяют дефолтные целиком.
// Пустая секция (без модели) пропускается.
func (c RequestConfig) WithSettings(s Settings) RequestConfig {
	if s.TTS.Model != "" {
		c.TTS = s.TTS
		if c.TTS.MaxChars == 0 {
			c.TTS.MaxChars = DefaultMaxChars
		}
	}
	if s.Transcription.Model != "" {
		c.Transcription = s.Transcription
	}
	if s.Cleaning.Model != "" {
		c.Cleaning = s.Cleaning
		if c.Cleaning.LengthWeight == 0 && c.Cleaning.SimilarityWeight == 0 {
			d := DefaultSettings().Cleaning
			c.Cleaning.LengthWeight = d.LengthWeight
			c.Cleaning.SimilarityWeight = d.SimilarityWeight
		}
	}
	return c
}

func (c RequestConfig) Settings() Settings {
	return Settings{
		TTS:           c.TTS,
		Transcription: c.Transcription,
		Cleaning:      c.Cleaning,
	}
}

// CleaningActive — нужен ли вызов чата в этой задаче.
func (c RequestConfig) CleaningActive() bool {
	return c.Mode == ModeClean || (c.Mode == ModeTTS && c.Cleaning.Enabled)
}

// DelayFor — пауза между запросами к модели.
func (c RequestConfig) DelayFor(model string) time.Duration {
	if c.Sequencing.MinDelay > 0 {
		return c.Sequencing.MinDelay
	}
	return MinDelayFor(model)
}

// TimeoutFor — таймаут запроса для режима; явная настройка важнее
// и касается и чистки внутри TTS.
func (c RequestConfig) TimeoutFor(mode Mode) time.Duration {
	if c.Sequencing.RequestTimeout > 0 {
		return c.Sequencing.RequestTimeout
	}
	return requestTimeouts[mode]
}

func (c RequestConfig) Validate() error {
	switch c.Mode {
	case ModeTTS:
		if err := c.TTS.validate(); err != nil {
			return err
		}
	case ModeTranscribe:
		if err := c.Transcription.validate(); err != nil {
			return err
		}
	case ModeClean:
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalid, c.Mode)
	}

	if c.CleaningActive() {
		if err := c.Cleaning.validate(); err != nil {
			return err
		}
	}
	return c.Sequencing.validate()
}

func (t TTSSettings) validate() error {
	if !oneOf(TTSModels, t.Model) {
		return fmt.Errorf("%w: unknown TTS model %q", ErrInvalid, t.Model)
	}
	if !oneOf(Voices, t.Voice) {
		return fmt.Errorf("%w: unknown voice %q", ErrInvalid, t.Voice)
	}
	if !oneOf(AudioFormats, t.Format) {
		return fmt.Errorf("%w: unsupported audio format %q", ErrInvalid, t.Format)
	}
	if t.Speed < 0.25 || t.Speed > 4.0 {
		return fmt.Errorf("%w: speed must be between 0.25 and 4.0, got %v", ErrInvalid, t.Speed)
	}
	if t.MaxChars < 1 || t.MaxChars > DefaultMaxChars {
		return fmt.Errorf("%w: max chars must be between 1 and %d, got %d", ErrInvalid, DefaultMaxChars, t.MaxChars)
	}
	return nil
}

func (t TranscriptionSettings) validate() error {
	if !oneOf(TranscriptionModels, t.Model) {
		return fmt.Errorf("%w: unknown transcription model %q", ErrInvalid, t.Model)
	}
	if !oneOf(TranscriptionFormats, t.Format) {
		return fmt.Errorf("%w: unsupported transcription format %q", ErrInvalid, t.Format)
	}
	if t.Language != "" && len(t.Language) != 2 {
		return fmt.Errorf("%w: language must be a two-letter code, got %q", ErrInvalid, t.Language)
	}
	if t.Temperature < 0 || t.Temperature > 1 {
		return fmt.Errorf("%w: transcription temperature must be between 0 and 1", ErrInvalid)
	}
	return nil
}

func (cs CleaningSettings) validate() error {
	if cs.Model == "" {
		return fmt.Errorf("%w: cleaning model is empty", ErrInvalid)
	}
	if !oneOf(CleaningLevels, cs.Level) {
		return fmt.Errorf("%w: unknown cleaning level %q", ErrInvalid, cs.Level)
	}
	if cs.Temperature < 0 || cs.Temperature > 2 {
		return fmt.Errorf("%w: cleaning temperature must be between 0 and 2", ErrInvalid)
	}
	if cs.MaxTokens < 1 {
		return fmt.Errorf("%w: max tokens must be positive", ErrInvalid)
	}
	if cs.QualityThreshold < 0 || cs.QualityThreshold > 1 {
		return fmt.Errorf("%w: quality threshold must be between 0 and 1", ErrInvalid)
	}
	if cs.LengthWeight < 0 || cs.SimilarityWeight < 0 || cs.LengthWeight+cs.SimilarityWeight == 0 {
		return fmt.Errorf("%w: quality weights must be non-negative and not both zero", ErrInvalid)
	}
	return nil
}

func (s SequencingSettings) validate() error {
	if s.MaxAttempts < 1 {
		return fmt.Errorf("%w: max attempts must be at least 1", ErrInvalid)
	}
	if s.MinDelay < 0 {
		return fmt.Errorf("%w: min delay must be non-negative", ErrInvalid)
	}
	if s.RequestTimeout < 0 {
		return fmt.Errorf("%w: request timeout must be non-negative", ErrInvalid)
	}
	if s.BackoffBase <= 0 || s.BackoffMax < s.BackoffBase {
		return fmt.Errorf("%w: backoff must satisfy 0 < base <= max", ErrInvalid)
	}
	return nil
}
