package main

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Vovarama1992/audioproc/internal/config"
)

// options — значения флагов. Поверх профиля ложатся только явно заданные.
type options struct {
	profile    string
	outputDir  string
	jsonReport string

	maxAttempts int
	minDelay    time.Duration
	timeout     time.Duration

	tts   config.TTSSettings
	tr    config.TranscriptionSettings
	clean config.CleaningSettings

	setters []setter
}

type setter struct {
	flag  string
	apply func(cfg *config.RequestConfig)
}

func (o *options) on(flag string, fn func(cfg *config.RequestConfig)) {
	o.setters = append(o.setters, setter{flag: flag, apply: fn})
}

// apply накладывает флаги, которые пользователь задал явно.
func (o *options) apply(cmd *cobra.Command, cfg *config.RequestConfig) {
	for _, s := range o.setters {
		if cmd.Flags().Changed(s.flag) {
			s.apply(cfg)
		}
	}
}

func (o *options) registerCommon(cmd *cobra.Command) {
	f := cmd.Flags()

	f.StringVarP(&o.profile, "profile", "p", "", "start from a saved profile")
	f.StringVarP(&o.outputDir, "output-dir", "o", "", "directory for results (default: next to the input)")
	f.StringVar(&o.jsonReport, "json-report", "", "write the batch summary as JSON to this file")

	f.IntVar(&o.maxAttempts, "max-attempts", config.DefaultMaxAttempts, "attempts per request, including the first")
	f.DurationVar(&o.minDelay, "min-delay", 0, "pause between requests (default: per model)")
	f.DurationVar(&o.timeout, "timeout", 0, "timeout of a single request, cleaning included (default: per mode)")

	o.on("output-dir", func(c *config.RequestConfig) { c.OutputDir = o.outputDir })
	o.on("max-attempts", func(c *config.RequestConfig) { c.Sequencing.MaxAttempts = o.maxAttempts })
	o.on("min-delay", func(c *config.RequestConfig) { c.Sequencing.MinDelay = o.minDelay })
	o.on("timeout", func(c *config.RequestConfig) { c.Sequencing.RequestTimeout = o.timeout })
}

func (o *options) registerTTS(cmd *cobra.Command) {
	f := cmd.Flags()
	d := config.DefaultSettings().TTS

	f.StringVarP(&o.tts.Model, "model", "m", d.Model, "TTS model ("+strings.Join(config.TTSModels, ", ")+")")
	f.StringVarP(&o.tts.Voice, "voice", "v", d.Voice, "voice ("+strings.Join(config.Voices, ", ")+")")
	f.StringVarP(&o.tts.Format, "format", "f", d.Format, "audio format ("+strings.Join(config.AudioFormats, ", ")+")")
	f.Float64VarP(&o.tts.Speed, "speed", "s", d.Speed, "speech speed, 0.25 to 4.0")
	f.IntVar(&o.tts.MaxChars, "max-chars", d.MaxChars, "max characters per request")

	o.on("model", func(c *config.RequestConfig) { c.TTS.Model = o.tts.Model })
	o.on("voice", func(c *config.RequestConfig) { c.TTS.Voice = o.tts.Voice })
	o.on("format", func(c *config.RequestConfig) { c.TTS.Format = o.tts.Format })
	o.on("speed", func(c *config.RequestConfig) { c.TTS.Speed = o.tts.Speed })
	o.on("max-chars", func(c *config.RequestConfig) { c.TTS.MaxChars = o.tts.MaxChars })
}

// registerTranscription; prefix нужен, когда на команде есть и TTS-флаги.
func (o *options) registerTranscription(cmd *cobra.Command, prefix string) {
	f := cmd.Flags()
	d := config.DefaultSettings().Transcription

	f.StringVar(&o.tr.Model, prefix+"model", d.Model, "transcription model ("+strings.Join(config.TranscriptionModels, ", ")+")")
	f.StringVar(&o.tr.Format, prefix+"format", d.Format, "response format ("+strings.Join(config.TranscriptionFormats, ", ")+")")
	f.StringVar(&o.tr.Language, prefix+"language", "", "two-letter language code (default: auto-detect)")
	f.StringVar(&o.tr.Prompt, prefix+"prompt", "", "context prompt with names and terms")
	f.Float32Var(&o.tr.Temperature, prefix+"temperature", d.Temperature, "sampling temperature, 0 to 1")

	o.on(prefix+"model", func(c *config.RequestConfig) { c.Transcription.Model = o.tr.Model })
	o.on(prefix+"format", func(c *config.RequestConfig) { c.Transcription.Format = o.tr.Format })
	o.on(prefix+"language", func(c *config.RequestConfig) { c.Transcription.Language = strings.ToLower(o.tr.Language) })
	o.on(prefix+"prompt", func(c *config.RequestConfig) { c.Transcription.Prompt = o.tr.Prompt })
	o.on(prefix+"temperature", func(c *config.RequestConfig) { c.Transcription.Temperature = o.tr.Temperature })
}

// registerCleaning; с префиксом добавляется ещё флаг --clean, включающий чистку.
func (o *options) registerCleaning(cmd *cobra.Command, prefix string) {
	f := cmd.Flags()
	d := config.DefaultSettings().Cleaning

	if prefix != "" {
		f.BoolVar(&o.clean.Enabled, strings.TrimSuffix(prefix, "-"), false, "clean the text with a chat model first")
		o.on(strings.TrimSuffix(prefix, "-"), func(c *config.RequestConfig) { c.Cleaning.Enabled = o.clean.Enabled })
	}

	f.StringVar(&o.clean.Model, prefix+"model", d.Model, "chat model for cleaning")
	f.StringVar(&o.clean.Level, prefix+"level", d.Level, "cleaning level ("+strings.Join(config.CleaningLevels, ", ")+")")
	f.Float32Var(&o.clean.Temperature, prefix+"temperature", d.Temperature, "chat temperature")
	f.IntVar(&o.clean.MaxTokens, prefix+"max-tokens", d.MaxTokens, "max tokens per cleaning request")
	f.StringVar(&o.clean.ContextPrompt, prefix+"context", "", "extra context for the cleaner")
	f.BoolVar(&o.clean.PreserveFormatting, prefix+"preserve-formatting", d.PreserveFormatting, "keep paragraphs and lists")
	f.BoolVar(&o.clean.FixGrammar, prefix+"fix-grammar", d.FixGrammar, "fix grammar and spelling")
	f.BoolVar(&o.clean.ImproveFlow, prefix+"improve-flow", d.ImproveFlow, "smooth sentence flow")
	f.Float64Var(&o.clean.QualityThreshold, prefix+"quality-threshold", d.QualityThreshold, "minimum quality score to accept the cleaned text")

	o.on(prefix+"model", func(c *config.RequestConfig) { c.Cleaning.Model = o.clean.Model })
	o.on(prefix+"level", func(c *config.RequestConfig) { c.Cleaning.Level = o.clean.Level })
	o.on(prefix+"temperature", func(c *config.RequestConfig) { c.Cleaning.Temperature = o.clean.Temperature })
	o.on(prefix+"max-tokens", func(c *config.RequestConfig) { c.Cleaning.MaxTokens = o.clean.MaxTokens })
	o.on(prefix+"context", func(c *config.RequestConfig) { c.Cleaning.ContextPrompt = o.clean.ContextPrompt })
	o.on(prefix+"preserve-formatting", func(c *config.RequestConfig) { c.Cleaning.PreserveFormatting = o.clean.PreserveFormatting })
	o.on(prefix+"fix-grammar", func(c *config.RequestConfig) { c.Cleaning.FixGrammar = o.clean.FixGrammar })
	o.on(prefix+"improve-flow", func(c *config.RequestConfig) { c.Cleaning.ImproveFlow = o.clean.ImproveFlow })
	o.on(prefix+"quality-threshold", func(c *config.RequestConfig) { c.Cleaning.QualityThreshold = o.clean.QualityThreshold })
}
