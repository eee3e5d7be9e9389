package menu

import (
	"context"
	"errors"
	"os"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Vovarama1992/audioproc/internal/config"
	"github.com/Vovarama1992/audioproc/internal/profile"
)

// Choice — итог диалога: что делать и с какими файлами.
type Choice struct {
	Config config.RequestConfig
	Files  []string
	Batch  bool
}

type Menu struct {
	p        *Prompter
	profiles *profile.Store
	env      *config.Config
	log      *zap.Logger
}

func New(p *Prompter, profiles *profile.Store, env *config.Config, log *zap.Logger) *Menu {
	if log == nil {
		log = zap.NewNop()
	}
	return &Menu{p: p, profiles: profiles, env: env, log: log.Named("menu")}
}

var modeTitles = []string{
	"🔊 Text → speech",
	"📝 Speech → text",
	"🧹 Clean text",
	"📦 Batch processing",
}

var batchModeTitles = []string{
	"🔊 Text → speech",
	"📝 Speech → text",
	"🧹 Clean text",
}

var modesInOrder = []config.Mode{config.ModeTTS, config.ModeTranscribe, config.ModeClean}

// EnsureAPIKey спрашивает ключ, если его нет в окружении.
func (m *Menu) EnsureAPIKey() error {
	if m.env.OpenAIKey != "" {
		return nil
	}

	m.p.Printf("\n🔑 OPENAI_API_KEY is not set.\n")
	for {
		key, err := m.p.Line("Enter your OpenAI API key", "")
		if err != nil {
			return err
		}
		if key = strings.TrimSpace(key); key != "" {
			m.env.OpenAIKey = key
			return nil
		}
	}
}

// Run проводит пользователя по вопросам и собирает RequestConfig.
// Дальше работает только converter, меню больше ничего не спрашивает.
func (m *Menu) Run(ctx context.Context) (Choice, error) {
	var ch Choice

	// === 0. профиль ===
	settings, err := m.chooseProfile()
	if err != nil {
		return ch, err
	}

	// === 1. режим ===
	idx, err := m.p.Choose("What do you want to do?", modeTitles, 0)
	if err != nil {
		return ch, err
	}
	if idx == len(modeTitles)-1 {
		ch.Batch = true
		if idx, err = m.p.Choose("Batch mode:", batchModeTitles, 0); err != nil {
			return ch, err
		}
	}
	mode := modesInOrder[idx]
	cfg := config.Resolve(mode, m.env, settings)

	// === 2. настройки режима ===
	switch mode {
	case config.ModeTTS:
		err = m.askTTS(&cfg)
	case config.ModeTranscribe:
		err = m.askTranscription(&cfg)
	case config.ModeClean:
		err = m.askCleaning(&cfg)
	}
	if err != nil {
		return ch, err
	}

	// === 3. файлы ===
	if ch.Files, err = m.browse(mode, ch.Batch); err != nil {
		return ch, err
	}

	// === 4. куда писать ===
	if cfg.OutputDir, err = m.askOutputDir(cfg.OutputDir); err != nil {
		return ch, err
	}

	if err := cfg.Validate(); err != nil {
		return ch, err
	}

	// === 5. профиль на будущее ===
	if err := m.offerSave(cfg.Settings()); err != nil {
		return ch, err
	}
	if m.profiles != nil {
		if err := m.profiles.SaveLast(cfg.Settings()); err != nil {
			m.log.Warn("last used settings not saved", zap.Error(err))
		}
	}

	m.log.Debug("interactive configuration resolved",
		zap.String("mode", string(cfg.Mode)),
		zap.Int("files", len(ch.Files)),
		zap.Bool("batch", ch.Batch),
	)
	ch.Config = cfg
	return ch, ctx.Err()
}

// Again — ещё одна задача?
func (m *Menu) Again() (bool, error) {
	ok, err := m.p.Confirm("\nProcess another file?", false)
	if errors.Is(err, ErrAborted) {
		return false, nil
	}
	return ok, err
}

// === профили ===

func (m *Menu) chooseProfile() (*config.Settings, error) {
	if m.profiles == nil {
		return nil, nil
	}

	names, err := m.profiles.List()
	if err != nil {
		m.log.Warn("profiles unavailable", zap.Error(err))
		return nil, nil
	}
	last, hasLast, err := m.profiles.Last()
	if err != nil {
		m.log.Warn("last used settings unavailable", zap.Error(err))
		hasLast = false
	}
	if len(names) == 0 && !hasLast {
		return nil, nil
	}

	options := []string{"Default settings"}
	if hasLast {
		options = append(options, "Last used settings")
	}
	for _, n := range names {
		options = append(options, "Profile: "+n)
	}

	def := 0
	if hasLast {
		def = 1
	}
	idx, err := m.p.Choose("⚙️ Start from:", options, def)
	if err != nil {
		return nil, err
	}

	switch {
	case idx == 0:
		return nil, nil
	case hasLast && idx == 1:
		return &last, nil
	}

	name := names[idx-len(options)+len(names)]
	s, err := m.profiles.Get(name)
	if err != nil {
		return nil, err
	}
	m.p.Printf("Loaded profile %q.\n", name)
	return &s, nil
}

func (m *Menu) offerSave(s config.Settings) error {
	if m.profiles == nil {
		return nil
	}
	ok, err := m.p.Confirm("💾 Save these settings as a profile?", false)
	if err != nil || !ok {
		return err
	}

	for {
		name, err := m.p.Line("Profile name", "")
		if err != nil {
			return err
		}
		err = m.profiles.Save(name, s)
		if errors.Is(err, profile.ErrInvalidName) {
			m.p.Printf("⚠️ Profile name cannot be empty.\n")
			continue
		}
		if err != nil {
			return err
		}
		m.p.Printf("Profile %q saved to %s.\n", strings.TrimSpace(name), m.profiles.Path())
		return nil
	}
}

// === режимы ===

func (m *Menu) askTTS(cfg *config.RequestConfig) error {
	var err error

	if cfg.TTS.Model, err = m.pick("🎛 TTS model:", config.TTSModels, cfg.TTS.Model); err != nil {
		return err
	}
	if cfg.TTS.Voice, err = m.pick("🗣 Voice:", config.Voices, cfg.TTS.Voice); err != nil {
		return err
	}
	if cfg.TTS.Speed, err = m.pickSpeed(cfg.TTS.Speed); err != nil {
		return err
	}
	if cfg.TTS.Format, err = m.pick("🎧 Audio format:", config.AudioFormats, cfg.TTS.Format); err != nil {
		return err
	}

	clean, err := m.p.Confirm("🧹 Clean the text with a chat model before synthesis?", cfg.Cleaning.Enabled)
	if err != nil {
		return err
	}
	cfg.Cleaning.Enabled = clean
	if clean {
		return m.askCleaningOptions(cfg)
	}
	return nil
}

func (m *Menu) askTranscription(cfg *config.RequestConfig) error {
	var err error

	if cfg.Transcription.Model, err = m.pick("🎛 Transcription model:", config.TranscriptionModels, cfg.Transcription.Model); err != nil {
		return err
	}

	names := make([]string, len(config.Languages))
	def := 0
	for i, l := range config.Languages {
		names[i] = l.Name
		if l.Code == cfg.Transcription.Language {
			def = i
		}
	}
	idx, err := m.p.Choose("🌍 Language:", names, def)
	if err != nil {
		return err
	}
	cfg.Transcription.Language = config.Languages[idx].Code

	if cfg.Transcription.Format, err = m.pick("📄 Output format:", config.TranscriptionFormats, cfg.Transcription.Format); err != nil {
		return err
	}

	cfg.Transcription.Prompt, err = m.p.Line("Context prompt (names, terms; Enter to skip)", cfg.Transcription.Prompt)
	return err
}

func (m *Menu) askCleaning(cfg *config.RequestConfig) error {
	cfg.Cleaning.Enabled = true
	return m.askCleaningOptions(cfg)
}

func (m *Menu) askCleaningOptions(cfg *config.RequestConfig) error {
	var err error
	c := &cfg.Cleaning

	if c.Model, err = m.pick("🤖 Cleaning model:", config.CleaningModels, c.Model); err != nil {
		return err
	}
	if c.Level, err = m.pick("🧽 Cleaning level:", config.CleaningLevels, c.Level); err != nil {
		return err
	}
	if c.PreserveFormatting, err = m.p.Confirm("Preserve formatting?", c.PreserveFormatting); err != nil {
		return err
	}
	if c.FixGrammar, err = m.p.Confirm("Fix grammar?", c.FixGrammar); err != nil {
		return err
	}
	if c.ImproveFlow, err = m.p.Confirm("Improve flow?", c.ImproveFlow); err != nil {
		return err
	}
	c.ContextPrompt, err = m.p.Line("Context for the cleaner (Enter to skip)", c.ContextPrompt)
	return err
}

func (m *Menu) askOutputDir(current string) (string, error) {
	options := []string{"Next to the input file", "Custom directory"}
	def := 0
	if current != "" {
		def = 1
	}
	idx, err := m.p.Choose("📂 Where to save results?", options, def)
	if err != nil || idx == 0 {
		return "", err
	}

	for {
		dir, err := m.p.Line("Output directory", current)
		if err != nil {
			return "", err
		}
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			m.p.Printf("⚠️ Cannot create %s: %v\n", dir, err)
			continue
		}
		return dir, nil
	}
}

// === помощники ===

// pick — выбор строки из списка; текущее значение по умолчанию.
func (m *Menu) pick(title string, options []string, current string) (string, error) {
	def := slices.Index(options, current)
	idx, err := m.p.Choose(title, options, def)
	if err != nil {
		return "", err
	}
	return options[idx], nil
}

func (m *Menu) pickSpeed(current float64) (float64, error) {
	speeds := config.Speeds
	if !slices.Contains(speeds, current) {
		speeds = append([]float64{current}, speeds...)
	}

	labels := make([]string, len(speeds))
	for i, s := range speeds {
		labels[i] = strconv.FormatFloat(s, 'f', -1, 64) + "x"
		if s == current {
			labels[i] += " (current)"
		}
	}

	idx, err := m.p.Choose("⏩ Speed:", labels, slices.Index(speeds, current))
	if err != nil {
		return 0, err
	}
	return speeds[idx], nil
}
