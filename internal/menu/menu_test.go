package menu

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/Vovarama1992/audioproc/internal/config"
	"github.com/Vovarama1992/audioproc/internal/profile"
)

func script(lines ...string) *strings.Reader {
	return strings.NewReader(strings.Join(lines, "\n") + "\n")
}

func testEnv() *config.Config {
	return &config.Config{
		OpenAIKey:   "sk-test",
		MaxAttempts: 3,
		BackoffBase: time.Second,
		BackoffMax:  time.Minute,
	}
}

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("data"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestPrompter_Choose(t *testing.T) {
	var out strings.Builder
	p := NewPrompter(script("7", "abc", "2", ""), &out)

	idx, err := p.Choose("Pick:", []string{"a", "b", "c"}, 0)
	if err != nil || idx != 1 {
		t.Fatalf("Choose() = %d, %v; want 1", idx, err)
	}
	if strings.Count(out.String(), "Enter a number between 1 and 3") != 2 {
		t.Errorf("expected two re-prompts:\n%s", out.String())
	}

	idx, err = p.Choose("Pick:", []string{"a", "b", "c"}, 2)
	if err != nil || idx != 2 {
		t.Errorf("default choice = %d, %v; want 2", idx, err)
	}

	if _, err := p.Choose("Pick:", []string{"a"}, 0); !errors.Is(err, ErrAborted) {
		t.Errorf("EOF err = %v, want ErrAborted", err)
	}
}

func TestPrompter_ConfirmAndLine(t *testing.T) {
	p := NewPrompter(script("maybe", "Y", "", "", "value"), &strings.Builder{})

	tests := []struct {
		def  bool
		want bool
	}{
		{false, true},
		{true, true},
		{false, false},
	}
	for i, tt := range tests {
		got, err := p.Confirm("ok?", tt.def)
		if err != nil || got != tt.want {
			t.Errorf("confirm %d = %v, %v; want %v", i, got, err, tt.want)
		}
	}

	if got, _ := p.Line("name", "fallback"); got != "value" {
		t.Errorf("Line() = %q", got)
	}
	if _, err := p.Line("name", "fallback"); !errors.Is(err, ErrAborted) {
		t.Errorf("EOF err = %v", err)
	}
}

func TestMenu_TTSFlowSavesProfile(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.txt", "b.txt", "skip.mp3")
	store := profile.NewStore(filepath.Join(t.TempDir(), "profiles.yaml"))

	in := script(
		"1",    // режим: TTS
		"",     // модель по умолчанию
		"5",    // голос nova
		"5",    // скорость 1.5x
		"1",    // mp3
		"n",    // без чистки
		dir,    // каталог
		"2",    // b.txt
		"",     // рядом с входом
		"y",    // сохранить профиль
		"",     // пустое имя, переспросит
		"fast", // имя
	)
	var out strings.Builder
	m := New(NewPrompter(in, &out), store, testEnv(), zaptest.NewLogger(t))

	ch, err := m.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v\n%s", err, out.String())
	}

	cfg := ch.Config
	if cfg.Mode != config.ModeTTS || ch.Batch {
		t.Errorf("mode = %s batch = %v", cfg.Mode, ch.Batch)
	}
	if cfg.TTS.Model != "tts-1" || cfg.TTS.Voice != "nova" || cfg.TTS.Speed != 1.5 || cfg.TTS.Format != "mp3" {
		t.Errorf("TTS = %+v", cfg.TTS)
	}
	if cfg.Cleaning.Enabled || cfg.OutputDir != "" {
		t.Errorf("cleaning=%v output=%q", cfg.Cleaning.Enabled, cfg.OutputDir)
	}
	if len(ch.Files) != 1 || filepath.Base(ch.Files[0]) != "b.txt" {
		t.Errorf("files = %v", ch.Files)
	}
	if !strings.Contains(out.String(), "a.txt (4 B)") || strings.Contains(out.String(), "skip.mp3") {
		t.Errorf("browser listing:\n%s", out.String())
	}

	saved, err := store.Get("fast")
	if err != nil || saved.TTS.Voice != "nova" {
		t.Errorf("saved profile = %+v, %v", saved.TTS, err)
	}
	if last, ok, _ := store.Last(); !ok || last.TTS.Format != "mp3" {
		t.Errorf("last used = %+v, %v", last.TTS, ok)
	}
}

func TestMenu_BatchTranscriptionFromLastUsed(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "one.mp3", "two.wav", "notes.txt")
	outDir := filepath.Join(t.TempDir(), "results")

	store := profile.NewStore(filepath.Join(t.TempDir(), "profiles.yaml"))
	last := config.DefaultSettings()
	last.TTS.Voice = "echo"
	last.Transcription.Format = "srt"
	if err := store.SaveLast(last); err != nil {
		t.Fatal(err)
	}

	in := script(
		"",     // последние настройки
		"4",    // пачка
		"2",    // транскрипция
		"",     // модель
		"2",    // английский
		"",     // формат из профиля
		"",     // без подсказки
		dir,    // каталог
		"",     // все файлы
		"2",    // свой каталог
		outDir, // путь
		"",     // не сохранять
	)
	m := New(NewPrompter(in, &strings.Builder{}), store, testEnv(), nil)

	ch, err := m.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !ch.Batch || ch.Config.Mode != config.ModeTranscribe || len(ch.Files) != 2 {
		t.Fatalf("choice = %+v", ch)
	}
	tr := ch.Config.Transcription
	if tr.Language != "en" || tr.Format != "srt" || tr.Model != "whisper-1" {
		t.Errorf("transcription = %+v", tr)
	}
	if ch.Config.TTS.Voice != "echo" {
		t.Errorf("profile sections not applied: %+v", ch.Config.TTS)
	}
	if info, err := os.Stat(outDir); err != nil || !info.IsDir() || ch.Config.OutputDir != outDir {
		t.Errorf("output dir = %q, %v", ch.Config.OutputDir, err)
	}
}

func TestMenu_CleanTypedPath(t *testing.T) {
	empty := t.TempDir()
	input := filepath.Join(t.TempDir(), "draft.md")
	touch(t, filepath.Dir(input), "draft.md")

	in := script(
		"3",   // чистка
		"",    // модель
		"3",   // aggressive
		"",    // форматирование
		"n",   // без грамматики
		"",    // поток
		"podcast transcript",
		empty, // пустой каталог
		filepath.Join(empty, "missing.md"),
		input,
		"",
	)
	var out strings.Builder
	m := New(NewPrompter(in, &out), nil, testEnv(), nil)

	ch, err := m.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v\n%s", err, out.String())
	}

	c := ch.Config.Cleaning
	if !c.Enabled || c.Level != "aggressive" || c.FixGrammar || !c.ImproveFlow || c.ContextPrompt != "podcast transcript" {
		t.Errorf("cleaning = %+v", c)
	}
	if len(ch.Files) != 1 || ch.Files[0] != input {
		t.Errorf("files = %v", ch.Files)
	}
	if !strings.Contains(out.String(), "file not found") {
		t.Errorf("missing re-prompt:\n%s", out.String())
	}
}

func TestMenu_EnsureAPIKey(t *testing.T) {
	env := testEnv()
	env.OpenAIKey = ""
	m := New(NewPrompter(script("", "  sk-live  "), &strings.Builder{}), nil, env, nil)

	if err := m.EnsureAPIKey(); err != nil {
		t.Fatal(err)
	}
	if env.OpenAIKey != "sk-live" {
		t.Errorf("key = %q", env.OpenAIKey)
	}
}

func TestMenu_AbortedInput(t *testing.T) {
	m := New(NewPrompter(strings.NewReader(""), &strings.Builder{}), nil, testEnv(), nil)

	if _, err := m.Run(context.Background()); !errors.Is(err, ErrAborted) {
		t.Errorf("err = %v, want ErrAborted", err)
	}
	if again, err := m.Again(); again || err != nil {
		t.Errorf("Again() = %v, %v", again, err)
	}
}
