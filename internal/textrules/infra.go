package textrules

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

type rulesFile struct {
	Letters []LetterRule `yaml:"letters,omitempty"`
	Words   []WordRule   `yaml:"words,omitempty"`
}

// fileRepo — правила в YAML-файле рядом с профилями.
type fileRepo struct {
	path string
	mu   sync.Mutex
}

func NewFileRepo(path string) Repo {
	return &fileRepo{path: path}
}

// ===== LETTERS =====

func (r *fileRepo) ListLetterRules(context.Context) ([]LetterRule, error) {
	f, err := r.load()
	return f.Letters, err
}

func (r *fileRepo) AddLetterRule(_ context.Context, from, to string) error {
	if utf8.RuneCountInString(from) != 1 || utf8.RuneCountInString(to) != 1 {
		return fmt.Errorf("%w: letter rules map one character to one character", ErrInvalidRule)
	}
	return r.update(func(f *rulesFile) {
		for i := range f.Letters {
			if f.Letters[i].From == from {
				f.Letters[i].To = to
				return
			}
		}
		f.Letters = append(f.Letters, LetterRule{From: from, To: to})
	})
}

func (r *fileRepo) DeleteLetterRule(_ context.Context, from string) error {
	return r.update(func(f *rulesFile) {
		out := f.Letters[:0]
		for _, l := range f.Letters {
			if l.From != from {
				out = append(out, l)
			}
		}
		f.Letters = out
	})
}

// ===== WORDS =====

func (r *fileRepo) ListWordRules(context.Context) ([]WordRule, error) {
	f, err := r.load()
	return f.Words, err
}

func (r *fileRepo) AddWordRule(_ context.Context, from, to string) error {
	if from == "" {
		return fmt.Errorf("%w: word is empty", ErrInvalidRule)
	}
	return r.update(func(f *rulesFile) {
		for i := range f.Words {
			if f.Words[i].From == from {
				f.Words[i].To = to
				return
			}
		}
		f.Words = append(f.Words, WordRule{From: from, To: to})
	})
}

func (r *fileRepo) DeleteWordRule(_ context.Context, from string) error {
	return r.update(func(f *rulesFile) {
		out := f.Words[:0]
		for _, w := range f.Words {
			if w.From != from {
				out = append(out, w)
			}
		}
		f.Words = out
	})
}

// ===== файл =====

func (r *fileRepo) load() (rulesFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.read()
}

func (r *fileRepo) update(fn func(*rulesFile)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := r.read()
	if err != nil {
		return err
	}
	fn(&f)

	data, err := yaml.Marshal(&f)
	if err != nil {
		return fmt.Errorf("encode text rules: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("create rules dir: %w", err)
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write text rules: %w", err)
	}
	return os.Rename(tmp, r.path)
}

func (r *fileRepo) read() (rulesFile, error) {
	var f rulesFile

	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return f, fmt.Errorf("read text rules %s: %w", r.path, err)
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("parse text rules %s: %w", r.path, err)
	}
	return f, nil
}
