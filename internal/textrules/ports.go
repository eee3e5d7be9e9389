package textrules

import (
	"context"
	"errors"
)

var ErrInvalidRule = errors.New("invalid text rule")

// LetterRule — замена одного символа (например, ё → е).
type LetterRule struct {
	From string `yaml:"from"` // 1 rune
	To   string `yaml:"to"`   // 1 rune
}

// WordRule — замена целого слова, чтобы TTS читал его как надо.
type WordRule struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

type Repo interface {
	ListLetterRules(ctx context.Context) ([]LetterRule, error)
	ListWordRules(ctx context.Context) ([]WordRule, error)

	AddLetterRule(ctx context.Context, from, to string) error
	AddWordRule(ctx context.Context, from, to string) error

	DeleteLetterRule(ctx context.Context, from string) error
	DeleteWordRule(ctx context.Context, from string) error
}

type Service interface {
	Process(ctx context.Context, text string) (string, error)
}
