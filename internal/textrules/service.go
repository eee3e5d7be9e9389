package textrules

import (
	"context"
	"strings"
	"unicode"
)

type service struct {
	repo Repo
}

func NewService(repo Repo) Service {
	return &service{repo: repo}
}

// Process применяет правила к тексту перед синтезом: сначала буквы, потом слова.
// Пробелы и переводы строк не трогаются.
func (s *service) Process(ctx context.Context, text string) (string, error) {
	// 1) letters
	letterRules, err := s.repo.ListLetterRules(ctx)
	if err != nil {
		return "", err
	}

	if len(letterRules) > 0 {
		letters := make(map[rune]rune, len(letterRules))
		for _, rule := range letterRules {
			from, to := []rune(rule.From), []rune(rule.To)
			if len(from) == 1 && len(to) == 1 {
				letters[from[0]] = to[0]
			}
		}
		text = strings.Map(func(r rune) rune {
			if to, ok := letters[r]; ok {
				return to
			}
			return r
		}, text)
	}

	// 2) words
	wordRules, err := s.repo.ListWordRules(ctx)
	if err != nil {
		return "", err
	}
	if len(wordRules) == 0 {
		return text, nil
	}

	words := make(map[string]string, len(wordRules))
	for _, rule := range wordRules {
		words[rule.From] = rule.To
	}
	return replaceWords(text, words), nil
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '\'' || r == '_'
}

// replaceWords меняет только целые слова; пунктуация вокруг остаётся.
func replaceWords(text string, words map[string]string) string {
	var b strings.Builder
	b.Grow(len(text))

	start := -1
	flush := func(end int) {
		w := text[start:end]
		if to, ok := words[w]; ok {
			w = to
		}
		b.WriteString(w)
		start = -1
	}

	for i, r := range text {
		if isWordRune(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			flush(i)
		}
		b.WriteRune(r)
	}
	if start >= 0 {
		flush(len(text))
	}
	return b.String()
}
