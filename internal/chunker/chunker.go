package chunker

import (
	"strings"
	"unicode"
)

// Split режет текст на куски не длиннее max символов (рун).
// Склейка всех кусков всегда даёт исходный текст.
// Точки разреза: конец предложения → пробел → жёсткий разрез внутри слова.
func Split(text string, max int) []string {
	if text == "" {
		return nil
	}
	if max <= 0 {
		return []string{text}
	}

	runes := []rune(text)
	var chunks []string

	for len(runes) > 0 {
		if len(runes) <= max {
			chunks = append(chunks, string(runes))
			break
		}

		cut := findCut(runes, max)
		chunks = append(chunks, string(runes[:cut]))
		runes = runes[cut:]
	}

	return chunks
}

// IsBlank: кусок из одних пробелов и переводов строк. Такой получается,
// когда серия пробелов длиннее окна; отправлять его в API незачем.
func IsBlank(chunk string) bool {
	return strings.TrimSpace(chunk) == ""
}

// DropBlank оставляет только куски с текстом, порядок сохраняется.
func DropBlank(chunks []string) []string {
	out := chunks[:0:0]
	for _, c := range chunks {
		if !IsBlank(c) {
			out = append(out, c)
		}
	}
	return out
}

// Count — длина в тех же единицах, что и Split.
func Count(text string) int {
	return len([]rune(text))
}

// findCut возвращает позицию разреза в (0, max].
func findCut(runes []rune, max int) int {
	// предложение принимаем, только если кусок не меньше половины окна
	minSentence := max / 2

	for p := max; p > minSentence; p-- {
		if isSentenceBoundary(runes, p) {
			return p
		}
	}

	for p := max; p > 0; p-- {
		if unicode.IsSpace(runes[p-1]) {
			return p
		}
	}

	// одно слово длиннее окна
	return max
}

// isSentenceBoundary: перед p стоит пробел (или перевод строки),
// а перед серией пробелов — знак конца предложения.
func isSentenceBoundary(runes []rune, p int) bool {
	if p <= 0 || p > len(runes) {
		return false
	}
	if !unicode.IsSpace(runes[p-1]) {
		return false
	}
	// внутри серии пробелов не режем, ждём её конца
	if p < len(runes) && unicode.IsSpace(runes[p]) {
		return false
	}
	if runes[p-1] == '\n' {
		return true
	}

	i := p - 1
	for i >= 0 && unicode.IsSpace(runes[i]) {
		i--
	}
	for i >= 0 && isClosing(runes[i]) {
		i--
	}
	return i >= 0 && isTerminal(runes[i])
}

func isTerminal(r rune) bool {
	switch r {
	case '.', '!', '?', '…':
		return true
	}
	return false
}

func isClosing(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '»', '”', '’':
		return true
	}
	return false
}
