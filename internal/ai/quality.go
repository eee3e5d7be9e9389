package ai

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	openai "github.com/sashabaranov/go-openai"
)

// Weights — веса локальной оценки качества.
type Weights struct {
	Length     float64
	Similarity float64
}

// QualityScore — оценка 0..1, насколько очищенный текст остался тем же текстом:
// взвешенная сумма отношения длин и сходства словаря (Жаккар).
func QualityScore(original, cleaned string, w Weights) float64 {
	if strings.TrimSpace(cleaned) == "" {
		return 0
	}
	total := w.Length + w.Similarity
	if total <= 0 {
		return 0
	}

	score := (w.Length*lengthRatio(original, cleaned) + w.Similarity*wordSimilarity(original, cleaned)) / total
	return clamp01(score)
}

func lengthRatio(a, b string) float64 {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	if la == 0 && lb == 0 {
		return 1
	}
	if la > lb {
		la, lb = lb, la
	}
	return float64(la) / float64(lb)
}

func wordSimilarity(a, b string) float64 {
	wa, wb := wordSet(a), wordSet(b)
	if len(wa) == 0 && len(wb) == 0 {
		return 1
	}

	inter := 0
	for w := range wa {
		if _, ok := wb[w]; ok {
			inter++
		}
	}
	union := len(wa) + len(wb) - inter
	return float64(inter) / float64(union)
}

func words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

func wordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range words(s) {
		set[w] = struct{}{}
	}
	return set
}

// Confidence — насколько ответ модели полон, по finish_reason.
func Confidence(finishReason string) float64 {
	switch openai.FinishReason(finishReason) {
	case openai.FinishReasonStop:
		return 1.0
	case openai.FinishReasonLength:
		// ответ обрезан по max_tokens
		return 0.3
	default:
		return 0.6
	}
}

// describeChanges — короткий отчёт об изменениях, считается локально.
func describeChanges(original, cleaned string) []string {
	if original == cleaned {
		return []string{"No changes"}
	}

	var out []string

	ow, cw := words(original), words(cleaned)
	if len(ow) != len(cw) {
		out = append(out, fmt.Sprintf("Word count %d → %d", len(ow), len(cw)))
	}

	oset, cset := wordSet(original), wordSet(cleaned)
	removed, added := 0, 0
	for w := range oset {
		if _, ok := cset[w]; !ok {
			removed++
		}
	}
	for w := range cset {
		if _, ok := oset[w]; !ok {
			added++
		}
	}
	if removed > 0 || added > 0 {
		out = append(out, fmt.Sprintf("Vocabulary: %d words replaced or removed, %d introduced", removed, added))
	}

	if countPunct(original) != countPunct(cleaned) {
		out = append(out, fmt.Sprintf("Punctuation marks %d → %d", countPunct(original), countPunct(cleaned)))
	}

	if strings.Count(original, "\n") != strings.Count(cleaned, "\n") {
		out = append(out, "Line breaks adjusted")
	}

	if len(out) == 0 {
		out = append(out, "Spacing and casing adjusted")
	}
	return out
}

func countPunct(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsPunct(r) {
			n++
		}
	}
	return n
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
