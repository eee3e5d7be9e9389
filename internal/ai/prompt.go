package ai

import (
	"fmt"
	"strings"

	"github.com/Vovarama1992/audioproc/internal/config"
)

const cleaningSystemPrompt = "You are an expert text editor specializing in preparing text for speech synthesis."

var levelHints = map[string]string{
	"light":      "Make minor corrections only. Keep wording and structure as they are.",
	"medium":     "Fix grammar and smooth the flow where it helps listening.",
	"aggressive": "Restructure sentences freely for natural speech while keeping the meaning.",
}

// buildCleaningPrompt — пользовательское сообщение для чистки одного куска.
func buildCleaningPrompt(text string, cfg config.CleaningSettings) string {
	var b strings.Builder

	b.WriteString("Clean and improve the text below so it reads naturally when converted to speech.\n\n")

	b.WriteString("Requirements:\n")
	if cfg.FixGrammar {
		b.WriteString("- Fix grammar, punctuation and spelling errors.\n")
	}
	if cfg.ImproveFlow {
		b.WriteString("- Improve sentence structure and flow for natural speech.\n")
	}
	if cfg.PreserveFormatting {
		b.WriteString("- Preserve the original paragraph breaks and formatting.\n")
	} else {
		b.WriteString("- Normalise paragraph breaks; drop markup that cannot be spoken.\n")
	}
	b.WriteString("- Keep the original meaning and intent.\n")
	b.WriteString("- Optimise for clear pronunciation.\n\n")

	level := strings.ToLower(cfg.Level)
	fmt.Fprintf(&b, "Cleaning level: %s. %s\n", strings.ToUpper(level), levelHints[level])

	if ctx := strings.TrimSpace(cfg.ContextPrompt); ctx != "" {
		fmt.Fprintf(&b, "Additional context: %s\n", ctx)
	}

	b.WriteString("\nReturn only the cleaned text, without explanations or markdown.\n\n")
	b.WriteString("TEXT:\n")
	b.WriteString(text)

	return b.String()
}
