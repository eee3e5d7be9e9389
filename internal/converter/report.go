package converter

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
)

// WriteText — отчёт по одному файлу для терминала.
func (a Artifact) WriteText(w io.Writer) error {
	var b strings.Builder

	fmt.Fprintf(&b, "\n✅ %s\n", filepath.Base(a.Input))
	for _, p := range a.Paths {
		fmt.Fprintf(&b, "   → %s\n", p)
	}
	fmt.Fprintf(&b, "   size: %s, chunks: %d, attempts: %d\n", humanize.Bytes(uint64(a.Bytes)), a.Chunks, a.Attempts)

	if r := a.Cleaning; r != nil {
		verdict := "accepted"
		if !r.Accepted {
			verdict = "rejected, original text kept"
		}
		fmt.Fprintf(&b, "   cleaning: quality %.2f, confidence %.2f (%s)\n", r.Quality, r.Confidence, verdict)
		for _, c := range r.Changes {
			fmt.Fprintf(&b, "     • %s\n", c)
		}
	}
	for _, u := range a.MirrorURLs {
		fmt.Fprintf(&b, "   mirrored: %s\n", u)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
