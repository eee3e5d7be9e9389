package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Vovarama1992/audioproc/internal/ports"
)

// writeRuns — таблица последних запусков из журнала.
func writeRuns(w io.Writer, recs []ports.RunRecord, now time.Time) error {
	if len(recs) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded yet")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tMODE\tSTATUS\tINPUT\tSIZE\tCHUNKS\tATTEMPTS\tTOOK")
	for _, r := range recs {
		status := r.Status
		if r.Error != nil {
			status += ": " + truncate(*r.Error, 40)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			humanize.RelTime(r.StartedAt, now, "ago", "from now"),
			r.Mode,
			status,
			filepath.Base(r.Input),
			humanize.Bytes(uint64(r.Bytes)),
			r.Chunks,
			r.Attempts,
			r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond),
		)
	}
	return tw.Flush()
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if r := []rune(s); len(r) > n {
		return string(r[:n-1]) + "…"
	}
	return s
}
