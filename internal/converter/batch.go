package converter

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/Vovarama1992/audioproc/internal/ai"
	"github.com/Vovarama1992/audioproc/internal/config"
)

// ExpandInputs раскрывает каталоги в файлы режима (без рекурсии).
// Явно указанные файлы берутся как есть. Порядок стабильный, без повторов.
func ExpandInputs(mode config.Mode, paths []string) ([]string, error) {
	exts := config.InputExtensions(mode)
	seen := make(map[string]bool)
	var out []string

	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInput, err)
		}
		if !info.IsDir() {
			add(p)
			continue
		}

		files, err := ListSupported(p, exts)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			add(f)
		}
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no supported files (%s)", ErrInput, strings.Join(exts, " "))
	}
	return out, nil
}

// ListSupported — файлы каталога с подходящими расширениями, по имени.
func ListSupported(dir string, exts []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInput, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if slices.Contains(exts, strings.ToLower(filepath.Ext(e.Name()))) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// FileResult — строка отчёта по файлу.
type FileResult struct {
	Input     string   `json:"input"`
	Outputs   []string `json:"outputs,omitempty"`
	Bytes     int64    `json:"bytes"`
	Size      string   `json:"size"`
	Attempts  int      `json:"attempts"`
	FailedAt  int      `json:"failed_chunk,omitempty"`
	Quality   *float64 `json:"quality,omitempty"`
	Error     string   `json:"error,omitempty"`
	Diagnosis string   `json:"diagnosis,omitempty"`
	Elapsed   string   `json:"elapsed"`
}

func (r FileResult) OK() bool { return r.Error == "" }

// Summary — итог пачки.
type Summary struct {
	Mode        config.Mode  `json:"mode"`
	Total       int          `json:"total"`
	Succeeded   int          `json:"succeeded"`
	Failed      int          `json:"failed"`
	SuccessRate float64      `json:"success_rate"`
	TotalBytes  int64        `json:"total_bytes"`
	TotalSize   string       `json:"total_size"`
	Elapsed     string       `json:"elapsed"`
	Files       []FileResult `json:"files"`
}

// RunBatch обрабатывает файлы по очереди. Упавший файл не останавливает пачку;
// отмена контекста останавливает, оставшиеся файлы считаются неуспешными.
func (c *Converter) RunBatch(ctx context.Context, cfg config.RequestConfig, files []string) Summary {
	start := c.now()
	sum := Summary{Mode: cfg.Mode, Total: len(files)}

	for i, f := range files {
		c.log.Info("batch file",
			zap.Int("index", i+1),
			zap.Int("total", len(files)),
			zap.String("file", f),
		)

		fileStart := c.now()
		var (
			art Artifact
			err error
		)
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		} else {
			art, err = c.Run(ctx, cfg, f)
		}

		res := FileResult{
			Input:    f,
			Outputs:  art.Paths,
			Bytes:    art.Bytes,
			Size:     humanize.Bytes(uint64(art.Bytes)),
			Attempts: art.Attempts,
			Elapsed:  c.now().Sub(fileStart).Round(time.Millisecond).String(),
		}
		if art.Cleaning != nil {
			q := art.Cleaning.Quality
			res.Quality = &q
		}
		if err != nil {
			res.Error = err.Error()
			res.FailedAt = art.FailedChunk
			res.Diagnosis = ai.AnalyzeOpenAIError(err)
			sum.Failed++
		} else {
			sum.Succeeded++
			sum.TotalBytes += art.Bytes
		}
		sum.Files = append(sum.Files, res)
	}

	if sum.Total > 0 {
		sum.SuccessRate = float64(sum.Succeeded) / float64(sum.Total)
	}
	sum.TotalSize = humanize.Bytes(uint64(sum.TotalBytes))
	sum.Elapsed = c.now().Sub(start).Round(time.Millisecond).String()

	c.log.Info("batch finished",
		zap.Int("total", sum.Total),
		zap.Int("succeeded", sum.Succeeded),
		zap.Int("failed", sum.Failed),
	)
	return sum
}

func (s Summary) OK() bool { return s.Failed == 0 }

// WriteText — отчёт для терминала.
func (s Summary) WriteText(w io.Writer) error {
	var b strings.Builder

	fmt.Fprintf(&b, "\n=== Batch summary (%s) ===\n", s.Mode)
	fmt.Fprintf(&b, "Files:        %d\n", s.Total)
	fmt.Fprintf(&b, "Succeeded:    %d\n", s.Succeeded)
	fmt.Fprintf(&b, "Failed:       %d\n", s.Failed)
	fmt.Fprintf(&b, "Success rate: %.1f%%\n", s.SuccessRate*100)
	fmt.Fprintf(&b, "Output size:  %s\n", s.TotalSize)
	fmt.Fprintf(&b, "Elapsed:      %s\n", s.Elapsed)

	for _, f := range s.Files {
		if f.OK() {
			fmt.Fprintf(&b, "  ✅ %s → %s (%s)\n", filepath.Base(f.Input), strings.Join(f.Outputs, ", "), f.Size)
			continue
		}
		fmt.Fprintf(&b, "  ❌ %s: %s\n", filepath.Base(f.Input), f.Error)
		if f.Diagnosis != "" {
			fmt.Fprintf(&b, "     %s\n", f.Diagnosis)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func (s Summary) JSON() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}
