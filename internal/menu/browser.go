package menu

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/Vovarama1992/audioproc/internal/config"
	"github.com/Vovarama1992/audioproc/internal/converter"
)

// entry — строка файлового браузера.
type entry struct {
	path string
	size int64
}

func listEntries(dir string, mode config.Mode) ([]entry, error) {
	files, err := converter.ListSupported(dir, config.InputExtensions(mode))
	if err != nil {
		return nil, err
	}

	out := make([]entry, 0, len(files))
	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil {
			continue
		}
		out = append(out, entry{path: f, size: info.Size()})
	}
	return out, nil
}

// browse — выбор входа: один файл или все подходящие файлы каталога.
func (m *Menu) browse(mode config.Mode, batch bool) ([]string, error) {
	exts := strings.Join(config.InputExtensions(mode), " ")

	for {
		// === 1. каталог ===
		dir, err := m.p.Line("📁 Directory with input files", ".")
		if err != nil {
			return nil, err
		}

		entries, err := listEntries(dir, mode)
		if err != nil {
			m.p.Printf("⚠️ Cannot read %s: %v\n", dir, err)
			continue
		}
		if len(entries) == 0 {
			m.p.Printf("No supported files (%s) in %s.\n", exts, dir)
			if batch {
				continue
			}
			return m.askPath()
		}

		// === 2. список с размерами ===
		m.p.Printf("\nFiles in %s:\n", dir)
		for i, e := range entries {
			m.p.Printf("  %d) %s (%s)\n", i+1, filepath.Base(e.path), humanize.Bytes(uint64(e.size)))
		}

		if batch {
			ok, err := m.p.Confirm(fmt.Sprintf("Process all %d files?", len(entries)), true)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			files := make([]string, len(entries))
			for i, e := range entries {
				files[i] = e.path
			}
			return files, nil
		}

		// === 3. номер или путь ===
		for {
			ans, err := m.p.Line("Pick a file number or type a path", "1")
			if err != nil {
				return nil, err
			}
			if n, convErr := strconv.Atoi(ans); convErr == nil {
				if n >= 1 && n <= len(entries) {
					return []string{entries[n-1].path}, nil
				}
				m.p.Printf("⚠️ Enter a number between 1 and %d.\n", len(entries))
				continue
			}
			if path, ok := m.checkFile(ans); ok {
				return []string{path}, nil
			}
		}
	}
}

func (m *Menu) askPath() ([]string, error) {
	for {
		ans, err := m.p.Line("Path to input file", "")
		if err != nil {
			return nil, err
		}
		if path, ok := m.checkFile(ans); ok {
			return []string{path}, nil
		}
	}
}

func (m *Menu) checkFile(path string) (string, bool) {
	if path == "" {
		return "", false
	}
	info, err := os.Stat(path)
	if err != nil {
		m.p.Printf("⚠️ %s: file not found.\n", path)
		return "", false
	}
	if info.IsDir() {
		m.p.Printf("⚠️ %s is a directory.\n", path)
		return "", false
	}
	return path, true
}
