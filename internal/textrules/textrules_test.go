package textrules

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestProcess(t *testing.T) {
	ctx := context.Background()
	repo := NewFileRepo(filepath.Join(t.TempDir(), "rules.yaml"))

	for _, r := range [][2]string{{"ё", "е"}} {
		if err := repo.AddLetterRule(ctx, r[0], r[1]); err != nil {
			t.Fatal(err)
		}
	}
	for _, r := range [][2]string{{"GPT", "G P T"}, {"nginx", "engine x"}} {
		if err := repo.AddWordRule(ctx, r[0], r[1]); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		in   string
		want string
	}{
		{"GPT, nginx.", "G P T, engine x."},
		{"Line one\n\nGPT  here", "Line one\n\nG P T  here"},
		{"GPTs and nginx-proxy", "GPTs and nginx-proxy"},
		{"ещё ёж", "еще еж"},
		{"", ""},
	}

	svc := NewService(repo)
	for _, tt := range tests {
		got, err := svc.Process(ctx, tt.in)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("Process(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFileRepo(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "rules.yaml")
	repo := NewFileRepo(path)

	if words, err := repo.ListWordRules(ctx); err != nil || len(words) != 0 {
		t.Fatalf("empty repo = %v, %v", words, err)
	}

	if err := repo.AddLetterRule(ctx, "ab", "c"); !errors.Is(err, ErrInvalidRule) {
		t.Errorf("multi-char letter rule err = %v", err)
	}
	if err := repo.AddWordRule(ctx, "", "x"); !errors.Is(err, ErrInvalidRule) {
		t.Errorf("empty word err = %v", err)
	}

	_ = repo.AddWordRule(ctx, "SQL", "sequel")
	_ = repo.AddWordRule(ctx, "SQL", "S Q L")
	_ = repo.AddWordRule(ctx, "API", "A P I")

	words, _ := repo.ListWordRules(ctx)
	if len(words) != 2 || words[0].To != "S Q L" {
		t.Errorf("words = %+v", words)
	}

	if err := repo.DeleteWordRule(ctx, "SQL"); err != nil {
		t.Fatal(err)
	}
	words, _ = NewFileRepo(path).ListWordRules(ctx)
	if len(words) != 1 || words[0].From != "API" {
		t.Errorf("after delete = %+v", words)
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "from: API") {
		t.Errorf("file:\n%s", data)
	}
}
