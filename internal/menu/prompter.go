package menu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrAborted — ввод закончился (EOF) посреди диалога.
var ErrAborted = errors.New("input closed")

// Prompter — вопросы в out, ответы построчно из in.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

func (p *Prompter) Printf(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrAborted
		}
		return "", fmt.Errorf("read answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// Line — свободный ответ; пустая строка даёт def.
func (p *Prompter) Line(label, def string) (string, error) {
	if def != "" {
		p.Printf("%s [%s]: ", label, def)
	} else {
		p.Printf("%s: ", label)
	}

	ans, err := p.readLine()
	if err != nil {
		return "", err
	}
	if ans == "" {
		return def, nil
	}
	return ans, nil
}

// Choose — нумерованный список, возвращает индекс. Enter выбирает def.
func (p *Prompter) Choose(title string, options []string, def int) (int, error) {
	if len(options) == 0 {
		return 0, errors.New("choose: no options")
	}
	if def < 0 || def >= len(options) {
		def = 0
	}

	p.Printf("\n%s\n", title)
	for i, o := range options {
		mark := " "
		if i == def {
			mark = "*"
		}
		p.Printf(" %s %d) %s\n", mark, i+1, o)
	}

	for {
		ans, err := p.Line("Choice", strconv.Itoa(def+1))
		if err != nil {
			return 0, err
		}
		n, convErr := strconv.Atoi(ans)
		if convErr == nil && n >= 1 && n <= len(options) {
			return n - 1, nil
		}
		p.Printf("⚠️ Enter a number between 1 and %d.\n", len(options))
	}
}

// Confirm — да/нет.
func (p *Prompter) Confirm(label string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}

	for {
		p.Printf("%s [%s]: ", label, hint)
		ans, err := p.readLine()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(ans) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		p.Printf("⚠️ Answer y or n.\n")
	}
}
