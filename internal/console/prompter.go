package console

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
)

// Interactive prompts on the terminal with pterm widgets.
type Interactive struct{}

func (Interactive) Ask(prompt string) (string, error) {
	return pterm.DefaultInteractiveTextInput.WithDefaultText(prompt).Show()
}

func (Interactive) Choose(prompt string, options []string) (string, error) {
	return pterm.DefaultInteractiveSelect.
		WithDefaultText(prompt).
		WithOptions(options).
		WithMaxHeight(len(options)).
		Show()
}

// Lines reads answers line by line, for piped input where no terminal is attached.
type Lines struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func NewLines(in io.Reader, out io.Writer) *Lines {
	return &Lines{scanner: bufio.NewScanner(in), out: out}
}

func (l *Lines) Ask(prompt string) (string, error) {
	pterm.Fprint(l.out, pterm.Sprintf("%s: ", prompt))
	if !l.scanner.Scan() {
		if err := l.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(l.scanner.Text()), nil
}

// Choose accepts an option's 1-based position. Any other answer is returned as typed.
func (l *Lines) Choose(prompt string, options []string) (string, error) {
	for i, o := range options {
		pterm.Fprintln(l.out, pterm.Sprintf("  %d) %s", i+1, o))
	}
	answer, err := l.Ask(prompt)
	if err != nil {
		return "", err
	}
	if n, convErr := strconv.Atoi(answer); convErr == nil && n >= 1 && n <= len(options) {
		return options[n-1], nil
	}
	return answer, nil
}
