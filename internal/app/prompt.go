package app

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"salvage-go/internal/salvage"
)

// ErrNotInteractive is returned by Ask when input is not a terminal.
var ErrNotInteractive = errors.New("input is not a terminal")

// Prompter asks the user yes/no and free-form questions. When input is not a
// terminal every confirmation is declined and Ask fails, so unattended runs
// never block or overwrite anything by accident.
type Prompter struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

// NewTerminalPrompter prompts on out and reads answers from in. It is
// interactive only when in is a terminal.
func NewTerminalPrompter(in *os.File, out io.Writer) *Prompter {
	return newPrompter(in, out, term.IsTerminal(int(in.Fd())))
}

func newPrompter(in io.Reader, out io.Writer, interactive bool) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out, interactive: interactive}
}

// Interactive reports whether answers can be read from the user.
func (p *Prompter) Interactive() bool {
	return p.interactive
}

// Ask prints question and returns the trimmed answer line.
func (p *Prompter) Ask(question string) (string, error) {
	if !p.interactive {
		return "", ErrNotInteractive
	}
	fmt.Fprintf(p.out, "%s: ", question)
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("reading answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// Confirm asks a yes/no question. Anything but "y" or "yes" is a no.
func (p *Prompter) Confirm(question string) bool {
	answer, err := p.Ask(question + " [y/N]")
	if err != nil {
		return false
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// ConfirmOverwrite asks before an existing file is replaced.
func (p *Prompter) ConfirmOverwrite(path string) bool {
	return p.Confirm(fmt.Sprintf("%s already exists. Overwrite?", path))
}

var _ salvage.Confirmer = (*Prompter)(nil)
