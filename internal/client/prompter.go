package client

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"golang.org/x/term"
)

// terminalPrompter reads secrets from the controlling terminal without
// echo, so stdin and stdout stay free for data.
type terminalPrompter struct {
	out io.Writer
}

// NewTerminalPrompter prompts on out and reads from /dev/tty (CON on
// Windows).
func NewTerminalPrompter(out io.Writer) Prompter {
	return &terminalPrompter{out: out}
}

func (p *terminalPrompter) ReadSecret(prompt string) ([]byte, error) {
	ttyPath := "/dev/tty"
	if runtime.GOOS == "windows" {
		ttyPath = "CON"
	}

	tty, err := os.Open(ttyPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoTerminal, err)
	}
	defer tty.Close()

	fd := int(tty.Fd())
	if !term.IsTerminal(fd) {
		return nil, ErrNoTerminal
	}

	fmt.Fprint(p.out, prompt)
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return nil, fmt.Errorf("failed to read passphrase: %w", err)
	}
	return secret, nil
}

// linePrompter answers each prompt with the next line of r. It backs
// --passphrase-file for scripted use.
type linePrompter struct {
	r *bufio.Reader
}

func NewLinePrompter(r io.Reader) Prompter {
	return &linePrompter{r: bufio.NewReader(r)}
}

func (p *linePrompter) ReadSecret(string) ([]byte, error) {
	line, err := p.r.ReadBytes('\n')
	if errors.Is(err, io.EOF) && len(line) == 0 {
		return nil, ErrNoMorePassphrases
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read passphrase: %w", err)
	}

	secret := bytes.TrimRight(line, "\r\n")
	out := append([]byte(nil), secret...)
	clear(line)
	return out, nil
}

// readNewSecret asks twice and requires both answers to match.
func readNewSecret(p Prompter, equal func(a, b []byte) bool, prompt string) ([]byte, error) {
	first, err := p.ReadSecret(prompt)
	if err != nil {
		return nil, err
	}
	if len(first) == 0 {
		return nil, ErrEmptyPassphrase
	}

	second, err := p.ReadSecret("Repeat " + prompt)
	if err != nil {
		clear(first)
		return nil, err
	}
	defer clear(second)

	if !equal(first, second) {
		clear(first)
		return nil, ErrPassphraseMismatch
	}
	return first, nil
}
