package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// fder is satisfied by *os.File.
type fder interface {
	Fd() uintptr
}

// IsTerminal reports whether v is a file attached to a terminal.
func IsTerminal(v interface{}) bool {
	f, ok := v.(fder)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Confirm asks a yes/no question with a huh form.
func Confirm(in io.Reader, out io.Writer, title, description string) (bool, error) {
	var ok bool
	field := huh.NewConfirm().
		Title(title).
		Value(&ok)
	if description != "" {
		field = field.Description(description)
	}

	form := huh.NewForm(huh.NewGroup(field)).
		WithInput(in).
		WithOutput(out)
	if err := form.Run(); err != nil {
		return false, err
	}
	return ok, nil
}

// ReadPassphrase prompts for a secret without echo. When in is not a
// terminal the first line of input is used as-is.
func ReadPassphrase(in io.Reader, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	if IsTerminal(in) {
		b, err := term.ReadPassword(int(in.(fder).Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
