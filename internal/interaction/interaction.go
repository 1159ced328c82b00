// Package interaction holds the operator-facing primitives: prompts, console
// output, progress indicators and TTY detection.
package interaction

import (
	"errors"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// ErrCancelled is returned by a Prompter when the operator aborts a prompt
// (Ctrl+C or Esc). It is an operator decision, not a failure.
var ErrCancelled = errors.New("cancelled by operator")

// IsCancelled reports whether err is or wraps ErrCancelled
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}

// SelectOption represents a single option in a selection menu.
type SelectOption struct {
	Label string // Display text
	Value string // Return value
	Hint  string // Optional dimmed suffix
}

// InputOptions configures a text prompt
type InputOptions struct {
	Placeholder string
	Default     string
	Secret      bool
	Validate    func(string) error
}

// Prompter defines the interface for interactive operator input.
// Every method returns ErrCancelled when the operator aborts.
type Prompter interface {
	Select(title string, options []SelectOption) (string, error)
	Input(title string, opts InputOptions) (string, error)
	Confirm(title string, defaultValue bool) (bool, error)
}

// Progress is a busy indicator whose message can be replaced while work runs
type Progress interface {
	Start(message string)
	Update(message string)
	Success(message string)
	Fail(message string)
}

// IsTerminal reports whether the file refers to a terminal device.
var IsTerminal = func(file *os.File) bool {
	if file == nil {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Required is an input validator rejecting blank values
func Required(message string) func(string) error {
	return func(v string) error {
		if strings.TrimSpace(v) == "" {
			return errors.New(message)
		}
		return nil
	}
}
