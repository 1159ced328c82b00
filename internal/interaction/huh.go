package interaction

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

var hintStyle = lipgloss.NewStyle().Faint(true)

var runSelectPrompt = func(title string, options []huh.Option[string], selected *string) error {
	return huh.NewSelect[string]().
		Title(title).
		Options(options...).
		Value(selected).
		Run()
}

var runInputPrompt = func(title string, opts InputOptions, input *string) error {
	field := huh.NewInput().
		Title(title).
		Value(input)
	if opts.Placeholder != "" {
		field.Placeholder(opts.Placeholder)
	}
	if opts.Secret {
		field.EchoMode(huh.EchoModePassword)
	}
	if opts.Validate != nil {
		field.Validate(opts.Validate)
	}
	return field.Run()
}

var runConfirmPrompt = func(title string, value *bool) error {
	return huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(value).
		Run()
}

// HuhPrompter implements the Prompter interface using the huh TUI library.
type HuhPrompter struct{}

func (p HuhPrompter) Select(title string, options []SelectOption) (string, error) {
	if len(options) == 0 {
		return "", nil
	}

	huhOptions := make([]huh.Option[string], len(options))
	for i, opt := range options {
		label := opt.Label
		if opt.Hint != "" {
			label = label + " " + hintStyle.Render("("+opt.Hint+")")
		}
		huhOptions[i] = huh.NewOption(label, opt.Value)
	}

	selected := options[0].Value
	if err := runSelectPrompt(title, huhOptions, &selected); err != nil {
		return "", promptError("select", err)
	}
	return selected, nil
}

func (p HuhPrompter) Input(title string, opts InputOptions) (string, error) {
	input := opts.Default
	if err := runInputPrompt(title, opts, &input); err != nil {
		return "", promptError("input", err)
	}
	return input, nil
}

func (p HuhPrompter) Confirm(title string, defaultValue bool) (bool, error) {
	value := defaultValue
	if err := runConfirmPrompt(title, &value); err != nil {
		return false, promptError("confirm", err)
	}
	return value, nil
}

func promptError(kind string, err error) error {
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrCancelled
	}
	return fmt.Errorf("prompt %s: %w", kind, err)
}
