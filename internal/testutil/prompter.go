package testutil

import (
	"fmt"
	"sync"

	"github.com/orion-edge/orion-cli/internal/interaction"
)

// PromptKind identifies the prompt method that was called
type PromptKind string

const (
	KindSelect  PromptKind = "select"
	KindInput   PromptKind = "input"
	KindConfirm PromptKind = "confirm"
)

// Prompt is one recorded prompt
type Prompt struct {
	Kind    PromptKind
	Title   string
	Options []interaction.SelectOption
}

// OptionValues returns the values of the offered options
func (p Prompt) OptionValues() []string {
	values := make([]string, 0, len(p.Options))
	for _, opt := range p.Options {
		values = append(values, opt.Value)
	}
	return values
}

type answer struct {
	kind  PromptKind
	value string
	yes   bool
	err   error
}

// ScriptedPrompter answers prompts from a fixed script, in order, and records
// every prompt it was shown. It fails the prompt when the script runs out or
// the next answer is for a different kind of prompt.
type ScriptedPrompter struct {
	mu      sync.Mutex
	answers []answer
	prompts []Prompt
}

// NewScriptedPrompter creates an empty script
func NewScriptedPrompter() *ScriptedPrompter {
	return &ScriptedPrompter{}
}

// WithSelect appends a menu choice
func (p *ScriptedPrompter) WithSelect(value string) *ScriptedPrompter {
	return p.push(answer{kind: KindSelect, value: value})
}

// WithInput appends a text answer
func (p *ScriptedPrompter) WithInput(value string) *ScriptedPrompter {
	return p.push(answer{kind: KindInput, value: value})
}

// WithConfirm appends a yes/no answer
func (p *ScriptedPrompter) WithConfirm(yes bool) *ScriptedPrompter {
	return p.push(answer{kind: KindConfirm, yes: yes})
}

// WithCancel appends an operator abort for the given prompt kind
func (p *ScriptedPrompter) WithCancel(kind PromptKind) *ScriptedPrompter {
	return p.push(answer{kind: kind, err: interaction.ErrCancelled})
}

// WithError appends a prompt failure for the given prompt kind
func (p *ScriptedPrompter) WithError(kind PromptKind, err error) *ScriptedPrompter {
	return p.push(answer{kind: kind, err: err})
}

// Prompts returns every prompt shown so far
func (p *ScriptedPrompter) Prompts() []Prompt {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Prompt(nil), p.prompts...)
}

// Titles returns the titles of every prompt shown so far
func (p *ScriptedPrompter) Titles() []string {
	prompts := p.Prompts()
	titles := make([]string, len(prompts))
	for i, pr := range prompts {
		titles[i] = pr.Title
	}
	return titles
}

// Remaining returns how many scripted answers were not consumed
func (p *ScriptedPrompter) Remaining() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.answers)
}

func (p *ScriptedPrompter) Select(title string, options []interaction.SelectOption) (string, error) {
	a, err := p.pop(Prompt{Kind: KindSelect, Title: title, Options: options})
	if err != nil {
		return "", err
	}
	for _, opt := range options {
		if opt.Value == a.value {
			return a.value, nil
		}
	}
	return "", fmt.Errorf("scripted choice %q not offered by %q", a.value, title)
}

func (p *ScriptedPrompter) Input(title string, opts interaction.InputOptions) (string, error) {
	a, err := p.pop(Prompt{Kind: KindInput, Title: title})
	if err != nil {
		return "", err
	}
	if opts.Validate != nil {
		if err := opts.Validate(a.value); err != nil {
			return "", fmt.Errorf("scripted input for %q rejected: %w", title, err)
		}
	}
	return a.value, nil
}

func (p *ScriptedPrompter) Confirm(title string, defaultValue bool) (bool, error) {
	a, err := p.pop(Prompt{Kind: KindConfirm, Title: title})
	if err != nil {
		return false, err
	}
	return a.yes, nil
}

func (p *ScriptedPrompter) push(a answer) *ScriptedPrompter {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.answers = append(p.answers, a)
	return p
}

func (p *ScriptedPrompter) pop(prompt Prompt) (answer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.prompts = append(p.prompts, prompt)
	if len(p.answers) == 0 {
		return answer{}, fmt.Errorf("no scripted answer for %s %q", prompt.Kind, prompt.Title)
	}
	a := p.answers[0]
	if a.kind != prompt.Kind {
		return answer{}, fmt.Errorf("scripted %s answer but got %s %q", a.kind, prompt.Kind, prompt.Title)
	}
	p.answers = p.answers[1:]
	if a.err != nil {
		return answer{}, a.err
	}
	return a, nil
}
