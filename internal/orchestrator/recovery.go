package orchestrator

import (
	"fmt"
	"strings"

	"github.com/orion-edge/orion-cli/internal/interaction"
	"github.com/orion-edge/orion-cli/pkg/logger"
)

// Choice is the operator's decision after a failure
type Choice int

const (
	ChoiceExit Choice = iota
	ChoiceRetry
)

// String returns the string representation of the choice
func (c Choice) String() string {
	if c == ChoiceRetry {
		return "retry"
	}
	return "exit"
}

const (
	actionViewLogs = "view-logs"
	actionRetry    = "retry"
	actionExit     = "exit"
	actionBack     = "back"
)

// RecoveryMenu lets the operator inspect a failure, retry or exit.
// It keeps no state between invocations.
type RecoveryMenu struct {
	prompter interaction.Prompter
	console  *interaction.Console
	logger   logger.Logger
}

// NewRecoveryMenu creates a recovery menu
func NewRecoveryMenu(prompter interaction.Prompter, console *interaction.Console, log logger.Logger) *RecoveryMenu {
	if log == nil {
		log = logger.Nop()
	}
	return &RecoveryMenu{
		prompter: prompter,
		console:  console,
		logger:   log,
	}
}

// Show runs the menu for err until the operator picks retry or exit.
// A cancelled or failed prompt counts as exit.
func (m *RecoveryMenu) Show(err error) Choice {
	m.console.Error(topLine(err))

	for {
		action, perr := m.prompter.Select("Operation failed. What would you like to do?", []interaction.SelectOption{
			{Label: "View detailed error logs", Value: actionViewLogs},
			{Label: "Retry", Value: actionRetry},
			{Label: "Exit", Value: actionExit},
		})
		if perr != nil {
			m.logPromptError(perr)
			return ChoiceExit
		}

		switch action {
		case actionRetry:
			return ChoiceRetry
		case actionViewLogs:
			if m.showDetailedLogs(err) == actionExit {
				return ChoiceExit
			}
		default:
			return ChoiceExit
		}
	}
}

// showDetailedLogs prints the message and stack trace, then returns back or exit
func (m *RecoveryMenu) showDetailedLogs(err error) string {
	m.console.Error("--- Detailed Error Log ---")
	m.console.Message(err.Error())
	if detail := fmt.Sprintf("%+v", err); detail != err.Error() {
		m.console.Message("")
		m.console.Message("Stack trace:")
		m.console.Message(detail)
	}
	m.console.Error("--- End of Log ---")

	action, perr := m.prompter.Select("What would you like to do?", []interaction.SelectOption{
		{Label: "Return to previous menu", Value: actionBack},
		{Label: "Exit", Value: actionExit},
	})
	if perr != nil {
		m.logPromptError(perr)
		return actionExit
	}
	if action != actionBack {
		return actionExit
	}
	return actionBack
}

func (m *RecoveryMenu) logPromptError(err error) {
	if interaction.IsCancelled(err) {
		return
	}
	m.logger.Warn("Recovery menu prompt failed", logger.Error(err))
}

func topLine(err error) string {
	msg := err.Error()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		return msg[:i]
	}
	return msg
}
