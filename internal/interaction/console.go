package interaction

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	titleStyle   = lipgloss.NewStyle().Bold(true)
	noteStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)
)

// Console writes operator-facing messages
type Console struct {
	out io.Writer
}

// NewConsole creates a console writing to out
func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

// Writer returns the underlying writer
func (c *Console) Writer() io.Writer {
	return c.out
}

func (c *Console) Info(msg string) {
	fmt.Fprintln(c.out, infoStyle.Render("●")+" "+msg)
}

func (c *Console) Success(msg string) {
	fmt.Fprintln(c.out, successStyle.Render("✔")+" "+msg)
}

func (c *Console) Warn(msg string) {
	fmt.Fprintln(c.out, warnStyle.Render("▲")+" "+msg)
}

func (c *Console) Error(msg string) {
	fmt.Fprintln(c.out, errorStyle.Render("✖")+" "+msg)
}

// Message prints msg without a status marker
func (c *Console) Message(msg string) {
	fmt.Fprintln(c.out, msg)
}

// Title prints a bold heading
func (c *Console) Title(msg string) {
	fmt.Fprintln(c.out, titleStyle.Render(msg))
}

// Note prints body inside a bordered box headed by title
func (c *Console) Note(title, body string) {
	content := strings.TrimRight(body, "\n")
	if title != "" {
		content = titleStyle.Render(title) + "\n\n" + content
	}
	fmt.Fprintln(c.out, noteStyle.Render(content))
}

// Cancelled prints the quiet notice shown when the operator backs out
func (c *Console) Cancelled() {
	fmt.Fprintln(c.out, hintStyle.Render("Operation cancelled."))
}
