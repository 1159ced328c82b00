package interaction

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpinnerPlainOutput(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, false)

	s.Start("Deploying infrastructure...")
	s.Update("Applying changes")
	s.Success("Infrastructure deployed")

	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Deploying infrastructure...")
	assert.Contains(t, lines[1], "Applying changes")
	assert.Contains(t, lines[2], "Infrastructure deployed")
}

func TestSpinnerFail(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, false)

	s.Start("Validating AWS credentials...")
	s.Fail("AWS credentials invalid")

	assert.Contains(t, buf.String(), "AWS credentials invalid")
}

func TestSpinnerAnimatedStops(t *testing.T) {
	var buf syncBuffer
	s := NewSpinner(&buf, true)

	s.Start("Destroying infrastructure...")
	s.Update("Removing resources")
	s.Success("Infrastructure destroyed")

	// After Success the loop has exited, so further writes come only from us.
	before := buf.String()
	assert.Contains(t, before, "Infrastructure destroyed")
	assert.Equal(t, before, buf.String())
}

func TestSpinnerRestart(t *testing.T) {
	var buf syncBuffer
	s := NewSpinner(&buf, true)

	s.Start("first")
	s.Start("second")
	s.Fail("done")

	assert.Contains(t, buf.String(), "done")
}

func TestConsoleMessages(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.Info("No saved or environment credentials found. Please enter credentials.")
	c.Warn("careful")
	c.Error("Credential validation failed:")
	c.Success("Credentials saved to /tmp/x")
	c.Cancelled()

	out := buf.String()
	assert.Contains(t, out, "No saved or environment credentials found.")
	assert.Contains(t, out, "careful")
	assert.Contains(t, out, "Credential validation failed:")
	assert.Contains(t, out, "Credentials saved to /tmp/x")
	assert.Contains(t, out, "Operation cancelled.")
}
