package aws

import (
	"time"
)

// Config holds AWS provider configuration
type Config struct {
	// DefaultRegion is used when the keys carry no region
	DefaultRegion string

	// Endpoint overrides the STS endpoint (e.g. a local emulator)
	Endpoint string

	// Timeout bounds a single identity call
	Timeout time.Duration

	// MaxAttempts is the SDK retry budget for one call
	MaxAttempts int
}

// DefaultConfig returns default AWS configuration
func DefaultConfig() *Config {
	return &Config{
		DefaultRegion: "us-east-1",
		Timeout:       15 * time.Second,
		MaxAttempts:   2,
	}
}
