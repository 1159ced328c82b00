package config

import (
	"os"
	"path/filepath"
	"time"
)

const (
	// CredentialsFileName is the file holding saved credentials inside the config dir
	CredentialsFileName = "deployment-config.json"

	// LogFileName is the default log file inside the config dir
	LogFileName = "orion.log"

	// DefaultRegion is used when neither the environment nor the operator supplies one
	DefaultRegion = "us-east-1"
)

// Config represents the complete CLI configuration
type Config struct {
	// Log configuration
	Log LogConfig `yaml:"log" validate:"required"`

	// Local paths used by the CLI
	Paths PathsConfig `yaml:"paths"`

	// AWS settings
	AWS AWSConfig `yaml:"aws"`

	// Fastly API settings
	Fastly FastlyConfig `yaml:"fastly"`

	// Terraform settings
	Terraform TerraformConfig `yaml:"terraform"`

	// Metrics configuration
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing configuration
	Tracing TracingConfig `yaml:"tracing"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	// Level is the log level (debug, info, warn, error)
	Level string `yaml:"level" validate:"required,oneof=debug info warn error"`

	// Format is the log format (json, console)
	Format string `yaml:"format" validate:"required,oneof=json console"`

	// File is where log entries go. "-" means stderr.
	File string `yaml:"file"`
}

// PathsConfig holds filesystem locations
type PathsConfig struct {
	// ConfigDir is the per-user directory (default ~/.config/orion)
	ConfigDir string `yaml:"config_dir"`

	// CredentialsFile is the saved-credentials JSON file
	CredentialsFile string `yaml:"credentials_file"`

	// StateDir holds deployment state, the backend URL and cache config
	StateDir string `yaml:"state_dir"`

	// EnvFiles are the .env candidates, first existing one wins
	EnvFiles []string `yaml:"env_files"`

	// ConfigFile is the absolute path of the loaded config file, if any
	ConfigFile string `yaml:"-"`
}

// AWSConfig holds AWS-specific configuration
type AWSConfig struct {
	// DefaultRegion is offered when the operator enters credentials manually
	DefaultRegion string `yaml:"default_region" validate:"required"`
}

// FastlyConfig holds Fastly API configuration
type FastlyConfig struct {
	// APIURL is the Fastly API base URL
	APIURL string `yaml:"api_url" validate:"required,url"`

	// Timeout bounds the credential check request
	Timeout time.Duration `yaml:"timeout" validate:"min=0"`
}

// TerraformConfig holds provisioner configuration
type TerraformConfig struct {
	// Binary is the terraform (or tofu) executable
	Binary string `yaml:"binary" validate:"required"`

	// Dir is the directory holding the infrastructure sources
	Dir string `yaml:"dir"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	// Enabled determines if metrics are collected
	Enabled bool `yaml:"enabled"`

	// Textfile is written on exit in the node_exporter textfile format
	Textfile string `yaml:"textfile"`
}

// TracingConfig holds OpenTelemetry configuration
type TracingConfig struct {
	Enabled       bool    `yaml:"enabled"`
	Endpoint      string  `yaml:"endpoint"`
	Insecure      bool    `yaml:"insecure"`
	SamplingRatio float64 `yaml:"sampling_ratio" validate:"min=0,max=1"`
}

// DefaultConfigDir returns ~/.config/orion, falling back to ./.orion without a home dir
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".orion"
	}
	return filepath.Join(home, ".config", "orion")
}

// DefaultEnvFiles returns .env in the working directory and in its parent
func DefaultEnvFiles() []string {
	cwd, err := os.Getwd()
	if err != nil {
		return []string{".env", filepath.Join("..", ".env")}
	}
	return []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(filepath.Dir(cwd), ".env"),
	}
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Paths: PathsConfig{
			ConfigDir: DefaultConfigDir(),
		},
		AWS: AWSConfig{
			DefaultRegion: DefaultRegion,
		},
		Fastly: FastlyConfig{
			APIURL:  "https://api.fastly.com",
			Timeout: 5 * time.Second,
		},
		Terraform: TerraformConfig{
			Binary: "terraform",
			Dir:    "infrastructure",
		},
		Tracing: TracingConfig{
			Endpoint:      "localhost:4317",
			Insecure:      true,
			SamplingRatio: 1.0,
		},
	}
}

// ResolvePaths fills paths that default relative to the config dir
func (c *Config) ResolvePaths() {
	if c.Paths.ConfigDir == "" {
		c.Paths.ConfigDir = DefaultConfigDir()
	}
	if c.Paths.CredentialsFile == "" {
		c.Paths.CredentialsFile = filepath.Join(c.Paths.ConfigDir, CredentialsFileName)
	}
	if c.Paths.StateDir == "" {
		c.Paths.StateDir = c.Paths.ConfigDir
	}
	if c.Log.File == "" {
		c.Log.File = filepath.Join(c.Paths.ConfigDir, LogFileName)
	}
	if len(c.Paths.EnvFiles) == 0 {
		c.Paths.EnvFiles = DefaultEnvFiles()
	}
}

// Merge merges the given config into this config
// Non-zero values from other take precedence
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
	if other.Log.Format != "" {
		c.Log.Format = other.Log.Format
	}
	if other.Log.File != "" {
		c.Log.File = other.Log.File
	}

	if other.Paths.ConfigDir != "" {
		c.Paths.ConfigDir = other.Paths.ConfigDir
	}
	if other.Paths.CredentialsFile != "" {
		c.Paths.CredentialsFile = other.Paths.CredentialsFile
	}
	if other.Paths.StateDir != "" {
		c.Paths.StateDir = other.Paths.StateDir
	}
	if len(other.Paths.EnvFiles) > 0 {
		c.Paths.EnvFiles = append([]string(nil), other.Paths.EnvFiles...)
	}

	if other.AWS.DefaultRegion != "" {
		c.AWS.DefaultRegion = other.AWS.DefaultRegion
	}

	if other.Fastly.APIURL != "" {
		c.Fastly.APIURL = other.Fastly.APIURL
	}
	if other.Fastly.Timeout > 0 {
		c.Fastly.Timeout = other.Fastly.Timeout
	}

	if other.Terraform.Binary != "" {
		c.Terraform.Binary = other.Terraform.Binary
	}
	if other.Terraform.Dir != "" {
		c.Terraform.Dir = other.Terraform.Dir
	}

	if other.Metrics.Enabled {
		c.Metrics.Enabled = true
	}
	if other.Metrics.Textfile != "" {
		c.Metrics.Textfile = other.Metrics.Textfile
	}

	if other.Tracing.Enabled {
		c.Tracing.Enabled = true
	}
	if other.Tracing.Endpoint != "" {
		c.Tracing.Endpoint = other.Tracing.Endpoint
	}
	if other.Tracing.SamplingRatio > 0 {
		c.Tracing.SamplingRatio = other.Tracing.SamplingRatio
	}
}
