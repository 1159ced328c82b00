package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/orion-edge/orion-cli/pkg/errors"
)

// EnvPrefix is prepended to every configuration environment variable
const EnvPrefix = "ORION_"

// LoadOption is a functional option for loading configuration
type LoadOption func(*loadOptions)

type loadOptions struct {
	configFile string
	fromEnv    bool
	overrides  *Config
}

// WithConfigFile specifies the config file path
func WithConfigFile(path string) LoadOption {
	return func(o *loadOptions) {
		o.configFile = path
	}
}

// WithEnv enables ORION_* environment variable overrides
func WithEnv() LoadOption {
	return func(o *loadOptions) {
		o.fromEnv = true
	}
}

// WithOverrides merges cfg last, after file and environment
func WithOverrides(cfg *Config) LoadOption {
	return func(o *loadOptions) {
		o.overrides = cfg
	}
}

// Load builds the configuration as defaults, then file, then env, then overrides.
// Derived paths are resolved before validation.
func Load(opts ...LoadOption) (*Config, error) {
	options := &loadOptions{}
	for _, opt := range opts {
		opt(options)
	}

	config := DefaultConfig()

	if options.configFile != "" {
		fileConfig, err := loadFromFile(options.configFile)
		if err != nil {
			return nil, err
		}
		config.Merge(fileConfig)
	}

	if options.fromEnv {
		config.Merge(loadFromEnv())
	}

	config.Merge(options.overrides)
	if options.configFile != "" {
		config.Paths.ConfigFile = options.configFile
		if abs, err := filepath.Abs(options.configFile); err == nil {
			config.Paths.ConfigFile = abs
		}
	}
	config.ResolvePaths()
	config.expandHome()

	if err := Validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(
			errors.ErrConfigLoadFailed,
			err,
			"failed to read config file",
		).WithField("path", path)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(
			errors.ErrConfigInvalid,
			err,
			"failed to parse config file",
		).WithField("path", path)
	}

	return &config, nil
}

func loadFromEnv() *Config {
	config := &Config{
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", ""),
			Format: getEnv("LOG_FORMAT", ""),
			File:   getEnv("LOG_FILE", ""),
		},
		Paths: PathsConfig{
			ConfigDir:       getEnv("CONFIG_DIR", ""),
			CredentialsFile: getEnv("CREDENTIALS_FILE", ""),
			StateDir:        getEnv("STATE_DIR", ""),
			EnvFiles:        getListEnv("ENV_FILES"),
		},
		AWS: AWSConfig{
			DefaultRegion: getEnv("AWS_DEFAULT_REGION", ""),
		},
		Fastly: FastlyConfig{
			APIURL:  getEnv("FASTLY_API_URL", ""),
			Timeout: getDurationEnv("FASTLY_TIMEOUT", 0),
		},
		Terraform: TerraformConfig{
			Binary: getEnv("TERRAFORM_BINARY", ""),
			Dir:    getEnv("TERRAFORM_DIR", ""),
		},
		Metrics: MetricsConfig{
			Enabled:  getBoolEnv("METRICS_ENABLED", false),
			Textfile: getEnv("METRICS_TEXTFILE", ""),
		},
		Tracing: TracingConfig{
			Enabled:  getBoolEnv("TRACING_ENABLED", false),
			Endpoint: getEnv("TRACING_ENDPOINT", ""),
		},
	}
	return config
}

// expandHome rewrites a leading "~/" in path settings
func (c *Config) expandHome() {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return
	}
	expand := func(p string) string {
		if strings.HasPrefix(p, "~/") {
			return filepath.Join(home, p[2:])
		}
		return p
	}
	c.Paths.ConfigDir = expand(c.Paths.ConfigDir)
	c.Paths.CredentialsFile = expand(c.Paths.CredentialsFile)
	c.Paths.StateDir = expand(c.Paths.StateDir)
	for i := range c.Paths.EnvFiles {
		c.Paths.EnvFiles[i] = expand(c.Paths.EnvFiles[i])
	}
	if c.Log.File != "-" {
		c.Log.File = expand(c.Log.File)
	}
	c.Metrics.Textfile = expand(c.Metrics.Textfile)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(EnvPrefix + key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(EnvPrefix + key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// getDurationEnv accepts Go durations ("5s") or a bare number of seconds
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(EnvPrefix + key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return defaultValue
}

// getListEnv splits a path-list variable on the OS list separator
func getListEnv(key string) []string {
	value := os.Getenv(EnvPrefix + key)
	if value == "" {
		return nil
	}
	return filepath.SplitList(value)
}

// FromFlags builds an override config from command-line flags (used by CLI).
// Empty values leave the lower layers untouched.
func FromFlags(logLevel, logFormat, logFile, stateDir, terraformDir string) *Config {
	return &Config{
		Log: LogConfig{
			Level:  logLevel,
			Format: logFormat,
			File:   logFile,
		},
		Paths: PathsConfig{
			StateDir: stateDir,
		},
		Terraform: TerraformConfig{
			Dir: terraformDir,
		},
	}
}
