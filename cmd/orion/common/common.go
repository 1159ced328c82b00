package common

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/orion-edge/orion-cli/internal/config"
	"github.com/orion-edge/orion-cli/pkg/logger"
)

// EnvPrefix is the viper prefix for flag environment variables (ORION_LOG_LEVEL, ...)
const EnvPrefix = "ORION"

// Flags are the global flags shared by every command. Empty values leave
// the config file, environment and defaults in charge.
type Flags struct {
	ConfigFile   string
	LogLevel     string
	LogFormat    string
	LogFile      string
	StateDir     string
	TerraformDir string
}

// InitViper configures viper to read ORION_* environment variables,
// mapping flag names like "log-level" to ORION_LOG_LEVEL
func InitViper() {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// BindFlagsToViper fills flags left empty on the command line from their
// ORION_* variables. Explicit flags win.
func BindFlagsToViper(flags *Flags) {
	bind := func(key string, target *string) {
		if *target == "" && viper.IsSet(key) {
			*target = viper.GetString(key)
		}
	}
	bind("config", &flags.ConfigFile)
	bind("log-level", &flags.LogLevel)
	bind("log-format", &flags.LogFormat)
	bind("log-file", &flags.LogFile)
	bind("state-dir", &flags.StateDir)
	bind("terraform-dir", &flags.TerraformDir)
}

// BindCommandFlags binds a command's local flags to viper keys
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

// BindPersistentFlags binds a command's persistent flags to viper keys
func BindPersistentFlags(cmd *cobra.Command) {
	_ = viper.BindPFlags(cmd.PersistentFlags())
}

// AddPersistentFlags registers the global flags on root
func AddPersistentFlags(root *cobra.Command, flags *Flags) {
	RegisterFlags(root.PersistentFlags(), flags)
}

// RegisterFlags adds the global flags to fs
func RegisterFlags(fs *pflag.FlagSet, flags *Flags) {
	fs.StringVar(&flags.ConfigFile, "config", "", "Path to a YAML config file")
	fs.StringVar(&flags.LogLevel, "log-level", "", "Log level (debug, info, warn, error) (default info)")
	fs.StringVar(&flags.LogFormat, "log-format", "", "Log format (json, console) (default json)")
	fs.StringVar(&flags.LogFile, "log-file", "", `Log file, "-" for stderr (default <config dir>/orion.log)`)
	fs.StringVar(&flags.StateDir, "state-dir", "", "Working-state directory (default <config dir>)")
	fs.StringVar(&flags.TerraformDir, "terraform-dir", "", "Directory holding the infrastructure sources")
}

// LoadConfig layers defaults, the config file, ORION_* variables and flags
func LoadConfig(flags *Flags) (*config.Config, error) {
	BindFlagsToViper(flags)

	opts := []config.LoadOption{config.WithEnv()}
	if flags.ConfigFile != "" {
		opts = append(opts, config.WithConfigFile(flags.ConfigFile))
	}
	opts = append(opts, config.WithOverrides(config.FromFlags(
		flags.LogLevel, flags.LogFormat, flags.LogFile, flags.StateDir, flags.TerraformDir,
	)))
	return config.Load(opts...)
}

// CreateLogger builds the zap logger described by cfg. Entries go to a log
// file so they never interleave with prompts; "-" selects stderr. The
// returned close func releases the file.
func CreateLogger(cfg config.LogConfig) (logger.Logger, func() error, error) {
	var level logger.Level
	switch cfg.Level {
	case "debug":
		level = logger.DebugLevel
	case "info":
		level = logger.InfoLevel
	case "warn":
		level = logger.WarnLevel
	case "error":
		level = logger.ErrorLevel
	default:
		level = logger.InfoLevel
	}

	var format logger.Format
	switch cfg.Format {
	case "json":
		format = logger.JSONFormat
	case "console":
		format = logger.ConsoleFormat
	default:
		format = logger.JSONFormat
	}

	var out io.Writer = os.Stderr
	closeFn := func() error { return nil }
	if cfg.File != "" && cfg.File != "-" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o700); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = f
		closeFn = f.Close
	}

	log, err := logger.New(logger.Config{
		Level:  level,
		Format: format,
		Output: out,
	})
	if err != nil {
		_ = closeFn()
		return nil, nil, err
	}
	return log, closeFn, nil
}

// SetupSignalHandler returns a context cancelled on SIGINT or SIGTERM
func SetupSignalHandler() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}
