// Package workspace manages the local working-state directory: terraform
// state, the deployed backend URL and the cache configuration.
package workspace

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/orion-edge/orion-cli/pkg/errors"
	"github.com/orion-edge/orion-cli/pkg/logger"
)

// File names inside the working-state directory
const (
	StateFileName           = "terraform.tfstate"
	BackendURLFileName      = "backend-url.txt"
	CacheConfigFileName     = "config.json"
	CacheConfigHashFileName = "config.hash"
)

//go:embed default-config.json
var defaultCacheConfig []byte

// Config holds workspace configuration
type Config struct {
	// Dir is the working-state directory
	Dir string

	// Preserve lists files that survive Clean when they live inside Dir,
	// typically the credentials file and the active log file
	Preserve []string

	// DefaultCacheConfig is copied to config.json when set and readable;
	// otherwise a built-in default is used
	DefaultCacheConfig string

	Logger logger.Logger
}

// Workspace is the local working-state directory
type Workspace struct {
	dir                string
	preserve           map[string]bool
	defaultCacheConfig string
	logger             logger.Logger
}

// New creates a workspace
func New(config Config) *Workspace {
	if config.Logger == nil {
		config.Logger = logger.Nop()
	}
	preserve := make(map[string]bool, len(config.Preserve))
	for _, p := range config.Preserve {
		if p == "" {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			preserve[abs] = true
		}
	}
	return &Workspace{
		dir:                config.Dir,
		preserve:           preserve,
		defaultCacheConfig: config.DefaultCacheConfig,
		logger:             config.Logger,
	}
}

// Dir returns the working-state directory
func (w *Workspace) Dir() string { return w.dir }

// StateFile returns the terraform state file path
func (w *Workspace) StateFile() string { return filepath.Join(w.dir, StateFileName) }

// BackendURLFile returns the backend URL file path
func (w *Workspace) BackendURLFile() string { return filepath.Join(w.dir, BackendURLFileName) }

// CacheConfigFile returns the cache configuration file path
func (w *Workspace) CacheConfigFile() string { return filepath.Join(w.dir, CacheConfigFileName) }

// CacheConfigHashFile returns the file recording the deployed cache configuration hash
func (w *Workspace) CacheConfigHashFile() string {
	return filepath.Join(w.dir, CacheConfigHashFileName)
}

// StateExists reports whether a prior provisioning state is present
func (w *Workspace) StateExists() bool {
	info, err := os.Stat(w.StateFile())
	return err == nil && info.Mode().IsRegular()
}

// SaveBackendURL records the GraphQL origin of the deployment
func (w *Workspace) SaveBackendURL(url string) error {
	if err := w.ensureDir(); err != nil {
		return err
	}
	if err := os.WriteFile(w.BackendURLFile(), []byte(url), 0o644); err != nil {
		return errors.Wrap(
			errors.ErrStateWriteFailed,
			err,
			"failed to write backend URL",
		).WithField("path", w.BackendURLFile())
	}
	w.logger.Info("Backend URL saved", logger.String("path", w.BackendURLFile()))
	return nil
}

// BackendURL returns the recorded backend URL, or "" when none was saved
func (w *Workspace) BackendURL() (string, error) {
	data, err := os.ReadFile(w.BackendURLFile())
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", errors.Wrap(
			errors.ErrStateReadFailed,
			err,
			"failed to read backend URL",
		).WithField("path", w.BackendURLFile())
	}
	return strings.TrimSpace(string(data)), nil
}

// EnsureCacheConfig creates config.json from the default when it is missing
// and records its hash. An existing config.json is left as is.
func (w *Workspace) EnsureCacheConfig() error {
	if err := w.ensureDir(); err != nil {
		return err
	}

	if _, err := os.Stat(w.CacheConfigFile()); os.IsNotExist(err) {
		if err := os.WriteFile(w.CacheConfigFile(), w.defaultConfig(), 0o644); err != nil {
			return errors.Wrap(
				errors.ErrStateWriteFailed,
				err,
				"failed to write cache configuration",
			).WithField("path", w.CacheConfigFile())
		}
		w.logger.Info("Cache configuration initialized", logger.String("path", w.CacheConfigFile()))
	}

	return w.UpdateCacheConfigHash()
}

// UpdateCacheConfigHash records the sha256 of the current config.json
func (w *Workspace) UpdateCacheConfigHash() error {
	sum, err := w.cacheConfigHash()
	if err != nil {
		return err
	}
	if err := os.WriteFile(w.CacheConfigHashFile(), []byte(sum), 0o644); err != nil {
		return errors.Wrap(
			errors.ErrStateWriteFailed,
			err,
			"failed to write cache configuration hash",
		).WithField("path", w.CacheConfigHashFile())
	}
	return nil
}

// CacheConfigChanged reports whether config.json differs from the recorded hash.
// A missing hash counts as changed.
func (w *Workspace) CacheConfigChanged() (bool, error) {
	saved, err := os.ReadFile(w.CacheConfigHashFile())
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, errors.Wrap(
			errors.ErrStateReadFailed,
			err,
			"failed to read cache configuration hash",
		).WithField("path", w.CacheConfigHashFile())
	}

	current, err := w.cacheConfigHash()
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(string(saved)) != current, nil
}

// Clean removes every entry of the working-state directory except the
// preserved files. It returns the removed names, sorted.
func (w *Workspace) Clean() ([]string, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(
			errors.ErrStateReadFailed,
			err,
			"failed to read working-state directory",
		).WithField("path", w.dir)
	}

	var removed []string
	for _, entry := range entries {
		path := filepath.Join(w.dir, entry.Name())
		if w.preserved(path) {
			continue
		}
		if err := os.RemoveAll(path); err != nil {
			return removed, errors.Wrap(
				errors.ErrStateWriteFailed,
				err,
				"failed to remove working-state entry",
			).WithField("path", path)
		}
		removed = append(removed, entry.Name())
	}
	sort.Strings(removed)

	w.logger.Info("Working-state directory cleaned",
		logger.String("path", w.dir),
		logger.Int("removed", len(removed)),
	)
	return removed, nil
}

func (w *Workspace) preserved(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	return w.preserve[abs]
}

func (w *Workspace) ensureDir() error {
	if err := os.MkdirAll(w.dir, 0o700); err != nil {
		return errors.Wrap(
			errors.ErrStateWriteFailed,
			err,
			"failed to create working-state directory",
		).WithField("path", w.dir)
	}
	return nil
}

func (w *Workspace) defaultConfig() []byte {
	if w.defaultCacheConfig != "" {
		data, err := os.ReadFile(w.defaultCacheConfig)
		if err == nil {
			return data
		}
		w.logger.Warn("Default cache configuration unreadable, using built-in default",
			logger.String("path", w.defaultCacheConfig),
			logger.Error(err),
		)
	}
	return defaultCacheConfig
}

func (w *Workspace) cacheConfigHash() (string, error) {
	data, err := os.ReadFile(w.CacheConfigFile())
	if err != nil {
		return "", errors.Wrap(
			errors.ErrStateReadFailed,
			err,
			"failed to read cache configuration",
		).WithField("path", w.CacheConfigFile())
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
