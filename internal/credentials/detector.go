package credentials

import (
	"context"

	"github.com/orion-edge/orion-cli/pkg/logger"
)

// DetectorConfig holds detector configuration
type DetectorConfig struct {
	// Store reads the persisted credentials file
	Store *Store

	// Environment returns the base environment for each detection.
	// Defaults to SnapshotFromOS.
	Environment func() EnvironmentSnapshot

	// EnvFiles are .env candidates; the first existing one is merged
	EnvFiles []string

	// DefaultRegion is used when no region variable is set
	DefaultRegion string

	Logger logger.Logger
}

// Detector reports which credential sources are usable. It performs no network calls.
type Detector struct {
	store         *Store
	environment   func() EnvironmentSnapshot
	envFiles      []string
	defaultRegion string
	logger        logger.Logger
}

// NewDetector creates a new credential source detector
func NewDetector(config DetectorConfig) *Detector {
	if config.Logger == nil {
		config.Logger = logger.Nop()
	}
	if config.Environment == nil {
		config.Environment = SnapshotFromOS
	}
	if config.DefaultRegion == "" {
		config.DefaultRegion = "us-east-1"
	}
	return &Detector{
		store:         config.Store,
		environment:   config.Environment,
		envFiles:      config.EnvFiles,
		defaultRegion: config.DefaultRegion,
		logger:        config.Logger,
	}
}

// StorePath returns the credentials file the detector inspects
func (d *Detector) StorePath() string {
	if d.store == nil {
		return ""
	}
	return d.store.Path()
}

// DetectAvailableSources takes a fresh snapshot of the saved and env sources.
// It never fails: an unreadable or malformed credentials file counts as no saved credentials.
func (d *Detector) DetectAvailableSources(ctx context.Context) Sources {
	log := d.logger.WithContext(ctx)

	savedSet := CredentialSet{Source: SourceSaved}
	if d.store != nil {
		saved, err := d.store.Load()
		if err != nil {
			log.Debug("No usable saved credentials", logger.String("reason", err.Error()))
		} else {
			savedSet = saved.CredentialSet()
		}
	}

	env, envFile, err := d.environment().MergeEnvFile(d.envFiles...)
	if err != nil {
		log.Warn("Ignoring unreadable env file",
			logger.String("path", envFile),
			logger.Error(err),
		)
	}
	env = env.NormalizeFastlyToken()

	envSet := CredentialSet{
		CloudCompute: env.CloudCompute(d.defaultRegion),
		CDN:          env.CDN(),
		Source:       SourceEnv,
	}

	sources := Sources{
		Saved:       statusOf(savedSet),
		Env:         statusOf(envSet),
		SavedPath:   d.StorePath(),
		savedSet:    savedSet,
		envSet:      envSet,
		environment: env,
	}

	log.Debug("Credential sources detected",
		logger.Bool("saved_complete", sources.Saved.Complete),
		logger.Bool("env_complete", sources.Env.Complete),
		logger.String("env_file", envFile),
	)

	return sources
}
