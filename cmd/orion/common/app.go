package common

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/orion-edge/orion-cli/cmd/orion/version"
	"github.com/orion-edge/orion-cli/internal/config"
	"github.com/orion-edge/orion-cli/internal/credentials"
	"github.com/orion-edge/orion-cli/internal/interaction"
	"github.com/orion-edge/orion-cli/internal/orchestrator"
	"github.com/orion-edge/orion-cli/internal/provider/aws"
	"github.com/orion-edge/orion-cli/internal/provider/fastly"
	"github.com/orion-edge/orion-cli/internal/provisioner/terraform"
	"github.com/orion-edge/orion-cli/internal/resolver"
	"github.com/orion-edge/orion-cli/internal/workflow"
	"github.com/orion-edge/orion-cli/internal/workspace"
	"github.com/orion-edge/orion-cli/pkg/errors"
	"github.com/orion-edge/orion-cli/pkg/logger"
	"github.com/orion-edge/orion-cli/pkg/metrics"
	"github.com/orion-edge/orion-cli/pkg/tracing"
)

// Streams are the operator-facing outputs. Zero values mean stdout and stderr.
type Streams struct {
	Out io.Writer
	Err io.Writer

	// Prompter replaces the huh prompts (tests)
	Prompter interaction.Prompter
}

// App is the fully wired CLI
type App struct {
	Config      *config.Config
	Logger      logger.Logger
	Metrics     *metrics.Metrics
	Tracing     *tracing.Provider
	Console     *interaction.Console
	Progress    interaction.Progress
	Prompter    interaction.Prompter
	Store       *credentials.Store
	Detector    *credentials.Detector
	Validator   *credentials.Validator
	Resolver    *resolver.Resolver
	Workspace   *workspace.Workspace
	Provisioner *terraform.Provisioner
	Operations  *orchestrator.Orchestrator
	Workflow    *workflow.Workflow

	closeLog func() error
}

// BuildApp loads the configuration and wires every component
func BuildApp(ctx context.Context, flags *Flags, streams Streams) (*App, error) {
	cfg, err := LoadConfig(flags)
	if err != nil {
		return nil, err
	}

	log, closeLog, err := CreateLogger(cfg.Log)
	if err != nil {
		return nil, errors.Wrap(errors.ErrConfigInvalid, err, "failed to create logger")
	}

	app, err := NewApp(ctx, cfg, log, streams)
	if err != nil {
		_ = closeLog()
		return nil, err
	}
	app.closeLog = closeLog
	return app, nil
}

// NewApp wires the components for an already loaded configuration
func NewApp(ctx context.Context, cfg *config.Config, log logger.Logger, streams Streams) (*App, error) {
	if streams.Out == nil {
		streams.Out = os.Stdout
	}
	if streams.Err == nil {
		streams.Err = os.Stderr
	}
	if streams.Prompter == nil {
		streams.Prompter = interaction.HuhPrompter{}
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled || cfg.Metrics.Textfile != "" {
		m = metrics.NewMetrics(metrics.DefaultConfig())
	}

	tp, err := tracing.NewProvider(ctx, tracing.Config{
		Enabled:        cfg.Tracing.Enabled,
		ServiceName:    "orion",
		ServiceVersion: version.Version,
		Endpoint:       cfg.Tracing.Endpoint,
		Insecure:       cfg.Tracing.Insecure,
		SamplingRatio:  cfg.Tracing.SamplingRatio,
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrConfigInvalid, err, "failed to initialize tracing")
	}
	tracer := tp.Tracer()

	console := interaction.NewConsole(streams.Out)
	animate := false
	if f, ok := streams.Err.(*os.File); ok {
		animate = interaction.IsTerminal(f)
	}
	progress := interaction.NewSpinner(streams.Err, animate)

	store := credentials.NewStore(cfg.Paths.CredentialsFile, log)
	detector := credentials.NewDetector(credentials.DetectorConfig{
		Store:         store,
		EnvFiles:      cfg.Paths.EnvFiles,
		DefaultRegion: cfg.AWS.DefaultRegion,
		Logger:        log,
	})

	awsConfig := aws.DefaultConfig()
	awsConfig.DefaultRegion = cfg.AWS.DefaultRegion
	cdn := fastly.NewProvider(&fastly.Config{APIURL: cfg.Fastly.APIURL, Timeout: cfg.Fastly.Timeout}, log)
	validator := credentials.NewValidator(credentials.ValidatorConfig{
		Identity:    aws.NewProvider(awsConfig, log),
		CurrentUser: cdn,
		Progress:    progress,
		Metrics:     m,
		Tracer:      tracer,
		Logger:      log,
	})

	res := resolver.New(resolver.Config{
		Detector:      detector,
		Validator:     validator,
		Saver:         store,
		Prompter:      streams.Prompter,
		Console:       console,
		DefaultRegion: cfg.AWS.DefaultRegion,
		Metrics:       m,
		Tracer:        tracer,
		Logger:        log,
	})

	ws := workspace.New(workspace.Config{
		Dir:      cfg.Paths.StateDir,
		Preserve: []string{cfg.Paths.CredentialsFile, cfg.Log.File, cfg.Paths.ConfigFile},
		Logger:   log,
	})

	prov := terraform.NewProvisioner(terraform.Config{
		Binary:      cfg.Terraform.Binary,
		Dir:         cfg.Terraform.Dir,
		StateFile:   ws.StateFile(),
		Environment: credentials.SnapshotFromOS(),
		Logger:      log,
	})

	ops := orchestrator.New(orchestrator.Config{
		Provisioner: prov,
		Progress:    progress,
		Menu:        orchestrator.NewRecoveryMenu(streams.Prompter, console, log),
		Console:     console,
		Hooks:       ws.Hooks(),
		Metrics:     m,
		Tracer:      tracer,
		Logger:      log,
	})

	flow := workflow.New(workflow.Config{
		Resolver:   res,
		Operations: ops,
		State:      ws,
		Outputs:    prov,
		Purger:     cdn,
		Prompter:   streams.Prompter,
		Console:    console,
		Progress:   progress,
		Logger:     log,
	})

	log.Debug("Application wired",
		logger.String("state_dir", cfg.Paths.StateDir),
		logger.String("terraform_dir", cfg.Terraform.Dir),
		logger.Bool("metrics", m != nil),
		logger.Bool("tracing", cfg.Tracing.Enabled),
	)

	return &App{
		Config:      cfg,
		Logger:      log,
		Metrics:     m,
		Tracing:     tp,
		Console:     console,
		Progress:    progress,
		Prompter:    streams.Prompter,
		Store:       store,
		Detector:    detector,
		Validator:   validator,
		Resolver:    res,
		Workspace:   ws,
		Provisioner: prov,
		Operations:  ops,
		Workflow:    flow,
		closeLog:    func() error { return nil },
	}, nil
}

// Close writes the metrics textfile, flushes traces and releases the log file
func (a *App) Close() {
	if err := a.Metrics.WriteTextfile(a.Config.Metrics.Textfile); err != nil {
		a.Logger.Warn("Writing metrics textfile failed", logger.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.Tracing.Shutdown(ctx); err != nil {
		a.Logger.Warn("Tracing shutdown failed", logger.Error(err))
	}

	_ = a.Logger.Sync()
	_ = a.closeLog()
}
