// Package resolver turns the available credential sources into a validated
// credential set through an operator-driven retry loop.
package resolver

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/orion-edge/orion-cli/internal/credentials"
	"github.com/orion-edge/orion-cli/internal/interaction"
	"github.com/orion-edge/orion-cli/internal/outcome"
	"github.com/orion-edge/orion-cli/pkg/logger"
	"github.com/orion-edge/orion-cli/pkg/metrics"
	"github.com/orion-edge/orion-cli/pkg/tracing"
)

// SourceDetector reports the saved and env credential sources
type SourceDetector interface {
	DetectAvailableSources(ctx context.Context) credentials.Sources
}

// CredentialValidator checks a credential set against both providers
type CredentialValidator interface {
	ValidateAll(ctx context.Context, set credentials.CredentialSet) credentials.FullValidationResult
}

// CredentialSaver persists a validated credential set
type CredentialSaver interface {
	Save(cloud *credentials.CloudComputeCredentials, cdn *credentials.CDNCredentials) error
}

// Config holds resolver configuration
type Config struct {
	Detector  SourceDetector
	Validator CredentialValidator
	Saver     CredentialSaver
	Prompter  interaction.Prompter
	Console   *interaction.Console

	// DefaultRegion is offered during manual entry
	DefaultRegion string

	Metrics *metrics.Metrics
	Tracer  trace.Tracer
	Logger  logger.Logger
}

// Resolution is a validated credential set plus the bookkeeping flags the
// deploy flow carries forward
type Resolution struct {
	Set    credentials.CredentialSet
	Source credentials.Source

	// UseEnv is true when the set came from the environment
	UseEnv bool

	// SaveCredentials is the operator's persist answer (manual entry only)
	SaveCredentials bool

	// Attempts is the number of validation rounds it took
	Attempts int
}

// Resolver runs the credential resolution loop
type Resolver struct {
	detector      SourceDetector
	validator     CredentialValidator
	saver         CredentialSaver
	prompter      interaction.Prompter
	console       *interaction.Console
	defaultRegion string
	metrics       *metrics.Metrics
	tracer        trace.Tracer
	logger        logger.Logger
}

// New creates a resolver
func New(config Config) *Resolver {
	if config.Logger == nil {
		config.Logger = logger.Nop()
	}
	if config.Tracer == nil {
		config.Tracer = tracing.NoopTracer()
	}
	if config.DefaultRegion == "" {
		config.DefaultRegion = "us-east-1"
	}
	if config.Console == nil {
		config.Console = interaction.NewConsole(io.Discard)
	}
	return &Resolver{
		detector:      config.Detector,
		validator:     config.Validator,
		saver:         config.Saver,
		prompter:      config.Prompter,
		console:       config.Console,
		defaultRegion: config.DefaultRegion,
		metrics:       config.Metrics,
		tracer:        config.Tracer,
		logger:        config.Logger,
	}
}

// Resolve loops detect → select → collect → validate until a set passes
// validation or the operator cancels. There is no attempt limit.
// Credentials are persisted only for deploy, only after validation, and only
// when the operator asked for it during manual entry.
func (r *Resolver) Resolve(ctx context.Context, purpose credentials.Purpose) (result outcome.Result[Resolution]) {
	ctx, span := r.tracer.Start(ctx, "resolver.Resolve",
		trace.WithAttributes(tracing.AttrPurpose.String(purpose.String())),
	)
	log := r.logger.WithContext(ctx).With(logger.String("purpose", purpose.String()))

	defer func() {
		r.metrics.RecordResolution(purpose.String(), result.Kind().String())
		span.SetAttributes(attribute.String("orion.outcome", result.Kind().String()))
		tracing.EndSpan(span, result.Err())
	}()

	for attempt := 1; ; attempt++ {
		res, done := r.attempt(ctx, log, purpose, attempt)
		if done {
			return res
		}
	}
}

// attempt runs one loop iteration. done is false when validation failed and
// the loop should start over.
func (r *Resolver) attempt(ctx context.Context, log logger.Logger, purpose credentials.Purpose, n int) (outcome.Result[Resolution], bool) {
	ctx, span := r.tracer.Start(ctx, "resolver.attempt",
		trace.WithAttributes(tracing.AttrAttempt.Int(n)),
	)
	defer span.End()

	if ctx.Err() != nil {
		return r.stop(log, interaction.ErrCancelled), true
	}

	sources := r.detector.DetectAvailableSources(ctx)

	source, err := r.PromptForSource(sources, purpose)
	if err != nil {
		return r.stop(log, err), true
	}
	span.SetAttributes(tracing.AttrSource.String(source.String()))
	r.metrics.RecordResolutionAttempt(purpose.String(), source.String())

	var set credentials.CredentialSet
	save := false
	switch source {
	case credentials.SourceSaved:
		set = sources.SavedSet()
	case credentials.SourceEnv:
		set = sources.EnvSet()
	default:
		entry, err := r.CollectManual()
		if err != nil {
			return r.stop(log, err), true
		}
		set = entry.Set
		save = entry.Save
	}

	log.Info("Validating credentials",
		logger.Int("attempt", n),
		logger.String("source", source.String()),
		logger.String("region", regionOf(set)),
	)

	validation := r.validator.ValidateAll(ctx, set)
	if ctx.Err() != nil {
		return r.stop(log, interaction.ErrCancelled), true
	}
	if !validation.Valid() {
		log.Warn("Credential validation failed",
			logger.Int("attempt", n),
			logger.String("source", source.String()),
			logger.Any("errors", validation.Errors),
		)
		r.console.Error("Credential validation failed:")
		for _, e := range validation.Errors {
			r.console.Error(fmt.Sprintf("  - %s", e))
		}
		r.console.Info("Returning to credential selection...")
		return outcome.Result[Resolution]{}, false
	}

	if save && purpose == credentials.PurposeDeploy {
		r.persist(log, set)
	}

	log.Info("Credentials resolved",
		logger.Int("attempts", n),
		logger.String("source", source.String()),
	)

	return outcome.Succeeded(Resolution{
		Set:             set,
		Source:          source,
		UseEnv:          source == credentials.SourceEnv,
		SaveCredentials: save,
		Attempts:        n,
	}), true
}

// persist writes the set. A failed write is reported but does not undo a
// successful resolution.
func (r *Resolver) persist(log logger.Logger, set credentials.CredentialSet) {
	if r.saver == nil {
		return
	}
	if err := r.saver.Save(set.CloudCompute, set.CDN); err != nil {
		log.Error("Failed to save credentials", logger.Error(err))
		r.console.Warn(fmt.Sprintf("Could not save credentials: %v", err))
		return
	}
	if p, ok := r.saver.(interface{ Path() string }); ok {
		r.console.Success(fmt.Sprintf("Credentials saved to %s", p.Path()))
	}
}

func (r *Resolver) stop(log logger.Logger, err error) outcome.Result[Resolution] {
	if interaction.IsCancelled(err) {
		log.Info("Credential resolution cancelled")
		r.console.Cancelled()
		return outcome.Cancelled[Resolution]()
	}
	log.Error("Credential resolution failed", logger.Error(err))
	return outcome.Failed[Resolution](err)
}

func regionOf(set credentials.CredentialSet) string {
	if set.CloudCompute == nil {
		return ""
	}
	return set.CloudCompute.Region
}
