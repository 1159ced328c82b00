// Package orchestrator drives deploy and destroy operations with an
// operator-controlled retry loop.
package orchestrator

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/orion-edge/orion-cli/internal/interaction"
	"github.com/orion-edge/orion-cli/internal/outcome"
	"github.com/orion-edge/orion-cli/pkg/errors"
	"github.com/orion-edge/orion-cli/pkg/logger"
	"github.com/orion-edge/orion-cli/pkg/metrics"
	"github.com/orion-edge/orion-cli/pkg/tracing"
)

type operationText struct {
	start   string
	success string
	failure string
}

var texts = map[Operation]operationText{
	OperationDeploy: {
		start:   "Deploying infrastructure...",
		success: "Infrastructure deployed",
		failure: "Deployment failed",
	},
	OperationDestroy: {
		start:   "Destroying infrastructure...",
		success: "Infrastructure destroyed",
		failure: "Destroy failed",
	},
}

// Config holds orchestrator configuration
type Config struct {
	Provisioner Provisioner
	Progress    interaction.Progress
	Menu        *RecoveryMenu
	Console     *interaction.Console
	Hooks       Hooks

	Metrics *metrics.Metrics
	Tracer  trace.Tracer
	Logger  logger.Logger
}

// Orchestrator runs deploy and destroy operations
type Orchestrator struct {
	provisioner Provisioner
	progress    interaction.Progress
	menu        *RecoveryMenu
	console     *interaction.Console
	hooks       Hooks
	metrics     *metrics.Metrics
	tracer      trace.Tracer
	logger      logger.Logger
	newRunID    func() string
}

// New creates an orchestrator
func New(config Config) *Orchestrator {
	if config.Logger == nil {
		config.Logger = logger.Nop()
	}
	if config.Tracer == nil {
		config.Tracer = tracing.NoopTracer()
	}
	if config.Console == nil {
		config.Console = interaction.NewConsole(io.Discard)
	}
	return &Orchestrator{
		provisioner: config.Provisioner,
		progress:    config.Progress,
		menu:        config.Menu,
		console:     config.Console,
		hooks:       config.Hooks,
		metrics:     config.Metrics,
		tracer:      config.Tracer,
		logger:      config.Logger,
		newRunID:    uuid.NewString,
	}
}

// Deploy provisions infrastructure for config. On failure the recovery menu
// decides between retrying with the same config and aborting.
func (o *Orchestrator) Deploy(ctx context.Context, config DeployConfig) outcome.Result[Outputs] {
	var outputs Outputs
	err := o.run(ctx, OperationDeploy, func(ctx context.Context, onProgress ProgressFunc) error {
		out, err := o.provisioner.Provision(ctx, config, onProgress)
		if err != nil {
			return err
		}
		outputs = out
		return nil
	})
	if err != nil {
		return outcome.Failed[Outputs](err)
	}

	if o.hooks.AfterDeploy != nil {
		o.afterSuccess(ctx, OperationDeploy, o.hooks.AfterDeploy(ctx, config, outputs))
	}
	return outcome.Succeeded(outputs)
}

// Destroy tears infrastructure down. The local working state is only
// touched by the AfterDestroy hook, after a successful teardown.
func (o *Orchestrator) Destroy(ctx context.Context, config DestroyConfig) outcome.Result[struct{}] {
	err := o.run(ctx, OperationDestroy, func(ctx context.Context, onProgress ProgressFunc) error {
		return o.provisioner.Teardown(ctx, config, onProgress)
	})
	if err != nil {
		return outcome.Failed[struct{}](err)
	}

	if o.hooks.AfterDestroy != nil {
		o.afterSuccess(ctx, OperationDestroy, o.hooks.AfterDestroy(ctx, config))
	}
	return outcome.Succeeded(struct{}{})
}

// run is the Attempting → {Success, Failed → Menu} state machine.
// It returns nil on success and an ErrOperationAborted error when the
// operator chose exit.
func (o *Orchestrator) run(ctx context.Context, op Operation, attemptFn func(context.Context, ProgressFunc) error) error {
	runID := o.newRunID()
	text := texts[op]

	ctx, span := o.tracer.Start(ctx, "orchestrator."+op.String(),
		trace.WithAttributes(
			tracing.AttrOperation.String(op.String()),
			tracing.AttrRunID.String(runID),
		),
	)
	log := o.logger.WithContext(ctx).With(
		logger.String("operation", op.String()),
		logger.String("run_id", runID),
	)

	for attempt := 1; ; attempt++ {
		log.Info("Starting operation", logger.Int("attempt", attempt))
		tracing.AddEvent(ctx, "attempt", trace.WithAttributes(tracing.AttrAttempt.Int(attempt)))

		o.progressStart(text.start)
		start := time.Now()

		err := attemptFn(ctx, func(ev ProgressEvent) {
			o.progressUpdate(ev.Message)
		})
		duration := time.Since(start)
		o.metrics.RecordOperationRun(op.String(), err == nil, duration)

		if err == nil {
			o.progressSuccess(text.success)
			log.Info("Operation succeeded",
				logger.Int("attempt", attempt),
				logger.Duration("duration", duration),
			)
			tracing.EndSpan(span, nil)
			return nil
		}

		o.progressFail(text.failure)
		log.Error("Operation failed",
			logger.Int("attempt", attempt),
			logger.Duration("duration", duration),
			logger.Error(err),
		)
		tracing.RecordError(ctx, err)

		if ctx.Err() != nil || o.choose(err) != ChoiceRetry {
			log.Info("Operation aborted by operator", logger.Int("attempts", attempt))
			aborted := errors.Wrap(errors.ErrOperationAborted, err, fmt.Sprintf("%s aborted", op)).
				WithField("operation", op.String()).
				WithField("attempts", attempt)
			tracing.EndSpan(span, aborted)
			return aborted
		}

		o.metrics.RecordOperationRetry(op.String())
		log.Info("Retrying operation", logger.Int("next_attempt", attempt+1))
	}
}

func (o *Orchestrator) choose(err error) Choice {
	if o.menu == nil {
		return ChoiceExit
	}
	return o.menu.Show(err)
}

func (o *Orchestrator) afterSuccess(ctx context.Context, op Operation, err error) {
	if err == nil {
		return
	}
	o.logger.WithContext(ctx).Warn("Post-operation bookkeeping failed",
		logger.String("operation", op.String()),
		logger.Error(err),
	)
	o.console.Warn(fmt.Sprintf("Local state update after %s failed: %v", op, err))
}

func (o *Orchestrator) progressStart(msg string) {
	if o.progress != nil {
		o.progress.Start(msg)
	}
}

func (o *Orchestrator) progressUpdate(msg string) {
	if o.progress != nil {
		o.progress.Update(msg)
	}
}

func (o *Orchestrator) progressSuccess(msg string) {
	if o.progress != nil {
		o.progress.Success(msg)
	}
}

func (o *Orchestrator) progressFail(msg string) {
	if o.progress != nil {
		o.progress.Fail(msg)
	}
}
