package credentials

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/orion-edge/orion-cli/internal/interaction"
	"github.com/orion-edge/orion-cli/internal/provider"
	"github.com/orion-edge/orion-cli/pkg/logger"
	"github.com/orion-edge/orion-cli/pkg/metrics"
	"github.com/orion-edge/orion-cli/pkg/tracing"
)

const errNotProvided = "credentials not provided"

// ValidatorConfig holds validator configuration
type ValidatorConfig struct {
	// Identity checks cloud-compute access keys
	Identity provider.IdentityChecker

	// CurrentUser checks the CDN API token
	CurrentUser provider.CurrentUserChecker

	// Progress receives the before/after message of each check
	Progress interaction.Progress

	Metrics *metrics.Metrics
	Tracer  trace.Tracer
	Logger  logger.Logger
}

// Validator performs live authentication checks against both providers
type Validator struct {
	identity    provider.IdentityChecker
	currentUser provider.CurrentUserChecker
	progress    interaction.Progress
	metrics     *metrics.Metrics
	tracer      trace.Tracer
	logger      logger.Logger
}

// NewValidator creates a new credential validator
func NewValidator(config ValidatorConfig) *Validator {
	if config.Logger == nil {
		config.Logger = logger.Nop()
	}
	if config.Tracer == nil {
		config.Tracer = tracing.NoopTracer()
	}
	return &Validator{
		identity:    config.Identity,
		currentUser: config.CurrentUser,
		progress:    config.Progress,
		metrics:     config.Metrics,
		tracer:      config.Tracer,
		logger:      config.Logger,
	}
}

// ValidateCloudCompute runs the "who am I" identity call with creds.
// Failures of any kind are reported in the result, never returned.
func (v *Validator) ValidateCloudCompute(ctx context.Context, creds *CloudComputeCredentials) ValidationResult {
	if !creds.Complete() {
		return ValidationResult{Error: errNotProvided}
	}

	_, err := v.identity.DetectIdentity(ctx, provider.AccessKeys{
		AccessKeyID:     creds.AccessKeyID,
		SecretAccessKey: creds.SecretAccessKey,
		Region:          creds.Region,
	})
	if err != nil {
		return ValidationResult{Error: err.Error()}
	}
	return ValidationResult{Valid: true}
}

// ValidateCDN checks the API token against the current-user endpoint
func (v *Validator) ValidateCDN(ctx context.Context, creds *CDNCredentials) ValidationResult {
	if !creds.Complete() {
		return ValidationResult{Error: errNotProvided}
	}

	if _, err := v.currentUser.CheckCurrentUser(ctx, creds.APIToken); err != nil {
		return ValidationResult{Error: err.Error()}
	}
	return ValidationResult{Valid: true}
}

// ValidateAll checks both providers in order, always running both.
// Errors are prefixed with the provider display name.
func (v *Validator) ValidateAll(ctx context.Context, set CredentialSet) FullValidationResult {
	ctx, span := v.tracer.Start(ctx, "credentials.ValidateAll",
		trace.WithAttributes(tracing.AttrSource.String(set.Source.String())),
	)
	defer span.End()

	var result FullValidationResult

	cloud := v.check(ctx, provider.ProviderAWS, func(ctx context.Context) ValidationResult {
		return v.ValidateCloudCompute(ctx, set.CloudCompute)
	})
	result.CloudCompute = cloud.Valid
	if !cloud.Valid {
		result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", provider.ProviderAWS.DisplayName(), cloud.Error))
	}

	cdn := v.check(ctx, provider.ProviderFastly, func(ctx context.Context) ValidationResult {
		return v.ValidateCDN(ctx, set.CDN)
	})
	result.CDN = cdn.Valid
	if !cdn.Valid {
		result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", provider.ProviderFastly.DisplayName(), cdn.Error))
	}

	span.SetAttributes(
		attribute.Bool("orion.aws.valid", result.CloudCompute),
		attribute.Bool("orion.fastly.valid", result.CDN),
	)
	return result
}

func (v *Validator) check(ctx context.Context, name provider.ProviderName, fn func(context.Context) ValidationResult) ValidationResult {
	display := name.DisplayName()

	ctx, span := v.tracer.Start(ctx, "credentials.Validate",
		trace.WithAttributes(tracing.AttrProvider.String(name.String())),
	)

	v.progressStart(fmt.Sprintf("Validating %s credentials...", display))

	start := time.Now()
	res := fn(ctx)
	duration := time.Since(start)

	v.metrics.RecordCredentialValidation(name.String(), res.Valid, duration)

	if res.Valid {
		v.progressSuccess(fmt.Sprintf("%s credentials valid", display))
		v.logger.Info("Credentials valid",
			logger.String("provider", name.String()),
			logger.Duration("duration", duration),
		)
		tracing.EndSpan(span, nil)
	} else {
		v.progressFail(fmt.Sprintf("%s credentials invalid", display))
		v.logger.Warn("Credentials invalid",
			logger.String("provider", name.String()),
			logger.String("reason", res.Error),
			logger.Duration("duration", duration),
		)
		tracing.EndSpan(span, errors.New(res.Error))
	}

	return res
}

func (v *Validator) progressStart(msg string) {
	if v.progress != nil {
		v.progress.Start(msg)
	}
}

func (v *Validator) progressSuccess(msg string) {
	if v.progress != nil {
		v.progress.Success(msg)
	}
}

func (v *Validator) progressFail(msg string) {
	if v.progress != nil {
		v.progress.Fail(msg)
	}
}
