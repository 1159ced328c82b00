package aws

import (
	"context"
	stderrors "errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"

	"github.com/orion-edge/orion-cli/internal/provider"
	"github.com/orion-edge/orion-cli/pkg/errors"
	"github.com/orion-edge/orion-cli/pkg/logger"
)

// STSClient is the subset of the STS API used for identity checks
type STSClient interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// ClientFactory builds an STS client authenticated with static keys
type ClientFactory func(ctx context.Context, keys provider.AccessKeys) (STSClient, error)

// Provider implements provider.IdentityChecker using STS GetCallerIdentity
type Provider struct {
	config    *Config
	logger    logger.Logger
	newClient ClientFactory
}

// Option configures the provider
type Option func(*Provider)

// WithClientFactory replaces the STS client constructor
func WithClientFactory(factory ClientFactory) Option {
	return func(p *Provider) {
		p.newClient = factory
	}
}

// NewProvider creates a new AWS identity checker
func NewProvider(cfg *Config, log logger.Logger, opts ...Option) *Provider {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if log == nil {
		log = logger.Nop()
	}

	p := &Provider{
		config: cfg,
		logger: log,
	}
	p.newClient = p.defaultClient
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// DetectIdentity authenticates with keys and returns the caller identity
func (p *Provider) DetectIdentity(ctx context.Context, keys provider.AccessKeys) (*provider.Identity, error) {
	if keys.AccessKeyID == "" || keys.SecretAccessKey == "" {
		return nil, errors.New(
			errors.ErrCredentialMalformed,
			"access key ID and secret access key are required",
		).WithField("provider", "aws")
	}
	if keys.Region == "" {
		keys.Region = p.config.DefaultRegion
	}

	if p.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.Timeout)
		defer cancel()
	}

	client, err := p.newClient(ctx, keys)
	if err != nil {
		return nil, errors.Wrap(
			errors.ErrCredentialInvalid,
			err,
			"failed to create AWS config",
		).WithField("provider", "aws")
	}

	out, err := client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		p.logger.Debug("GetCallerIdentity failed",
			logger.String("region", keys.Region),
			logger.Error(err),
		)
		// message stays short; the SDK error is reachable via Unwrap
		verr := errors.New(errors.ErrCredentialValidationFailed, apiErrorMessage(err)).
			WithField("provider", "aws")
		verr.Cause = err
		return nil, verr
	}

	identity := &provider.Identity{
		Account: aws.ToString(out.Account),
		ARN:     aws.ToString(out.Arn),
		UserID:  aws.ToString(out.UserId),
	}

	p.logger.Debug("AWS identity detected",
		logger.String("account", identity.Account),
		logger.String("region", keys.Region),
	)

	return identity, nil
}

// Name returns the provider name
func (p *Provider) Name() provider.ProviderName {
	return provider.ProviderAWS
}

func (p *Provider) defaultClient(ctx context.Context, keys provider.AccessKeys) (STSClient, error) {
	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(keys.Region),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(keys.AccessKeyID, keys.SecretAccessKey, ""),
		),
	}
	if p.config.MaxAttempts > 0 {
		loadOpts = append(loadOpts, config.WithRetryMaxAttempts(p.config.MaxAttempts))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}

	return sts.NewFromConfig(cfg, func(o *sts.Options) {
		if p.config.Endpoint != "" {
			o.BaseEndpoint = aws.String(p.config.Endpoint)
		}
	}), nil
}

// apiErrorMessage returns the service message of an STS API error, or the error text
func apiErrorMessage(err error) string {
	var apiErr smithy.APIError
	if stderrors.As(err, &apiErr) && apiErr.ErrorMessage() != "" {
		return apiErr.ErrorCode() + ": " + apiErr.ErrorMessage()
	}
	return err.Error()
}
