// Package fastly talks to the Fastly API: token checks against the
// current-user endpoint and cache purges for a deployed service
package fastly

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gofastly "github.com/fastly/go-fastly/v13/fastly"

	"github.com/orion-edge/orion-cli/internal/provider"
	"github.com/orion-edge/orion-cli/pkg/errors"
	"github.com/orion-edge/orion-cli/pkg/logger"
)

const (
	// DefaultAPIURL is the public Fastly API
	DefaultAPIURL = "https://api.fastly.com"

	// DefaultTimeout bounds a single API call
	DefaultTimeout = 5 * time.Second
)

// Config holds Fastly provider configuration
type Config struct {
	APIURL  string
	Timeout time.Duration
}

// DefaultConfig returns default Fastly configuration
func DefaultConfig() *Config {
	return &Config{
		APIURL:  DefaultAPIURL,
		Timeout: DefaultTimeout,
	}
}

// Provider implements provider.CurrentUserChecker
type Provider struct {
	config *Config
	client *http.Client
	logger logger.Logger
}

// NewProvider creates a new Fastly API provider
func NewProvider(cfg *Config, log logger.Logger) *Provider {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Provider{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: log,
	}
}

// newClient returns an SDK client authenticated with token
func (p *Provider) newClient(token string) (*gofastly.Client, error) {
	client, err := gofastly.NewClientForEndpoint(token, strings.TrimRight(p.config.APIURL, "/"))
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidArgument, err, "invalid Fastly API URL").
			WithField("url", p.config.APIURL)
	}
	client.HTTPClient = p.client
	return client, nil
}

// CheckCurrentUser returns the user owning token. Any non-2xx status is an error.
func (p *Provider) CheckCurrentUser(ctx context.Context, token string) (*provider.CurrentUser, error) {
	if token == "" {
		return nil, errors.New(errors.ErrCredentialMalformed, "API token is required").
			WithField("provider", "fastly")
	}

	client, err := p.newClient(token)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	user, err := client.GetCurrentUser(ctx)
	if err != nil {
		p.logger.Debug("Fastly current_user request failed", logger.Error(err))
		return nil, classify(ctx, err, errors.ErrCredentialValidationFailed)
	}

	p.logger.Debug("Fastly current_user responded",
		logger.Duration("duration", time.Since(start)),
	)

	return &provider.CurrentUser{
		ID:         deref(user.UserID),
		Login:      deref(user.Login),
		Name:       deref(user.Name),
		CustomerID: deref(user.CustomerID),
	}, nil
}

// PurgeAll invalidates every cached object of serviceID
func (p *Provider) PurgeAll(ctx context.Context, token, serviceID string) error {
	if token == "" {
		return errors.New(errors.ErrCredentialMalformed, "API token is required").
			WithField("provider", "fastly")
	}
	if serviceID == "" {
		return errors.New(errors.ErrInvalidArgument, "service ID is required").
			WithField("provider", "fastly")
	}

	client, err := p.newClient(token)
	if err != nil {
		return err
	}

	start := time.Now()
	if _, err := client.PurgeAll(ctx, &gofastly.PurgeAllInput{ServiceID: serviceID}); err != nil {
		p.logger.Debug("Fastly purge_all request failed",
			logger.String("service_id", serviceID),
			logger.Error(err),
		)
		return classify(ctx, err, errors.ErrOperationFailed).WithField("service_id", serviceID)
	}

	p.logger.Info("Fastly cache purged",
		logger.String("service_id", serviceID),
		logger.Duration("duration", time.Since(start)),
	)
	return nil
}

// Name returns the provider name
func (p *Provider) Name() provider.ProviderName {
	return provider.ProviderFastly
}

// classify maps SDK errors onto error codes. An HTTP status becomes
// "API returned <status>" under statusCode; transport failures become network errors.
func classify(ctx context.Context, err error, statusCode errors.ErrorCode) *errors.Error {
	var httpErr *gofastly.HTTPError
	if stderrors.As(err, &httpErr) {
		return errors.New(
			statusCode,
			fmt.Sprintf("API returned %d", httpErr.StatusCode),
		).WithField("provider", "fastly").WithField("status", httpErr.StatusCode)
	}

	code := errors.ErrNetworkUnreachable
	if ctx.Err() != nil || isTimeout(err) {
		code = errors.ErrNetworkTimeout
	}
	verr := errors.New(code, err.Error()).WithField("provider", "fastly")
	verr.Cause = err
	return verr
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return stderrors.As(err, &t) && t.Timeout()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
