package provider

import (
	"context"
)

// IdentityChecker performs a "who am I" call against the cloud-compute provider
type IdentityChecker interface {
	// DetectIdentity authenticates with keys and returns the caller identity
	DetectIdentity(ctx context.Context, keys AccessKeys) (*Identity, error)

	// Name returns the provider name
	Name() ProviderName
}

// CurrentUserChecker verifies a CDN API token against the current-user endpoint
type CurrentUserChecker interface {
	// CheckCurrentUser returns the user owning token
	CheckCurrentUser(ctx context.Context, token string) (*CurrentUser, error)

	// Name returns the provider name
	Name() ProviderName
}

// AccessKeys are static access-key credentials for the cloud-compute provider
type AccessKeys struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
}

// Identity is the caller identity returned by the cloud-compute provider
type Identity struct {
	Account string
	ARN     string
	UserID  string
}

// CurrentUser is the account owning a CDN API token
type CurrentUser struct {
	ID         string
	Login      string
	Name       string
	CustomerID string
}

// ProviderName represents a provider name
type ProviderName string

const (
	// ProviderAWS is Amazon Web Services, the cloud-compute provider
	ProviderAWS ProviderName = "aws"

	// ProviderFastly is Fastly, the CDN provider
	ProviderFastly ProviderName = "fastly"
)

// String returns the string representation of the provider name
func (p ProviderName) String() string {
	return string(p)
}

// DisplayName returns the name shown to the operator
func (p ProviderName) DisplayName() string {
	switch p {
	case ProviderAWS:
		return "AWS"
	case ProviderFastly:
		return "Fastly"
	default:
		return string(p)
	}
}

// IsValid returns true if the provider name is valid
func (p ProviderName) IsValid() bool {
	switch p {
	case ProviderAWS, ProviderFastly:
		return true
	default:
		return false
	}
}
