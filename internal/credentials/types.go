package credentials

import (
	"time"
)

// Source is the origin of a credential set
type Source string

const (
	// SourceSaved means the set was read from the persisted credentials file
	SourceSaved Source = "saved"

	// SourceEnv means the set was read from environment variables (and .env defaults)
	SourceEnv Source = "env"

	// SourceManual means the operator typed the set during this run
	SourceManual Source = "manual"
)

// String returns the string representation of the source
func (s Source) String() string {
	return string(s)
}

// IsValid returns true if the source is one of the known tags
func (s Source) IsValid() bool {
	switch s {
	case SourceSaved, SourceEnv, SourceManual:
		return true
	default:
		return false
	}
}

// Purpose is what the resolved credentials will be used for
type Purpose string

const (
	PurposeDeploy  Purpose = "deploy"
	PurposeDestroy Purpose = "destroy"
	PurposePurge   Purpose = "purge"
)

// String returns the string representation of the purpose
func (p Purpose) String() string {
	return string(p)
}

// CloudComputeCredentials are the AWS access keys used for compute, storage and logs
type CloudComputeCredentials struct {
	AccessKeyID     string `json:"accessKeyId"`
	SecretAccessKey string `json:"secretAccessKey"`
	Region          string `json:"region"`
}

// Complete reports whether both keys are present
func (c *CloudComputeCredentials) Complete() bool {
	return c != nil && c.AccessKeyID != "" && c.SecretAccessKey != ""
}

// CDNCredentials hold the Fastly API token
type CDNCredentials struct {
	APIToken string `json:"apiToken"`
}

// Complete reports whether the token is present
func (c *CDNCredentials) Complete() bool {
	return c != nil && c.APIToken != ""
}

// CredentialSet is one candidate set of credentials for both providers.
// Sets are built fresh on every resolution attempt and never mutated afterwards.
type CredentialSet struct {
	CloudCompute *CloudComputeCredentials
	CDN          *CDNCredentials
	Source       Source
}

// Complete reports whether both provider records are present
func (s CredentialSet) Complete() bool {
	return s.CloudCompute.Complete() && s.CDN.Complete()
}

// SavedCredentials is the on-disk layout of the credentials file
type SavedCredentials struct {
	CloudCompute *CloudComputeCredentials `json:"cloudCompute,omitempty"`
	CDN          *CDNCredentials          `json:"cdn,omitempty"`
	SavedAt      time.Time                `json:"savedAt"`
}

// CredentialSet returns the saved data tagged as SourceSaved
func (s *SavedCredentials) CredentialSet() CredentialSet {
	if s == nil {
		return CredentialSet{Source: SourceSaved}
	}
	return CredentialSet{
		CloudCompute: s.CloudCompute,
		CDN:          s.CDN,
		Source:       SourceSaved,
	}
}

// SourceStatus describes what one source can offer
type SourceStatus struct {
	// Available is true when any partial data was found
	Available bool

	// Complete is true when both provider credentials were found
	Complete bool

	HasCloudCompute bool
	HasCDN          bool
}

func statusOf(set CredentialSet) SourceStatus {
	hasCloud := set.CloudCompute.Complete()
	hasCDN := set.CDN.Complete()
	return SourceStatus{
		Available:       hasCloud || hasCDN,
		Complete:        hasCloud && hasCDN,
		HasCloudCompute: hasCloud,
		HasCDN:          hasCDN,
	}
}

// Sources is a point-in-time detection snapshot of the saved and env sources
type Sources struct {
	Saved SourceStatus
	Env   SourceStatus

	// SavedPath is the credentials file that was inspected
	SavedPath string

	savedSet    CredentialSet
	envSet      CredentialSet
	environment EnvironmentSnapshot
}

// SavedSet returns the credential set read from the credentials file
func (s Sources) SavedSet() CredentialSet {
	return s.savedSet
}

// EnvSet returns the credential set read from the environment
func (s Sources) EnvSet() CredentialSet {
	return s.envSet
}

// Environment returns the merged and normalized environment used for detection
func (s Sources) Environment() EnvironmentSnapshot {
	return s.environment
}

// ValidationResult is the outcome of one provider check
type ValidationResult struct {
	Valid bool
	Error string
}

// FullValidationResult covers both providers. Errors are ordered cloud compute first, then CDN.
type FullValidationResult struct {
	CloudCompute bool
	CDN          bool
	Errors       []string
}

// Valid reports whether both providers passed
func (r FullValidationResult) Valid() bool {
	return r.CloudCompute && r.CDN
}
