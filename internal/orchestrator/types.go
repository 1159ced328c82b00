package orchestrator

import (
	"context"

	"github.com/orion-edge/orion-cli/internal/credentials"
)

// Operation names one of the two infrastructure operations
type Operation string

const (
	OperationDeploy  Operation = "deploy"
	OperationDestroy Operation = "destroy"
)

// String returns the string representation of the operation
func (o Operation) String() string {
	return string(o)
}

// ProgressEvent is a free-text status update from a running operation.
// It carries no structure and must not drive control decisions.
type ProgressEvent struct {
	Message string
}

// ProgressFunc receives progress events in the order they are emitted
type ProgressFunc func(ProgressEvent)

// BackendConfig describes the GraphQL origin fronted by the cache
type BackendConfig struct {
	// GraphQLURL is scheme://host:port
	GraphQLURL string

	// HostOverride is sent as the Host header to the origin when set
	HostOverride string
}

// DeployConfig is a resolved configuration ready for provisioning
type DeployConfig struct {
	Credentials credentials.CredentialSet
	Backend     BackendConfig

	// UseEnv is true when the credentials came from the environment
	UseEnv bool

	// SaveCredentials is the operator's persist answer from manual entry
	SaveCredentials bool
}

// DestroyConfig is a resolved configuration ready for teardown
type DestroyConfig struct {
	Credentials credentials.CredentialSet
}

// Outputs are the values reported by a finished provisioning run
type Outputs map[string]string

// Provisioner performs the external infrastructure operations.
//
// Both methods may be called again with an identical config after they
// returned an error; implementations must tolerate that (converge rather
// than duplicate). The orchestrator performs no cleanup between attempts.
type Provisioner interface {
	Provision(ctx context.Context, config DeployConfig, onProgress ProgressFunc) (Outputs, error)
	Teardown(ctx context.Context, config DestroyConfig, onProgress ProgressFunc) error
}

// Hooks run after an operation succeeds. A hook error is reported but does
// not turn the operation into a failure.
type Hooks struct {
	AfterDeploy  func(ctx context.Context, config DeployConfig, outputs Outputs) error
	AfterDestroy func(ctx context.Context, config DestroyConfig) error
}
