package terraform

import (
	"context"

	"github.com/orion-edge/orion-cli/internal/credentials"
	"github.com/orion-edge/orion-cli/internal/orchestrator"
	"github.com/orion-edge/orion-cli/pkg/logger"
)

// Terraform input variable names
const (
	VarAWSRegion    = "aws_region"
	VarGraphQLURL   = "graphql_url"
	VarHostOverride = "host_override"

	// EnvFastlyAPIKeyVar carries the Fastly token as a TF_VAR so it never
	// shows up on the command line
	EnvFastlyAPIKeyVar = "TF_VAR_fastly_api_key"
)

// Progress messages emitted between terraform phases
const (
	MsgInitializing = "Initializing Terraform..."
	MsgApplying     = "Applying infrastructure changes..."
	MsgDestroying   = "Destroying infrastructure resources..."
	MsgOutputs      = "Reading deployment outputs..."
)

// Config holds provisioner configuration
type Config struct {
	// Binary is the terraform executable, DefaultBinary when empty
	Binary string

	// Dir holds the infrastructure sources
	Dir string

	// StateFile is the local state file
	StateFile string

	// Environment is the base environment of every terraform process.
	// Credentials are layered on top per operation.
	Environment credentials.EnvironmentSnapshot

	Logger logger.Logger
}

// Option configures a Provisioner
type Option func(*Provisioner)

// WithExecutor replaces the terraform executor
func WithExecutor(executor IExecutor) Option {
	return func(p *Provisioner) {
		p.executor = executor
	}
}

// Provisioner runs deploy and destroy through terraform.
// Every phase is idempotent, so a failed attempt can be retried as is.
type Provisioner struct {
	executor    IExecutor
	target      Target
	environment credentials.EnvironmentSnapshot
	logger      logger.Logger
}

var _ orchestrator.Provisioner = (*Provisioner)(nil)

// NewProvisioner creates a terraform provisioner
func NewProvisioner(config Config, opts ...Option) *Provisioner {
	if config.Logger == nil {
		config.Logger = logger.Nop()
	}
	p := &Provisioner{
		executor:    NewExecutor(config.Binary, config.Logger),
		target:      Target{Dir: config.Dir, StateFile: config.StateFile},
		environment: config.Environment,
		logger:      config.Logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Provision runs init, apply and output
func (p *Provisioner) Provision(ctx context.Context, config orchestrator.DeployConfig, onProgress orchestrator.ProgressFunc) (orchestrator.Outputs, error) {
	emit := progressFunc(onProgress)
	inv := Invocation{
		Vars:   deployVars(config),
		Env:    p.environ(config.Credentials),
		OnLine: emit,
	}

	p.logger.Info("Provisioning infrastructure",
		logger.String("dir", p.target.Dir),
		logger.Bool("use_env", config.UseEnv),
	)

	emit(MsgInitializing)
	if err := p.executor.Init(ctx, p.target, inv); err != nil {
		return nil, err
	}

	emit(MsgApplying)
	if err := p.executor.Apply(ctx, p.target, inv); err != nil {
		return nil, err
	}

	emit(MsgOutputs)
	outputs, err := p.executor.Output(ctx, p.target, inv)
	if err != nil {
		return nil, err
	}
	return orchestrator.Outputs(outputs), nil
}

// Teardown runs init and destroy
func (p *Provisioner) Teardown(ctx context.Context, config orchestrator.DestroyConfig, onProgress orchestrator.ProgressFunc) error {
	emit := progressFunc(onProgress)
	inv := Invocation{
		Vars:   regionVars(config.Credentials),
		Env:    p.environ(config.Credentials),
		OnLine: emit,
	}

	p.logger.Info("Tearing down infrastructure", logger.String("dir", p.target.Dir))

	emit(MsgInitializing)
	if err := p.executor.Init(ctx, p.target, inv); err != nil {
		return err
	}

	emit(MsgDestroying)
	return p.executor.Destroy(ctx, p.target, inv)
}

// Outputs reads the outputs of the current state without credentials
func (p *Provisioner) Outputs(ctx context.Context) (orchestrator.Outputs, error) {
	outputs, err := p.executor.Output(ctx, p.target, Invocation{Env: p.environment.Environ()})
	if err != nil {
		return nil, err
	}
	return orchestrator.Outputs(outputs), nil
}

// environ layers the credential set over the base environment. Static keys
// replace any session token or profile left in the shell so the provider
// authenticates exactly as validation did.
func (p *Provisioner) environ(set credentials.CredentialSet) []string {
	env := p.environment.With("TF_IN_AUTOMATION", "1")
	if c := set.CloudCompute; c != nil {
		env = env.
			Without(
				credentials.EnvAWSSessionToken,
				credentials.EnvAWSSecurityToken,
				credentials.EnvAWSProfile,
			).
			With(credentials.EnvAWSAccessKeyID, c.AccessKeyID).
			With(credentials.EnvAWSSecretAccessKey, c.SecretAccessKey)
		if c.Region != "" {
			env = env.With(credentials.EnvAWSRegion, c.Region)
		}
	}
	if c := set.CDN; c != nil {
		env = env.
			With(credentials.EnvFastlyAPIKey, c.APIToken).
			With(EnvFastlyAPIKeyVar, c.APIToken)
	}
	return env.Environ()
}

func regionVars(set credentials.CredentialSet) map[string]string {
	vars := map[string]string{}
	if set.CloudCompute != nil && set.CloudCompute.Region != "" {
		vars[VarAWSRegion] = set.CloudCompute.Region
	}
	return vars
}

func deployVars(config orchestrator.DeployConfig) map[string]string {
	vars := regionVars(config.Credentials)
	if config.Backend.GraphQLURL != "" {
		vars[VarGraphQLURL] = config.Backend.GraphQLURL
	}
	if config.Backend.HostOverride != "" {
		vars[VarHostOverride] = config.Backend.HostOverride
	}
	return vars
}

func progressFunc(onProgress orchestrator.ProgressFunc) func(string) {
	return func(msg string) {
		if onProgress != nil {
			onProgress(orchestrator.ProgressEvent{Message: msg})
		}
	}
}
