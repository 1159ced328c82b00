package terraform

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orion-edge/orion-cli/internal/credentials"
	"github.com/orion-edge/orion-cli/internal/orchestrator"
)

type recordedCall struct {
	Command string
	Target  Target
	Vars    map[string]string
	Env     []string
}

// recordingExecutor records every call and fails the named command
type recordingExecutor struct {
	calls   []recordedCall
	failOn  string
	lines   []string
	outputs map[string]string
}

func (r *recordingExecutor) record(command string, target Target, inv Invocation) error {
	r.calls = append(r.calls, recordedCall{Command: command, Target: target, Vars: inv.Vars, Env: inv.Env})
	if inv.OnLine != nil {
		for _, line := range r.lines {
			inv.OnLine(line)
		}
	}
	if command == r.failOn {
		return errors.New(command + " failed")
	}
	return nil
}

func (r *recordingExecutor) Init(_ context.Context, target Target, inv Invocation) error {
	return r.record("init", target, inv)
}

func (r *recordingExecutor) Apply(_ context.Context, target Target, inv Invocation) error {
	return r.record("apply", target, inv)
}

func (r *recordingExecutor) Destroy(_ context.Context, target Target, inv Invocation) error {
	return r.record("destroy", target, inv)
}

func (r *recordingExecutor) Output(_ context.Context, target Target, inv Invocation) (map[string]string, error) {
	if err := r.record("output", target, inv); err != nil {
		return nil, err
	}
	return r.outputs, nil
}

func (r *recordingExecutor) commands() []string {
	out := make([]string, 0, len(r.calls))
	for _, c := range r.calls {
		out = append(out, c.Command)
	}
	return out
}

func testCredentials() credentials.CredentialSet {
	return credentials.CredentialSet{
		CloudCompute: &credentials.CloudComputeCredentials{
			AccessKeyID:     "AKIAEXAMPLE",
			SecretAccessKey: "secret",
			Region:          "eu-west-1",
		},
		CDN:    &credentials.CDNCredentials{APIToken: "fastly-token"},
		Source: credentials.SourceManual,
	}
}

func newTestProvisioner(exec *recordingExecutor) *Provisioner {
	return NewProvisioner(Config{
		Dir:       "/srv/infra",
		StateFile: "/home/op/.config/orion/terraform.tfstate",
		Environment: credentials.NewEnvironmentSnapshot(map[string]string{
			"PATH":              "/usr/bin",
			"AWS_ACCESS_KEY_ID": "from-process",
		}),
	}, WithExecutor(exec))
}

func collect(events *[]string) orchestrator.ProgressFunc {
	return func(ev orchestrator.ProgressEvent) {
		*events = append(*events, ev.Message)
	}
}

func TestProvision(t *testing.T) {
	exec := &recordingExecutor{
		lines:   []string{"line"},
		outputs: map[string]string{"cdn_service.domain_name": "cdn.example.com"},
	}
	p := newTestProvisioner(exec)

	var events []string
	outputs, err := p.Provision(context.Background(), orchestrator.DeployConfig{
		Credentials: testCredentials(),
		Backend: orchestrator.BackendConfig{
			GraphQLURL:   "https://api.example.com:443",
			HostOverride: "api.example.com",
		},
	}, collect(&events))

	require.NoError(t, err)
	assert.Equal(t, orchestrator.Outputs{"cdn_service.domain_name": "cdn.example.com"}, outputs)
	assert.Equal(t, []string{"init", "apply", "output"}, exec.commands())
	assert.Equal(t, []string{
		MsgInitializing, "line",
		MsgApplying, "line",
		MsgOutputs, "line",
	}, events)

	apply := exec.calls[1]
	assert.Equal(t, Target{Dir: "/srv/infra", StateFile: "/home/op/.config/orion/terraform.tfstate"}, apply.Target)
	assert.Equal(t, map[string]string{
		VarAWSRegion:    "eu-west-1",
		VarGraphQLURL:   "https://api.example.com:443",
		VarHostOverride: "api.example.com",
	}, apply.Vars)
	assert.Contains(t, apply.Env, "AWS_ACCESS_KEY_ID=AKIAEXAMPLE")
	assert.NotContains(t, apply.Env, "AWS_ACCESS_KEY_ID=from-process")
	assert.Contains(t, apply.Env, "AWS_SECRET_ACCESS_KEY=secret")
	assert.Contains(t, apply.Env, "AWS_REGION=eu-west-1")
	assert.Contains(t, apply.Env, "FASTLY_API_KEY=fastly-token")
	assert.Contains(t, apply.Env, "TF_VAR_fastly_api_key=fastly-token")
	assert.Contains(t, apply.Env, "PATH=/usr/bin")
	assert.Contains(t, apply.Env, "TF_IN_AUTOMATION=1")
}

func TestEnvironDropsAmbientAWSSession(t *testing.T) {
	base := credentials.NewEnvironmentSnapshot(map[string]string{
		"PATH":               "/usr/bin",
		"AWS_SESSION_TOKEN":  "stale-session",
		"AWS_SECURITY_TOKEN": "stale-security",
		"AWS_PROFILE":        "sandbox",
	})

	tests := []struct {
		name        string
		set         credentials.CredentialSet
		wantDropped bool
	}{
		{
			name:        "cloud compute keys layered",
			set:         testCredentials(),
			wantDropped: true,
		},
		{
			name: "cdn only",
			set:  credentials.CredentialSet{CDN: &credentials.CDNCredentials{APIToken: "fastly-token"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &recordingExecutor{}
			p := NewProvisioner(Config{Dir: "/srv/infra", Environment: base}, WithExecutor(exec))

			require.NoError(t, p.Teardown(context.Background(), orchestrator.DestroyConfig{Credentials: tt.set}, nil))

			env := exec.calls[len(exec.calls)-1].Env
			assert.Contains(t, env, "PATH=/usr/bin")
			for _, kv := range []string{"AWS_SESSION_TOKEN=stale-session", "AWS_SECURITY_TOKEN=stale-security", "AWS_PROFILE=sandbox"} {
				if tt.wantDropped {
					assert.NotContains(t, env, kv)
				} else {
					assert.Contains(t, env, kv)
				}
			}
		})
	}
}

func TestProvisionStopsAtFirstFailure(t *testing.T) {
	tests := []struct {
		failOn string
		want   []string
	}{
		{failOn: "init", want: []string{"init"}},
		{failOn: "apply", want: []string{"init", "apply"}},
		{failOn: "output", want: []string{"init", "apply", "output"}},
	}

	for _, tt := range tests {
		t.Run(tt.failOn, func(t *testing.T) {
			exec := &recordingExecutor{failOn: tt.failOn}
			p := newTestProvisioner(exec)

			_, err := p.Provision(context.Background(), orchestrator.DeployConfig{Credentials: testCredentials()}, nil)

			require.Error(t, err)
			assert.Equal(t, tt.failOn+" failed", err.Error())
			assert.Equal(t, tt.want, exec.commands())
		})
	}
}

func TestProvisionRetryIsIdentical(t *testing.T) {
	exec := &recordingExecutor{failOn: "apply"}
	p := newTestProvisioner(exec)
	config := orchestrator.DeployConfig{
		Credentials: testCredentials(),
		Backend:     orchestrator.BackendConfig{GraphQLURL: "http://origin:80"},
	}

	_, err := p.Provision(context.Background(), config, nil)
	require.Error(t, err)
	exec.failOn = ""
	_, err = p.Provision(context.Background(), config, nil)
	require.NoError(t, err)

	assert.Equal(t, exec.calls[1].Vars, exec.calls[3].Vars)
	assert.Equal(t, exec.calls[1].Env, exec.calls[3].Env)
}

func TestTeardown(t *testing.T) {
	exec := &recordingExecutor{}
	p := newTestProvisioner(exec)

	var events []string
	err := p.Teardown(context.Background(), orchestrator.DestroyConfig{Credentials: testCredentials()}, collect(&events))

	require.NoError(t, err)
	assert.Equal(t, []string{"init", "destroy"}, exec.commands())
	assert.Equal(t, []string{MsgInitializing, MsgDestroying}, events)
	assert.Equal(t, map[string]string{VarAWSRegion: "eu-west-1"}, exec.calls[1].Vars)
	assert.Contains(t, exec.calls[1].Env, "AWS_SECRET_ACCESS_KEY=secret")
}

func TestTeardownFailure(t *testing.T) {
	exec := &recordingExecutor{failOn: "destroy"}
	p := newTestProvisioner(exec)

	err := p.Teardown(context.Background(), orchestrator.DestroyConfig{Credentials: testCredentials()}, nil)

	require.EqualError(t, err, "destroy failed")
}

func TestOutputsUsesBaseEnvironment(t *testing.T) {
	exec := &recordingExecutor{outputs: map[string]string{"instance_id": "abc"}}
	p := newTestProvisioner(exec)

	outputs, err := p.Outputs(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "abc", outputs["instance_id"])
	assert.Equal(t, []string{"AWS_ACCESS_KEY_ID=from-process", "PATH=/usr/bin"}, exec.calls[0].Env)
}
