package credentials

import (
	"os"
	"sort"
	"strings"

	"github.com/subosito/gotenv"
)

// Environment variable names read by the detector
const (
	EnvAWSAccessKeyID     = "AWS_ACCESS_KEY_ID"
	EnvAWSSecretAccessKey = "AWS_SECRET_ACCESS_KEY"
	EnvAWSRegion          = "AWS_REGION"
	EnvAWSDefaultRegion   = "AWS_DEFAULT_REGION"
	EnvFastlyAPIKey       = "FASTLY_API_KEY"
	EnvFastlyAPIToken     = "FASTLY_API_TOKEN"

	EnvAWSSessionToken  = "AWS_SESSION_TOKEN"
	EnvAWSSecurityToken = "AWS_SECURITY_TOKEN"
	EnvAWSProfile       = "AWS_PROFILE"
)

// EnvironmentSnapshot is an immutable view of a process environment.
// Every transformation returns a new snapshot; the process environment is never written.
type EnvironmentSnapshot struct {
	vars map[string]string
}

// NewEnvironmentSnapshot copies vars into a new snapshot
func NewEnvironmentSnapshot(vars map[string]string) EnvironmentSnapshot {
	copied := make(map[string]string, len(vars))
	for k, v := range vars {
		copied[k] = v
	}
	return EnvironmentSnapshot{vars: copied}
}

// SnapshotFromOS captures the current process environment
func SnapshotFromOS() EnvironmentSnapshot {
	return ParseEnviron(os.Environ())
}

// ParseEnviron builds a snapshot from KEY=VALUE pairs
func ParseEnviron(environ []string) EnvironmentSnapshot {
	vars := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		vars[k] = v
	}
	return EnvironmentSnapshot{vars: vars}
}

// Lookup returns the value of key and whether it is set
func (e EnvironmentSnapshot) Lookup(key string) (string, bool) {
	v, ok := e.vars[key]
	return v, ok
}

// Get returns the value of key, or "" when unset
func (e EnvironmentSnapshot) Get(key string) string {
	return e.vars[key]
}

// Len returns the number of variables
func (e EnvironmentSnapshot) Len() int {
	return len(e.vars)
}

// With returns a copy with key set to value
func (e EnvironmentSnapshot) With(key, value string) EnvironmentSnapshot {
	next := NewEnvironmentSnapshot(e.vars)
	next.vars[key] = value
	return next
}

// Without returns a copy with keys unset
func (e EnvironmentSnapshot) Without(keys ...string) EnvironmentSnapshot {
	next := NewEnvironmentSnapshot(e.vars)
	for _, k := range keys {
		delete(next.vars, k)
	}
	return next
}

// Environ returns the snapshot as sorted KEY=VALUE pairs, suitable for exec.Cmd.Env
func (e EnvironmentSnapshot) Environ() []string {
	keys := make([]string, 0, len(e.vars))
	for k := range e.vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+e.vars[k])
	}
	return out
}

// MergeDefaults adds every entry of defaults whose key is not already set.
// Variables already present keep their value, even when empty.
func (e EnvironmentSnapshot) MergeDefaults(defaults map[string]string) EnvironmentSnapshot {
	next := NewEnvironmentSnapshot(e.vars)
	for k, v := range defaults {
		if _, set := next.vars[k]; !set {
			next.vars[k] = v
		}
	}
	return next
}

// MergeEnvFile reads the first existing file among paths and merges it with
// MergeDefaults. It returns the path that was used, or "" when none exists.
func (e EnvironmentSnapshot) MergeEnvFile(paths ...string) (EnvironmentSnapshot, string, error) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			continue
		}
		parsed, err := gotenv.Read(p)
		if err != nil {
			return e, p, err
		}
		return e.MergeDefaults(parsed), p, nil
	}
	return e, "", nil
}

// NormalizeFastlyToken makes FASTLY_API_KEY and FASTLY_API_TOKEN interchangeable:
// when exactly one of them is non-empty it is copied to the other.
// Applying it twice yields the same snapshot as applying it once.
func (e EnvironmentSnapshot) NormalizeFastlyToken() EnvironmentSnapshot {
	key := e.Get(EnvFastlyAPIKey)
	token := e.Get(EnvFastlyAPIToken)

	switch {
	case token != "" && key == "":
		return e.With(EnvFastlyAPIKey, token)
	case key != "" && token == "":
		return e.With(EnvFastlyAPIToken, key)
	default:
		return e
	}
}

// CloudCompute extracts AWS credentials. Region falls back to AWS_DEFAULT_REGION,
// then to defaultRegion. Returns nil unless both keys are set.
func (e EnvironmentSnapshot) CloudCompute(defaultRegion string) *CloudComputeCredentials {
	accessKey := e.Get(EnvAWSAccessKeyID)
	secret := e.Get(EnvAWSSecretAccessKey)
	if accessKey == "" || secret == "" {
		return nil
	}

	region := e.Get(EnvAWSRegion)
	if region == "" {
		region = e.Get(EnvAWSDefaultRegion)
	}
	if region == "" {
		region = defaultRegion
	}

	return &CloudComputeCredentials{
		AccessKeyID:     accessKey,
		SecretAccessKey: secret,
		Region:          region,
	}
}

// CDN extracts the Fastly token from either accepted variable name
func (e EnvironmentSnapshot) CDN() *CDNCredentials {
	token := e.Get(EnvFastlyAPIKey)
	if token == "" {
		token = e.Get(EnvFastlyAPIToken)
	}
	if token == "" {
		return nil
	}
	return &CDNCredentials{APIToken: token}
}

// Equal reports whether both snapshots hold exactly the same variables
func (e EnvironmentSnapshot) Equal(other EnvironmentSnapshot) bool {
	if len(e.vars) != len(other.vars) {
		return false
	}
	for k, v := range e.vars {
		if ov, ok := other.vars[k]; !ok || ov != v {
			return false
		}
	}
	return true
}
