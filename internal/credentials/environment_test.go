package credentials

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestParseEnviron(t *testing.T) {
	env := ParseEnviron([]string{"A=1", "B=x=y", "EMPTY=", "=bad", "novalue"})

	assert.Equal(t, "1", env.Get("A"))
	assert.Equal(t, "x=y", env.Get("B"))

	v, ok := env.Lookup("EMPTY")
	assert.True(t, ok)
	assert.Empty(t, v)

	_, ok = env.Lookup("novalue")
	assert.False(t, ok)
	assert.Equal(t, 3, env.Len())
}

func TestEnvironmentSnapshotIsImmutable(t *testing.T) {
	source := map[string]string{"A": "1"}
	env := NewEnvironmentSnapshot(source)
	source["A"] = "changed"

	next := env.With("B", "2")

	assert.Equal(t, "1", env.Get("A"))
	_, ok := env.Lookup("B")
	assert.False(t, ok)
	assert.Equal(t, "2", next.Get("B"))
}

func TestEnvironmentSnapshotWithout(t *testing.T) {
	env := NewEnvironmentSnapshot(map[string]string{"A": "1", "B": "2", "C": "3"})

	next := env.Without("A", "C", "missing")

	assert.Equal(t, []string{"B=2"}, next.Environ())
	assert.Equal(t, 3, env.Len())
}

func TestEnvironmentSnapshotEnvironSorted(t *testing.T) {
	env := NewEnvironmentSnapshot(map[string]string{"B": "2", "A": "1"})
	assert.Equal(t, []string{"A=1", "B=2"}, env.Environ())
}

func TestMergeDefaultsNeverOverwrites(t *testing.T) {
	tests := []struct {
		name     string
		base     map[string]string
		defaults map[string]string
		want     map[string]string
	}{
		{
			name:     "adds unset keys",
			base:     map[string]string{},
			defaults: map[string]string{EnvAWSRegion: "eu-west-1"},
			want:     map[string]string{EnvAWSRegion: "eu-west-1"},
		},
		{
			name:     "keeps explicit value",
			base:     map[string]string{EnvAWSRegion: "us-west-2"},
			defaults: map[string]string{EnvAWSRegion: "eu-west-1"},
			want:     map[string]string{EnvAWSRegion: "us-west-2"},
		},
		{
			name:     "keeps explicit empty value",
			base:     map[string]string{EnvFastlyAPIKey: ""},
			defaults: map[string]string{EnvFastlyAPIKey: "from-file"},
			want:     map[string]string{EnvFastlyAPIKey: ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := NewEnvironmentSnapshot(tt.base)
			merged := base.MergeDefaults(tt.defaults)

			assert.True(t, merged.Equal(NewEnvironmentSnapshot(tt.want)))
			assert.True(t, base.Equal(NewEnvironmentSnapshot(tt.base)), "base snapshot must not change")
		})
	}
}

func TestMergeEnvFile(t *testing.T) {
	dir := t.TempDir()
	cwdEnv := filepath.Join(dir, "app", ".env")
	parentEnv := filepath.Join(dir, ".env")

	writeFile(t, parentEnv, "AWS_REGION=from-parent\n")

	t.Run("falls back to the parent file", func(t *testing.T) {
		env, used, err := NewEnvironmentSnapshot(nil).MergeEnvFile(cwdEnv, parentEnv)
		require.NoError(t, err)
		assert.Equal(t, parentEnv, used)
		assert.Equal(t, "from-parent", env.Get(EnvAWSRegion))
	})

	writeFile(t, cwdEnv, `# local overrides
AWS_ACCESS_KEY_ID="AKIAFILE"
AWS_SECRET_ACCESS_KEY='secret-from-file'
AWS_REGION=from-cwd
`)

	t.Run("first existing file wins", func(t *testing.T) {
		env, used, err := NewEnvironmentSnapshot(nil).MergeEnvFile(cwdEnv, parentEnv)
		require.NoError(t, err)
		assert.Equal(t, cwdEnv, used)
		assert.Equal(t, "from-cwd", env.Get(EnvAWSRegion))
		assert.Equal(t, "AKIAFILE", env.Get(EnvAWSAccessKeyID))
		assert.Equal(t, "secret-from-file", env.Get(EnvAWSSecretAccessKey))
	})

	t.Run("explicit variables win over the file", func(t *testing.T) {
		base := NewEnvironmentSnapshot(map[string]string{
			EnvAWSAccessKeyID: "AKIAEXPLICIT",
			EnvAWSRegion:      "",
		})
		env, _, err := base.MergeEnvFile(cwdEnv)
		require.NoError(t, err)
		assert.Equal(t, "AKIAEXPLICIT", env.Get(EnvAWSAccessKeyID))
		assert.Equal(t, "", env.Get(EnvAWSRegion))
		assert.Equal(t, "secret-from-file", env.Get(EnvAWSSecretAccessKey))
	})

	t.Run("no file leaves the snapshot alone", func(t *testing.T) {
		base := NewEnvironmentSnapshot(map[string]string{"A": "1"})
		env, used, err := base.MergeEnvFile(filepath.Join(dir, "missing"), "")
		require.NoError(t, err)
		assert.Empty(t, used)
		assert.True(t, env.Equal(base))
	})

	t.Run("directories are skipped", func(t *testing.T) {
		_, used, err := NewEnvironmentSnapshot(nil).MergeEnvFile(dir, parentEnv)
		require.NoError(t, err)
		assert.Equal(t, parentEnv, used)
	})
}

func TestNormalizeFastlyToken(t *testing.T) {
	tests := []struct {
		name      string
		vars      map[string]string
		wantKey   string
		wantToken string
	}{
		{
			name:      "token copied to key",
			vars:      map[string]string{EnvFastlyAPIToken: "tok"},
			wantKey:   "tok",
			wantToken: "tok",
		},
		{
			name:      "key copied to token",
			vars:      map[string]string{EnvFastlyAPIKey: "key"},
			wantKey:   "key",
			wantToken: "key",
		},
		{
			name:      "both set are left alone",
			vars:      map[string]string{EnvFastlyAPIKey: "key", EnvFastlyAPIToken: "tok"},
			wantKey:   "key",
			wantToken: "tok",
		},
		{
			name: "neither set",
			vars: map[string]string{"OTHER": "x"},
		},
		{
			name:      "empty key replaced by token",
			vars:      map[string]string{EnvFastlyAPIKey: "", EnvFastlyAPIToken: "tok"},
			wantKey:   "tok",
			wantToken: "tok",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			once := NewEnvironmentSnapshot(tt.vars).NormalizeFastlyToken()
			twice := once.NormalizeFastlyToken()

			assert.Equal(t, tt.wantKey, once.Get(EnvFastlyAPIKey))
			assert.Equal(t, tt.wantToken, once.Get(EnvFastlyAPIToken))
			assert.True(t, once.Equal(twice), "normalization must be idempotent")
		})
	}
}

func TestEnvironmentCloudCompute(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
		want *CloudComputeCredentials
	}{
		{
			name: "missing secret",
			vars: map[string]string{EnvAWSAccessKeyID: "AKIA"},
			want: nil,
		},
		{
			name: "explicit region",
			vars: map[string]string{EnvAWSAccessKeyID: "AKIA", EnvAWSSecretAccessKey: "s", EnvAWSRegion: "eu-west-1"},
			want: &CloudComputeCredentials{AccessKeyID: "AKIA", SecretAccessKey: "s", Region: "eu-west-1"},
		},
		{
			name: "default region variable",
			vars: map[string]string{EnvAWSAccessKeyID: "AKIA", EnvAWSSecretAccessKey: "s", EnvAWSDefaultRegion: "ap-south-1"},
			want: &CloudComputeCredentials{AccessKeyID: "AKIA", SecretAccessKey: "s", Region: "ap-south-1"},
		},
		{
			name: "fallback region",
			vars: map[string]string{EnvAWSAccessKeyID: "AKIA", EnvAWSSecretAccessKey: "s"},
			want: &CloudComputeCredentials{AccessKeyID: "AKIA", SecretAccessKey: "s", Region: "us-east-1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewEnvironmentSnapshot(tt.vars).CloudCompute("us-east-1")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEnvironmentCDN(t *testing.T) {
	assert.Nil(t, NewEnvironmentSnapshot(nil).CDN())
	assert.Equal(t, &CDNCredentials{APIToken: "k"},
		NewEnvironmentSnapshot(map[string]string{EnvFastlyAPIKey: "k"}).CDN())
	assert.Equal(t, &CDNCredentials{APIToken: "t"},
		NewEnvironmentSnapshot(map[string]string{EnvFastlyAPIToken: "t"}).CDN())
}
