package credentials

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orion-edge/orion-cli/pkg/errors"
)

func TestStoreSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deployment-config.json")
	store := NewStore(path, nil)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	cloud := &CloudComputeCredentials{AccessKeyID: "AKIA", SecretAccessKey: "secret", Region: "eu-west-1"}
	cdn := &CDNCredentials{APIToken: "token"}

	require.NoError(t, store.Save(cloud, cdn))

	saved, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, cloud, saved.CloudCompute)
	assert.Equal(t, cdn, saved.CDN)
	assert.True(t, saved.SavedAt.Equal(fixed))

	set := saved.CredentialSet()
	assert.True(t, set.Complete())
	assert.Equal(t, SourceSaved, set.Source)
}

func TestStoreSaveFileLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deployment-config.json")
	store := NewStore(path, nil)

	require.NoError(t, store.Save(
		&CloudComputeCredentials{AccessKeyID: "AKIA", SecretAccessKey: "secret", Region: "us-east-1"},
		&CDNCredentials{APIToken: "token"},
	))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "cloudCompute")
	assert.Contains(t, raw, "cdn")
	assert.Contains(t, raw, "savedAt")

	_, err = time.Parse(time.RFC3339, raw["savedAt"].(string))
	assert.NoError(t, err, "savedAt must be ISO-8601")

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file must not be left behind")
}

func TestStoreSaveReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deployment-config.json")
	store := NewStore(path, nil)

	require.NoError(t, store.Save(&CloudComputeCredentials{AccessKeyID: "old", SecretAccessKey: "old"}, &CDNCredentials{APIToken: "old"}))
	require.NoError(t, store.Save(&CloudComputeCredentials{AccessKeyID: "new", SecretAccessKey: "new"}, &CDNCredentials{APIToken: "new"}))

	saved, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "new", saved.CloudCompute.AccessKeyID)
	assert.Equal(t, "new", saved.CDN.APIToken)
}

func TestStoreLoadErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := NewStore(filepath.Join(dir, "missing.json"), nil).Load()
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrCredentialNotFound))
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		writeFile(t, path, "{not json")

		_, err := NewStore(path, nil).Load()
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrCredentialMalformed))
	})

	t.Run("path is a directory", func(t *testing.T) {
		_, err := NewStore(dir, nil).Load()
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrCredentialLoadFailed))
	})
}

func TestStoreLoadLegacyLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deployment-config.json")
	writeFile(t, path, `{
  "aws": {"accessKeyId": "AKIA", "secretAccessKey": "secret", "region": "us-west-2"},
  "fastly": {"apiToken": "token"},
  "savedAt": "2025-01-01T00:00:00Z"
}`)

	saved, err := NewStore(path, nil).Load()
	require.NoError(t, err)
	require.NotNil(t, saved.CloudCompute)
	assert.Equal(t, "us-west-2", saved.CloudCompute.Region)
	require.NotNil(t, saved.CDN)
	assert.Equal(t, "token", saved.CDN.APIToken)
}

func TestStoreSaveUnwritableDir(t *testing.T) {
	if runtime.GOOS == "windows" || os.Getuid() == 0 {
		t.Skip("permission checks are not enforced")
	}

	dir := t.TempDir()
	require.NoError(t, os.Chmod(dir, 0o500))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o700) })

	err := NewStore(filepath.Join(dir, "deployment-config.json"), nil).Save(
		&CloudComputeCredentials{AccessKeyID: "a", SecretAccessKey: "b"},
		&CDNCredentials{APIToken: "c"},
	)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCredentialSaveFailed))
}
