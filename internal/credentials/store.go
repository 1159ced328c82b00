package credentials

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/orion-edge/orion-cli/pkg/errors"
	"github.com/orion-edge/orion-cli/pkg/logger"
)

// Store reads and writes the persisted credentials file
type Store struct {
	path   string
	logger logger.Logger
	now    func() time.Time
}

// NewStore creates a store for the credentials file at path
func NewStore(path string, log logger.Logger) *Store {
	if log == nil {
		log = logger.Nop()
	}
	return &Store{
		path:   path,
		logger: log,
		now:    time.Now,
	}
}

// Path returns the credentials file location
func (s *Store) Path() string {
	return s.path
}

// legacyFile is the layout written by earlier releases
type legacyFile struct {
	AWS    *CloudComputeCredentials `json:"aws,omitempty"`
	Fastly *CDNCredentials          `json:"fastly,omitempty"`
}

// Load reads the credentials file. A missing file yields ErrCredentialNotFound,
// unparseable content yields ErrCredentialMalformed.
func (s *Store) Load() (*SavedCredentials, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(
				errors.ErrCredentialNotFound,
				"saved credentials not found",
			).WithField("path", s.path)
		}
		return nil, errors.Wrap(
			errors.ErrCredentialLoadFailed,
			err,
			"failed to read saved credentials",
		).WithField("path", s.path)
	}

	var saved SavedCredentials
	if err := json.Unmarshal(data, &saved); err != nil {
		return nil, errors.Wrap(
			errors.ErrCredentialMalformed,
			err,
			"failed to parse saved credentials",
		).WithField("path", s.path)
	}

	if saved.CloudCompute == nil && saved.CDN == nil {
		var legacy legacyFile
		if err := json.Unmarshal(data, &legacy); err == nil {
			saved.CloudCompute = legacy.AWS
			saved.CDN = legacy.Fastly
		}
	}

	s.logger.Debug("Saved credentials loaded",
		logger.String("path", s.path),
		logger.Bool("has_cloud_compute", saved.CloudCompute.Complete()),
		logger.Bool("has_cdn", saved.CDN.Complete()),
	)

	return &saved, nil
}

// Save writes both provider records with owner-only permissions, replacing any previous file
func (s *Store) Save(cloud *CloudComputeCredentials, cdn *CDNCredentials) error {
	saved := SavedCredentials{
		CloudCompute: cloud,
		CDN:          cdn,
		SavedAt:      s.now().UTC(),
	}

	data, err := json.MarshalIndent(saved, "", "  ")
	if err != nil {
		return errors.Wrap(
			errors.ErrCredentialSaveFailed,
			err,
			"failed to encode credentials",
		)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrap(
			errors.ErrCredentialSaveFailed,
			err,
			"failed to create credentials directory",
		).WithField("path", dir)
	}

	tmp, err := os.CreateTemp(dir, ".deployment-config-*.json")
	if err != nil {
		return errors.Wrap(
			errors.ErrCredentialSaveFailed,
			err,
			"failed to create temporary credentials file",
		).WithField("path", dir)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	// CreateTemp already uses 0600; chmod covers platforms that ignore it
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return errors.Wrap(errors.ErrCredentialSaveFailed, err, "failed to restrict credentials file")
	}
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return errors.Wrap(errors.ErrCredentialSaveFailed, err, "failed to write credentials file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(errors.ErrCredentialSaveFailed, err, "failed to write credentials file")
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return errors.Wrap(
			errors.ErrCredentialSaveFailed,
			err,
			"failed to replace credentials file",
		).WithField("path", s.path)
	}

	s.logger.Info("Credentials saved", logger.String("path", s.path))
	return nil
}
