// Package secrets resolves per-provider API credentials. Lookup order is
// environment variable first, then the 0600 YAML secrets file next to the
// application config. Hosted providers must check the credential before
// opening any network connection.
package secrets

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Store reads and writes provider credentials.
type Store struct {
	path string
}

// NewStore returns a Store backed by the given YAML file path. An empty
// path selects the default location under the user config directory.
func NewStore(path string) *Store {
	if path == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			base = "."
		}
		path = filepath.Join(base, "textcal", "secrets.yaml")
	}
	return &Store{path: path}
}

// Get returns the credential for the given provider name ("openai",
// "anthropic", ...). The environment variable TEXTCAL_<PROVIDER>_API_KEY
// wins over the file entry. The second return is false when no credential
// is configured anywhere.
func (s *Store) Get(provider string) (string, bool) {
	if provider == "" {
		return "", false
	}

	env := "TEXTCAL_" + strings.ToUpper(provider) + "_API_KEY"
	if v := os.Getenv(env); v != "" {
		return v, true
	}

	m, err := s.load()
	if err != nil {
		return "", false
	}
	v, ok := m[strings.ToLower(provider)]
	return v, ok && v != ""
}

// Set stores the credential for the given provider in the secrets file.
func (s *Store) Set(provider, key string) error {
	if provider == "" {
		return errors.New("provider name is empty")
	}

	m, err := s.load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if m == nil {
		m = map[string]string{}
	}
	m[strings.ToLower(provider)] = key

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}

	// Atomic write: temp file in same directory then rename, 0600.
	tmp, err := os.CreateTemp(dir, ".textcal-secrets-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, s.path)
}

func (s *Store) load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	var m map[string]string
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}
