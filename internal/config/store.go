package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/KooshaPari/vibeproxy/internal/logging"
	"github.com/KooshaPari/vibeproxy/internal/models"
)

// Store loads and saves the application configuration. The backing path is
// resolved once at construction and never changes for the store's lifetime.
type Store struct {
	path string
	log  zerolog.Logger
}

// NewStore creates a store rooted at the per-user config directory,
// creating the directory eagerly. The application cannot function without a
// writable config location, so a creation failure fails construction.
func NewStore() (*Store, error) {
	return NewStoreAt(Dir())
}

// NewStoreAt creates a store rooted at the given directory.
func NewStoreAt(dir string) (*Store, error) {
	if err := EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("failed to create config directory %s: %w", dir, err)
	}

	return &Store{
		path: filepath.Join(dir, ConfigFileName),
		log:  logging.Component("config"),
	}, nil
}

// Path returns the path of the backing config file.
func (s *Store) Path() string {
	return s.path
}

// Load reads the configuration from disk. A missing file is not an error and
// yields the defaults; a file that exists but fails to parse is a hard error.
func (s *Store) Load() (*models.AppConfig, error) {
	if !FileExists(s.path) {
		s.log.Debug().Str("path", s.path).Msg("config file not found, using defaults")
		return models.NewAppConfig(), nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, &ParseError{Path: s.path, Err: err}
	}

	var cfg models.AppConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &ParseError{Path: s.path, Err: err}
	}

	return &cfg, nil
}

// Save writes the configuration to disk. The file is written to a temp file
// in the same directory and renamed into place, so a concurrent Load never
// observes a partial write.
func (s *Store) Save(cfg *models.AppConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return &WriteError{Path: s.path, Err: err}
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ConfigFileName+".tmp-*")
	if err != nil {
		return &WriteError{Path: s.path, Err: err}
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())

		return &WriteError{Path: s.path, Err: err}
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return &WriteError{Path: s.path, Err: err}
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return &WriteError{Path: s.path, Err: err}
	}

	s.log.Info().Str("path", s.path).Msg("configuration saved")

	return nil
}
