package config

import (
	"fmt"
	"os"
	"sync/atomic"

	"gopkg.in/yaml.v3"
)

// Store holds the active configuration snapshot. Reads are lock-free so
// provider clients can pick up rotated API keys on every call while the
// watcher replaces the snapshot in the background.
type Store struct {
	path string
	v    atomic.Value // *Config
}

// NewStore loads the yaml file at path and returns a store around it.
func NewStore(path string) (*Store, error) {
	s := &Store{path: path}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Snapshot returns the current configuration. Callers must not mutate it.
func (s *Store) Snapshot() *Config {
	return s.v.Load().(*Config)
}

// Path returns the file the store was loaded from.
func (s *Store) Path() string {
	return s.path
}

// Reload re-reads and validates the yaml file, replacing the snapshot
// only on success.
func (s *Store) Reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	s.v.Store(&cfg)
	return nil
}
