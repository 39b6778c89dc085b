package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/renameio"
	"gopkg.in/yaml.v3"
)

// Store loads settings.yaml and writes it back atomically
type Store struct {
	mu        sync.Mutex
	home      string
	path      string
	stored    Settings
	env       EnvOverrides
	validator *ConfigValidator
}

// OpenStore reads the settings of home, writing defaults when the file is missing
func OpenStore(home string, env EnvOverrides) (*Store, error) {
	s := &Store{
		home:      home,
		path:      filepath.Join(home, SettingsFile),
		env:       env,
		validator: NewConfigValidator(),
	}

	data, err := os.ReadFile(s.path)
	switch {
	case os.IsNotExist(err):
		s.stored = DefaultSettings(home)
		if err := s.write(s.stored); err != nil {
			return nil, err
		}
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	var loaded Settings
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}
	loaded = loaded.withDefaults(home)
	if err := s.validator.ValidateSettings(loaded); err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	s.stored = loaded
	return s, nil
}

// Home returns the switcher home directory
func (s *Store) Home() string {
	return s.home
}

// Path returns the settings file path
func (s *Store) Path() string {
	return s.path
}

// Settings returns the effective settings, environment overrides applied
func (s *Store) Settings() (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.env.apply(s.stored.clone())
}

// Stored returns the settings as persisted, without overrides
func (s *Store) Stored() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stored.clone()
}

// Paths returns the locations derived from the effective settings
func (s *Store) Paths() (Paths, error) {
	eff, err := s.Settings()
	if err != nil {
		return Paths{}, err
	}
	return Paths{Home: s.home, Data: eff.DataDir}, nil
}

// Update changes the persisted settings; nothing is stored when fn fails
// or the result does not validate.
func (s *Store) Update(fn func(*Settings) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.stored.clone()
	if err := fn(&next); err != nil {
		return err
	}
	if err := s.validator.ValidateSettings(next); err != nil {
		return err
	}
	if err := s.write(next); err != nil {
		return err
	}
	s.stored = next
	return nil
}

func (s *Store) write(settings Settings) error {
	if err := os.MkdirAll(s.home, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", s.home, err)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(settings); err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	if err := renameio.WriteFile(s.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}
