package profiledomain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	plugindomain "switcherforgames.com/cli/internal/core/domain/plugin"
)

// DefaultName is used when a profile is saved without a name
const DefaultName = "New profile"

// RecordFile is the name of the profile record stored beside copied files
const RecordFile = "profile.yaml"

var (
	// ErrNoFeatures is returned when a profile would cover no feature
	ErrNoFeatures = errors.New("a profile must cover at least one feature")
	// ErrEmptyName is returned when renaming a profile to an empty name
	ErrEmptyName = errors.New("profile name cannot be empty")
	// ErrNotFound is returned for unknown profiles
	ErrNotFound = errors.New("profile not found")
)

// Profile is a saved snapshot of a subset of a game's configuration
type Profile struct {
	ID        string                  `yaml:"uuid"`
	Name      string                  `yaml:"name"`
	Plugin    string                  `yaml:"plugin"`
	Features  plugindomain.FeatureSet `yaml:"features"`
	CreatedAt time.Time               `yaml:"time"`
}

// NewProfile creates a profile with a generated identifier
func NewProfile(pluginUID, name string, features plugindomain.FeatureSet, now time.Time) (*Profile, error) {
	features = features.Normalize()
	if features.IsEmpty() {
		return nil, ErrNoFeatures
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultName
	}

	return &Profile{
		ID:        uuid.NewString(),
		Name:      name,
		Plugin:    pluginUID,
		Features:  features,
		CreatedAt: now.UTC(),
	}, nil
}

// Rename changes the display name of the profile
func (p *Profile) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	p.Name = name
	return nil
}

// Validate checks a profile read back from disk
func (p *Profile) Validate() error {
	if _, err := uuid.Parse(p.ID); err != nil {
		return fmt.Errorf("profile id %q: %w", p.ID, err)
	}
	if p.Features.Normalize().IsEmpty() {
		return ErrNoFeatures
	}
	for _, f := range p.Features {
		if !f.Valid() {
			return fmt.Errorf("profile %s: unknown feature %q", p.ID, f)
		}
	}
	return nil
}
