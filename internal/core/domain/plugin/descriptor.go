package plugindomain

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

// APILevel is the highest plugin API level this build understands
const APILevel = 1

// DescriptorFiles are the file names a plugin descriptor may use, in lookup order
var DescriptorFiles = []string{"plugin.yaml", "plugin.yml"}

// ErrInvalidDescriptor is wrapped by every descriptor validation failure
var ErrInvalidDescriptor = errors.New("invalid plugin descriptor")

var uidPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

// Descriptor is the declarative description of a plugin, loaded from its
// YAML file. It is treated as immutable once loaded.
type Descriptor struct {
	UID               string     `yaml:"uid"`
	Game              string     `yaml:"game"`
	Author            string     `yaml:"author"`
	API               int        `yaml:"api"`
	SteamID           int        `yaml:"steamID,omitempty"`
	Features          FeatureSet `yaml:"features"`
	GraphicsConfig    Fragments  `yaml:"graphicsConfig,omitempty"`
	KeymapConfig      Fragments  `yaml:"keymapConfig,omitempty"`
	SavesConfig       Fragments  `yaml:"savesConfig,omitempty"`
	VerificationPaths Fragments  `yaml:"verificationPaths,omitempty"`
	GameDirectory     Names      `yaml:"gameDirectory,omitempty"`
	Executable        Fragments  `yaml:"executable,omitempty"`

	// Dir is the folder the descriptor was loaded from
	Dir string `yaml:"-"`
}

// ParseDescriptor decodes and validates a descriptor
func ParseDescriptor(data []byte) (*Descriptor, error) {
	var d Descriptor
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDescriptor, err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Marshal encodes the descriptor as YAML
func (d *Descriptor) Marshal() ([]byte, error) {
	return yaml.Marshal(d)
}

// Fragments returns the configured fragments of a feature
func (d *Descriptor) Fragments(f Feature) Fragments {
	switch f {
	case FeatureGraphics:
		return d.GraphicsConfig
	case FeatureKeymap:
		return d.KeymapConfig
	case FeatureSaves:
		return d.SavesConfig
	default:
		return Fragments{}
	}
}

// GameDirectories returns the folder names that identify the game
func (d *Descriptor) GameDirectories() []string {
	if len(d.GameDirectory) > 0 {
		return d.GameDirectory
	}
	return []string{d.Game}
}

// Supports reports whether the plugin declares every feature in fs
func (d *Descriptor) Supports(fs FeatureSet) bool {
	for _, f := range fs {
		if !d.Features.Contains(f) {
			return false
		}
	}
	return true
}

// Validate checks the descriptor and reports every problem found
func (d *Descriptor) Validate() error {
	var result *multierror.Error

	if d.UID == "" {
		result = multierror.Append(result, errors.New("uid is required"))
	} else if !uidPattern.MatchString(d.UID) {
		result = multierror.Append(result, fmt.Errorf("uid %q must match %s", d.UID, uidPattern))
	}
	if strings.TrimSpace(d.Game) == "" {
		result = multierror.Append(result, errors.New("game is required"))
	}
	if strings.TrimSpace(d.Author) == "" {
		result = multierror.Append(result, errors.New("author is required"))
	}
	if d.API < 1 {
		result = multierror.Append(result, errors.New("api level is required"))
	} else if d.API > APILevel {
		result = multierror.Append(result, fmt.Errorf("api level %d is newer than supported level %d", d.API, APILevel))
	}

	if d.Features.IsEmpty() {
		result = multierror.Append(result, errors.New("at least one feature is required"))
	}
	seen := map[Feature]bool{}
	for _, f := range d.Features {
		if !f.Valid() {
			result = multierror.Append(result, fmt.Errorf("unknown feature %q", f))
			continue
		}
		if seen[f] {
			result = multierror.Append(result, fmt.Errorf("feature %q listed twice", f))
		}
		seen[f] = true
		if d.Fragments(f).IsZero() {
			result = multierror.Append(result, fmt.Errorf("feature %q declares no paths", f))
		}
	}

	graphics := d.Features.Contains(FeatureGraphics) && !d.GraphicsConfig.IsZero()
	keymap := d.Features.Contains(FeatureKeymap) && !d.KeymapConfig.IsZero()
	if !graphics && !keymap {
		result = multierror.Append(result, errors.New("plugins must define at least the graphics config or the keymap config"))
	}

	if result == nil {
		return nil
	}
	result.ErrorFormat = ListFormat
	return fmt.Errorf("%w: %w", ErrInvalidDescriptor, result)
}

// ListFormat renders a multierror on a single line
func ListFormat(errs []error) string {
	parts := make([]string, 0, len(errs))
	for _, err := range errs {
		parts = append(parts, err.Error())
	}
	return strings.Join(parts, "; ")
}
