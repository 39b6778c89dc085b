package plugindomain

import (
	"fmt"
	"strings"
)

// Feature is one independently selectable kind of configuration
type Feature string

const (
	FeatureGraphics Feature = "graphics"
	FeatureKeymap   Feature = "keymap"
	FeatureSaves    Feature = "saves"
)

// AllFeatures returns every feature in canonical order
func AllFeatures() []Feature {
	return []Feature{FeatureGraphics, FeatureKeymap, FeatureSaves}
}

// ParseFeature converts a name into a Feature. Plural spellings used by
// older profile records are accepted.
func ParseFeature(s string) (Feature, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "graphics":
		return FeatureGraphics, nil
	case "keymap", "keymaps":
		return FeatureKeymap, nil
	case "saves", "save":
		return FeatureSaves, nil
	default:
		return "", fmt.Errorf("unknown feature %q", s)
	}
}

// Valid reports whether f is a known feature
func (f Feature) Valid() bool {
	switch f {
	case FeatureGraphics, FeatureKeymap, FeatureSaves:
		return true
	}
	return false
}

// Folder is the name of the profile sub-folder holding the feature's files
func (f Feature) Folder() string {
	switch f {
	case FeatureKeymap:
		return "keymaps"
	default:
		return string(f)
	}
}

func (f Feature) String() string {
	return string(f)
}

// FeatureSet is an ordered, duplicate free set of features
type FeatureSet []Feature

// NewFeatureSet builds a normalised set from the given features
func NewFeatureSet(features ...Feature) FeatureSet {
	return FeatureSet(features).Normalize()
}

// ParseFeatures parses a comma separated list such as "graphics,keymap"
func ParseFeatures(s string) (FeatureSet, error) {
	var out FeatureSet
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		f, err := ParseFeature(part)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out.Normalize(), nil
}

// Normalize removes duplicates and orders features canonically
func (s FeatureSet) Normalize() FeatureSet {
	var out FeatureSet
	for _, f := range AllFeatures() {
		if s.Contains(f) {
			out = append(out, f)
		}
	}
	return out
}

// Contains reports whether f is part of the set
func (s FeatureSet) Contains(f Feature) bool {
	for _, x := range s {
		if x == f {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the set holds no features
func (s FeatureSet) IsEmpty() bool {
	return len(s) == 0
}

// Strings returns the feature names
func (s FeatureSet) Strings() []string {
	out := make([]string, 0, len(s))
	for _, f := range s {
		out = append(out, string(f))
	}
	return out
}

func (s FeatureSet) String() string {
	return strings.Join(s.Strings(), ", ")
}
