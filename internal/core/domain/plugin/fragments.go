package plugindomain

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"switcherforgames.com/cli/internal/core/domain/platform"
)

// Fragments is a list of path fragments that may differ per platform.
//
// In YAML it is written as a single string, a list of strings, or a mapping
// from platform name (or "all") to either of those.
type Fragments struct {
	common     []string
	byPlatform map[platform.Platform][]string
}

// NewFragments creates fragments shared by every platform
func NewFragments(paths ...string) Fragments {
	return Fragments{common: paths}
}

// WithPlatform returns a copy with platform specific paths set
func (f Fragments) WithPlatform(p platform.Platform, paths ...string) Fragments {
	out := Fragments{common: f.common, byPlatform: map[platform.Platform][]string{}}
	for k, v := range f.byPlatform {
		out.byPlatform[k] = v
	}
	out.byPlatform[p] = paths
	return out
}

// For returns the fragments to use on p
func (f Fragments) For(p platform.Platform) []string {
	if paths, ok := f.byPlatform[p]; ok {
		return paths
	}
	return f.common
}

// IsZero reports whether no fragment is defined for any platform
func (f Fragments) IsZero() bool {
	if len(f.common) > 0 {
		return false
	}
	for _, v := range f.byPlatform {
		if len(v) > 0 {
			return false
		}
	}
	return true
}

// UnmarshalYAML implements yaml.Unmarshaler
func (f *Fragments) UnmarshalYAML(node *yaml.Node) error {
	*f = Fragments{}

	switch node.Kind {
	case yaml.ScalarNode, yaml.SequenceNode:
		paths, err := decodeStrings(node)
		if err != nil {
			return err
		}
		f.common = paths
		return nil
	case yaml.MappingNode:
		f.byPlatform = map[platform.Platform][]string{}
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, value := node.Content[i].Value, node.Content[i+1]
			paths, err := decodeStrings(value)
			if err != nil {
				return err
			}
			if key == "all" {
				f.common = paths
				continue
			}
			p, err := platform.Parse(key)
			if err != nil {
				return fmt.Errorf("line %d: %w", node.Content[i].Line, err)
			}
			f.byPlatform[p] = paths
		}
		return nil
	default:
		return fmt.Errorf("line %d: expected a path, a list of paths or a platform mapping", node.Line)
	}
}

// MarshalYAML implements yaml.Marshaler
func (f Fragments) MarshalYAML() (interface{}, error) {
	if len(f.byPlatform) == 0 {
		return f.common, nil
	}
	out := map[string][]string{}
	if len(f.common) > 0 {
		out["all"] = f.common
	}
	for p, paths := range f.byPlatform {
		out[p.String()] = paths
	}
	return out, nil
}

// Names is a list of names written either as a single string or a list
type Names []string

// UnmarshalYAML implements yaml.Unmarshaler
func (n *Names) UnmarshalYAML(node *yaml.Node) error {
	values, err := decodeStrings(node)
	if err != nil {
		return err
	}
	*n = values
	return nil
}

func decodeStrings(node *yaml.Node) ([]string, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return nil, nil
		}
		return []string{node.Value}, nil
	case yaml.SequenceNode:
		var out []string
		if err := node.Decode(&out); err != nil {
			return nil, err
		}
		return out, nil
	default:
		return nil, fmt.Errorf("line %d: expected a string or a list of strings", node.Line)
	}
}
