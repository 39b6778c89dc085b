package plugininfra

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"switcherforgames.com/cli/internal/core/discovery"
	plugindomain "switcherforgames.com/cli/internal/core/domain/plugin"
	"switcherforgames.com/cli/internal/core/pathvar"
)

// CodelessPlugin implements a plugin purely from its descriptor
type CodelessPlugin struct {
	desc *plugindomain.Descriptor
	fs   afero.Fs
	eval *pathvar.Evaluator
}

// NewCodelessPlugin creates a plugin backed only by desc
func NewCodelessPlugin(desc *plugindomain.Descriptor, fs afero.Fs, eval *pathvar.Evaluator) *CodelessPlugin {
	return &CodelessPlugin{desc: desc, fs: fs, eval: eval}
}

// Descriptor returns the plugin descriptor
func (p *CodelessPlugin) Descriptor() *plugindomain.Descriptor {
	return p.desc
}

// Fragments evaluates the fragments declared for a feature
func (p *CodelessPlugin) Fragments(feature plugindomain.Feature) ([]string, error) {
	if !p.desc.Features.Contains(feature) {
		return nil, fmt.Errorf("%w: %s", plugindomain.ErrFeatureNotDeclared, feature)
	}
	return p.evaluate(p.desc.Fragments(feature))
}

// Verify checks that gamePath is a folder holding every verification path
func (p *CodelessPlugin) Verify(gamePath string) error {
	if ok, _ := afero.DirExists(p.fs, gamePath); !ok {
		return fmt.Errorf("%w: %s is not a folder", plugindomain.ErrVerificationFailed, gamePath)
	}

	paths, err := p.evaluate(p.desc.VerificationPaths)
	if err != nil {
		return fmt.Errorf("%w: %w", plugindomain.ErrVerificationFailed, err)
	}
	for _, rel := range paths {
		target := resolve(gamePath, rel)
		if ok, _ := afero.Exists(p.fs, target); !ok {
			return fmt.Errorf("%w: %s not found", plugindomain.ErrVerificationFailed, target)
		}
	}
	return nil
}

// Identify reports whether gamePath is named like the game and verifies
func (p *CodelessPlugin) Identify(gamePath string) bool {
	base := filepath.Base(filepath.Clean(gamePath))
	for _, name := range p.desc.GameDirectories() {
		if strings.EqualFold(base, name) {
			return p.Verify(gamePath) == nil
		}
	}
	return false
}

// Executable returns the declared executable, or the best guess found
// under gamePath when none is declared.
func (p *CodelessPlugin) Executable(gamePath string) (string, error) {
	declared, err := p.evaluate(p.desc.Executable)
	if err != nil {
		return "", err
	}
	for _, rel := range declared {
		target := resolve(gamePath, rel)
		if ok, _ := afero.Exists(p.fs, target); ok {
			return target, nil
		}
	}
	return discovery.FindExecutable(p.fs, gamePath, p.desc.Game, p.eval.Platform())
}

func (p *CodelessPlugin) evaluate(fragments plugindomain.Fragments) ([]string, error) {
	raw := fragments.For(p.eval.Platform())
	out := make([]string, 0, len(raw))
	for _, f := range raw {
		v, err := p.eval.Evaluate(f)
		if err != nil {
			return nil, fmt.Errorf("failed to evaluate %q: %w", f, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func resolve(root, fragment string) string {
	if filepath.IsAbs(fragment) || filepath.VolumeName(fragment) != "" {
		return filepath.Clean(fragment)
	}
	return filepath.Join(root, fragment)
}
