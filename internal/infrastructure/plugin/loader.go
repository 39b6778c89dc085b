package plugininfra

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	plugindomain "switcherforgames.com/cli/internal/core/domain/plugin"
	"switcherforgames.com/cli/internal/core/pathvar"
	pluginports "switcherforgames.com/cli/internal/core/ports/plugin"
)

// FileSystemLoader loads plugins from plugin folders
type FileSystemLoader struct {
	fs   afero.Fs
	eval *pathvar.Evaluator
}

// NewFileSystemLoader creates a loader evaluating fragments with eval
func NewFileSystemLoader(fs afero.Fs, eval *pathvar.Evaluator) *FileSystemLoader {
	return &FileSystemLoader{fs: fs, eval: eval}
}

// LoadDir loads the plugin in dir; it is scripted when dir holds a plugin.go
func (l *FileSystemLoader) LoadDir(dir string) (pluginports.Plugin, error) {
	desc, err := ReadDescriptor(l.fs, dir)
	if err != nil {
		return nil, err
	}

	base := NewCodelessPlugin(desc, l.fs, l.eval)
	src, err := afero.ReadFile(l.fs, filepath.Join(dir, ScriptFile))
	switch {
	case os.IsNotExist(err):
		return base, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read %s: %w", ScriptFile, err)
	}

	scripted, err := NewScriptedPlugin(base, src)
	if err != nil {
		return nil, fmt.Errorf("plugin %s: %w", desc.UID, err)
	}
	return scripted, nil
}

// ReadDescriptor reads and validates the descriptor stored in dir
func ReadDescriptor(fs afero.Fs, dir string) (*plugindomain.Descriptor, error) {
	path, err := FindDescriptor(fs, dir)
	if err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptor: %w", err)
	}
	desc, err := plugindomain.ParseDescriptor(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	desc.Dir = dir
	return desc, nil
}

// FindDescriptor returns the path of the descriptor file in dir
func FindDescriptor(fs afero.Fs, dir string) (string, error) {
	for _, name := range plugindomain.DescriptorFiles {
		path := filepath.Join(dir, name)
		if ok, _ := afero.Exists(fs, path); ok {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: no descriptor in %s", plugindomain.ErrInvalidDescriptor, dir)
}
