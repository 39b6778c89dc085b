package plugininfra

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	plugindomain "switcherforgames.com/cli/internal/core/domain/plugin"
)

// RegistryFile is the name of the install registry inside the plugins folder
const RegistryFile = "plugin-registry.json"

// FileSystemRegistry keeps install records in a JSON file
type FileSystemRegistry struct {
	fs       afero.Fs
	dir      string
	filePath string
}

// NewFileSystemRegistry creates a registry stored in dir
func NewFileSystemRegistry(fs afero.Fs, dir string) *FileSystemRegistry {
	return &FileSystemRegistry{
		fs:       fs,
		dir:      dir,
		filePath: filepath.Join(dir, RegistryFile),
	}
}

// registryData represents the persisted registry format
type registryData struct {
	Version     string                                `json:"version"`
	LastUpdated time.Time                             `json:"last_updated"`
	Plugins     map[string]plugindomain.InstallRecord `json:"plugins"`
}

// Load returns every install record; a missing file is an empty registry
func (r *FileSystemRegistry) Load(ctx context.Context) (map[string]plugindomain.InstallRecord, error) {
	data, err := afero.ReadFile(r.fs, r.filePath)
	if os.IsNotExist(err) {
		return make(map[string]plugindomain.InstallRecord), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read registry file: %w", err)
	}

	var registry registryData
	if err := json.Unmarshal(data, &registry); err != nil {
		return nil, fmt.Errorf("failed to parse registry file: %w", err)
	}
	if registry.Plugins == nil {
		registry.Plugins = make(map[string]plugindomain.InstallRecord)
	}
	return registry.Plugins, nil
}

// Save replaces the stored records
func (r *FileSystemRegistry) Save(ctx context.Context, records map[string]plugindomain.InstallRecord) error {
	if err := r.fs.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create plugins directory: %w", err)
	}

	data, err := json.MarshalIndent(registryData{
		Version:     "1.0",
		LastUpdated: time.Now().UTC(),
		Plugins:     records,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	tempFile := r.filePath + ".tmp"
	if err := afero.WriteFile(r.fs, tempFile, data, 0o644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	if err := r.fs.Rename(tempFile, r.filePath); err != nil {
		_ = r.fs.Remove(tempFile)
		return fmt.Errorf("failed to save registry file: %w", err)
	}
	return nil
}

// Add records or replaces the install record of a plugin
func (r *FileSystemRegistry) Add(ctx context.Context, record plugindomain.InstallRecord) error {
	records, err := r.Load(ctx)
	if err != nil {
		return err
	}
	records[record.UID] = record
	return r.Save(ctx, records)
}

// Remove forgets the install record of a plugin
func (r *FileSystemRegistry) Remove(ctx context.Context, uid string) error {
	records, err := r.Load(ctx)
	if err != nil {
		return err
	}
	if _, ok := records[uid]; !ok {
		return nil
	}
	delete(records, uid)
	return r.Save(ctx, records)
}
