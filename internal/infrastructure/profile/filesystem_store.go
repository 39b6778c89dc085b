package profileinfra

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	profiledomain "switcherforgames.com/cli/internal/core/domain/profile"
)

// FileSystemStore keeps profiles as <root>/<plugin uid>/<profile id>/profile.yaml
type FileSystemStore struct {
	fs     afero.Fs
	root   string
	logger *zap.Logger
}

// NewFileSystemStore creates a store rooted at the profiles folder
func NewFileSystemStore(fs afero.Fs, root string, logger *zap.Logger) *FileSystemStore {
	return &FileSystemStore{fs: fs, root: root, logger: logger.Named("profiles")}
}

// Dir returns the folder of a profile
func (s *FileSystemStore) Dir(pluginUID, id string) string {
	return filepath.Join(s.root, pluginUID, id)
}

// Write stores the record of a profile through a temporary file
func (s *FileSystemStore) Write(ctx context.Context, p *profiledomain.Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}

	dir := s.Dir(p.Plugin, p.ID)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create profile folder: %w", err)
	}
	record := filepath.Join(dir, profiledomain.RecordFile)
	tmp := record + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write profile record: %w", err)
	}
	if err := s.fs.Rename(tmp, record); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("failed to save profile record: %w", err)
	}
	return nil
}

// Get reads one profile record
func (s *FileSystemStore) Get(ctx context.Context, pluginUID, id string) (*profiledomain.Profile, error) {
	if !safeName(pluginUID) || !safeName(id) {
		return nil, fmt.Errorf("%w: %s/%s", profiledomain.ErrNotFound, pluginUID, id)
	}

	data, err := afero.ReadFile(s.fs, filepath.Join(s.Dir(pluginUID, id), profiledomain.RecordFile))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s/%s", profiledomain.ErrNotFound, pluginUID, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	var p profiledomain.Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse profile %s: %w", id, err)
	}
	if p.Plugin == "" {
		p.Plugin = pluginUID
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("profile %s: %w", id, err)
	}
	return &p, nil
}

// List returns the readable profiles of a plugin, newest first. Folders
// without a valid record are skipped.
func (s *FileSystemStore) List(ctx context.Context, pluginUID string) ([]*profiledomain.Profile, error) {
	entries, err := afero.ReadDir(s.fs, filepath.Join(s.root, pluginUID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles of %s: %w", pluginUID, err)
	}

	var out []*profiledomain.Profile
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		p, err := s.Get(ctx, pluginUID, e.Name())
		if err != nil {
			s.logger.Warn("skipping unreadable profile",
				zap.String("plugin", pluginUID), zap.String("id", e.Name()), zap.Error(err))
			continue
		}
		out = append(out, p)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Delete removes a profile folder
func (s *FileSystemStore) Delete(ctx context.Context, pluginUID, id string) error {
	if _, err := s.Get(ctx, pluginUID, id); err != nil {
		return err
	}
	if err := s.fs.RemoveAll(s.Dir(pluginUID, id)); err != nil {
		return fmt.Errorf("failed to delete profile %s: %w", id, err)
	}
	return nil
}

// Size returns the total size of the files stored for a profile
func (s *FileSystemStore) Size(ctx context.Context, pluginUID, id string) (int64, error) {
	var total int64
	err := afero.Walk(s.fs, s.Dir(pluginUID, id), func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Mode().IsRegular() {
			total += info.Size()
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to measure profile %s: %w", id, err)
	}
	return total, nil
}

func safeName(name string) bool {
	return name != "" && name != "." && name != ".." && filepath.Base(name) == name
}
