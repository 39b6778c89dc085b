package services

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	plugindomain "switcherforgames.com/cli/internal/core/domain/plugin"
	profiledomain "switcherforgames.com/cli/internal/core/domain/profile"
	"switcherforgames.com/cli/internal/core/mirror"
	pluginports "switcherforgames.com/cli/internal/core/ports/plugin"
	profileports "switcherforgames.com/cli/internal/core/ports/profile"
	storageports "switcherforgames.com/cli/internal/core/ports/storage"
)

// FeatureReports holds the mirror outcome of every feature of an operation
type FeatureReports map[plugindomain.Feature]mirror.Report

// Partial reports whether any feature skipped one of its candidates
func (r FeatureReports) Partial() bool {
	for _, rep := range r {
		if rep.Partial() {
			return true
		}
	}
	return false
}

// ProfileService saves and applies configuration profiles
type ProfileService struct {
	fs     afero.Fs
	store  profileports.Store
	locker storageports.Locker
	logger *zap.Logger
	now    func() time.Time
}

// NewProfileService creates a profile service on top of store
func NewProfileService(fs afero.Fs, store profileports.Store, locker storageports.Locker, logger *zap.Logger) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{
		fs:     fs,
		store:  store,
		locker: locker,
		logger: logger.Named("profiles"),
		now:    time.Now,
	}
}

// Save snapshots the requested features of the game installed in gameDir.
// A feature fails only when none of its fragments could be copied; any
// failed feature aborts the save and nothing is kept.
func (s *ProfileService) Save(ctx context.Context, plugin pluginports.Plugin, gameDir, name string, features plugindomain.FeatureSet) (*profiledomain.Profile, FeatureReports, error) {
	desc := plugin.Descriptor()
	features = features.Normalize()
	for _, f := range features {
		if !desc.Features.Contains(f) {
			return nil, nil, fmt.Errorf("%w: %s does not declare %s", plugindomain.ErrFeatureNotDeclared, desc.UID, f)
		}
	}

	profile, err := profiledomain.NewProfile(desc.UID, name, features, s.now())
	if err != nil {
		return nil, nil, err
	}
	if err := plugin.Verify(gameDir); err != nil {
		return nil, nil, err
	}

	unlock, err := s.lock(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer unlock()

	dir := s.store.Dir(desc.UID, profile.ID)
	reports := FeatureReports{}
	for _, f := range profile.Features {
		if err := ctx.Err(); err != nil {
			s.discard(dir)
			return nil, nil, err
		}

		report, err := s.mirrorFeature(plugin, f, gameDir, dir, mirror.Backup)
		if err != nil {
			s.discard(dir)
			return nil, nil, fmt.Errorf("failed to save %s: %w", f, err)
		}
		reports[f] = report
	}

	if err := s.store.Write(ctx, profile); err != nil {
		s.discard(dir)
		return nil, nil, err
	}

	s.logger.Info("profile saved",
		zap.String("plugin", desc.UID),
		zap.String("profile", profile.ID),
		zap.Strings("features", profile.Features.Strings()))
	return profile, reports, nil
}

// Apply restores every feature of a saved profile into gameDir. Features are
// restored independently; their failures are returned together.
func (s *ProfileService) Apply(ctx context.Context, plugin pluginports.Plugin, gameDir, id string) (FeatureReports, error) {
	uid := plugin.Descriptor().UID
	profile, err := s.store.Get(ctx, uid, id)
	if err != nil {
		return nil, err
	}
	if err := plugin.Verify(gameDir); err != nil {
		return nil, err
	}

	unlock, err := s.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	dir := s.store.Dir(uid, profile.ID)
	reports := FeatureReports{}
	var result *multierror.Error
	for _, f := range profile.Features {
		report, err := s.mirrorFeature(plugin, f, gameDir, dir, mirror.Restore)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("failed to restore %s: %w", f, err))
			continue
		}
		reports[f] = report
	}

	if err := result.ErrorOrNil(); err != nil {
		s.logger.Warn("profile applied with errors", zap.String("plugin", uid), zap.String("profile", id), zap.Error(err))
		return reports, err
	}
	s.logger.Info("profile applied", zap.String("plugin", uid), zap.String("profile", id))
	return reports, nil
}

// List returns the profiles of a plugin, newest first
func (s *ProfileService) List(ctx context.Context, pluginUID string) ([]*profiledomain.Profile, error) {
	return s.store.List(ctx, pluginUID)
}

// Get returns one profile of a plugin
func (s *ProfileService) Get(ctx context.Context, pluginUID, id string) (*profiledomain.Profile, error) {
	return s.store.Get(ctx, pluginUID, id)
}

// Delete removes a profile with its data
func (s *ProfileService) Delete(ctx context.Context, pluginUID, id string) error {
	if _, err := s.store.Get(ctx, pluginUID, id); err != nil {
		return err
	}

	unlock, err := s.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.store.Delete(ctx, pluginUID, id); err != nil {
		return err
	}
	s.logger.Info("profile deleted", zap.String("plugin", pluginUID), zap.String("profile", id))
	return nil
}

// Rename changes the display name of a profile
func (s *ProfileService) Rename(ctx context.Context, pluginUID, id, name string) (*profiledomain.Profile, error) {
	unlock, err := s.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	profile, err := s.store.Get(ctx, pluginUID, id)
	if err != nil {
		return nil, err
	}
	if err := profile.Rename(name); err != nil {
		return nil, err
	}
	if err := s.store.Write(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// Size returns the number of bytes stored for a profile
func (s *ProfileService) Size(ctx context.Context, pluginUID, id string) (int64, error) {
	return s.store.Size(ctx, pluginUID, id)
}

func (s *ProfileService) mirrorFeature(plugin pluginports.Plugin, f plugindomain.Feature, gameDir, profileDir string, dir mirror.Direction) (mirror.Report, error) {
	fragments, err := plugin.Fragments(f)
	if err != nil {
		return mirror.Report{}, err
	}

	report, err := mirror.MirrorAll(s.fs, gameDir, filepath.Join(profileDir, f.Folder()), fragments, dir)
	if err != nil {
		return report, err
	}
	for fragment, ferr := range report.Failed {
		s.logger.Debug("fragment skipped",
			zap.String("feature", f.String()),
			zap.String("fragment", fragment),
			zap.Stringer("direction", dir),
			zap.Error(ferr))
	}
	return report, nil
}

func (s *ProfileService) lock(ctx context.Context) (func() error, error) {
	if s.locker == nil {
		return func() error { return nil }, nil
	}
	return s.locker.Lock(ctx)
}

func (s *ProfileService) discard(dir string) {
	if err := s.fs.RemoveAll(dir); err != nil {
		s.logger.Warn("failed to remove partial profile", zap.String("dir", dir), zap.Error(err))
	}
}
