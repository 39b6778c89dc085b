package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"switcherforgames.com/cli/internal/core/mirror"
	storageports "switcherforgames.com/cli/internal/core/ports/storage"
	"switcherforgames.com/cli/internal/infrastructure/config"
)

// ErrSameDirectory is returned when moving the data directory onto itself
var ErrSameDirectory = errors.New("new directory is the same as the current directory")

// ErrNestedDirectory is returned when the new directory and the current one
// overlap so that copying or cleaning up would destroy the moved data
var ErrNestedDirectory = errors.New("new directory overlaps the current directory")

// ErrDataDirOverridden is returned when the data directory comes from the environment
var ErrDataDirOverridden = errors.New("data directory is set by SWITCHER_DATA_DIR")

// MoveReport describes a completed data directory move
type MoveReport struct {
	From string
	To   string
	// Cleanup is set when the data was moved but the old folders could not be removed
	Cleanup error
}

// SettingsService changes settings that need more than a field update
type SettingsService struct {
	fs        afero.Fs
	home      string
	settings  SettingsStore
	locker    storageports.Locker
	validator *config.ConfigValidator
	logger    *zap.Logger
}

// NewSettingsService creates a settings service for the switcher home directory
func NewSettingsService(fs afero.Fs, home string, settings SettingsStore, locker storageports.Locker, logger *zap.Logger) *SettingsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{
		fs:        fs,
		home:      home,
		settings:  settings,
		locker:    locker,
		validator: config.NewConfigValidator(),
		logger:    logger.Named("settings"),
	}
}

// MoveDataDir copies the data folders to target, persists the new location
// and removes the old folders. When target already holds other files the
// data is placed in a sub-folder named after the current data directory.
func (s *SettingsService) MoveDataDir(ctx context.Context, target string) (MoveReport, error) {
	eff, err := s.settings.Settings()
	if err != nil {
		return MoveReport{}, err
	}
	current := filepath.Clean(s.settings.Stored().DataDir)
	if filepath.Clean(eff.DataDir) != current {
		return MoveReport{}, ErrDataDirOverridden
	}

	target, err = filepath.Abs(target)
	if err != nil {
		return MoveReport{}, fmt.Errorf("failed to resolve %s: %w", target, err)
	}
	if target != current {
		if empty, err := afero.IsEmpty(s.fs, target); err == nil && !empty {
			target = filepath.Join(target, filepath.Base(current))
		}
	}
	report := MoveReport{From: current, To: target}
	if target == current {
		return report, fmt.Errorf("%w: %s", ErrSameDirectory, current)
	}
	if err := s.checkOverlap(current, target); err != nil {
		return report, err
	}

	if err := s.fs.MkdirAll(target, 0o755); err != nil {
		return report, fmt.Errorf("no write permissions for %s: %w", target, err)
	}
	if err := s.validator.ValidateWritableDir(target); err != nil {
		return report, fmt.Errorf("no write permissions for %s: %w", target, err)
	}

	if s.locker != nil {
		unlock, err := s.locker.Lock(ctx)
		if err != nil {
			return report, err
		}
		defer unlock()
	}

	for _, folder := range config.DataFolders() {
		src := filepath.Join(current, folder)
		if ok, _ := afero.DirExists(s.fs, src); !ok {
			continue
		}
		if err := mirror.CopyTree(s.fs, src, filepath.Join(target, folder)); err != nil {
			return report, fmt.Errorf("failed to copy %s: %w", folder, err)
		}
	}

	if err := s.settings.Update(func(st *config.Settings) error {
		st.DataDir = target
		return nil
	}); err != nil {
		return report, err
	}
	s.logger.Info("data directory moved", zap.String("from", current), zap.String("to", target))

	report.Cleanup = s.removeOld(current)
	if report.Cleanup != nil {
		s.logger.Warn("failed to remove old data", zap.String("dir", current), zap.Error(report.Cleanup))
	}
	return report, nil
}

// removeOld deletes the moved data. The home directory keeps its settings
// and log, so only the data sub-folders are removed from it.
func (s *SettingsService) removeOld(dir string) error {
	if dir != filepath.Clean(s.home) {
		return s.fs.RemoveAll(dir)
	}
	for _, folder := range config.DataFolders() {
		if err := s.fs.RemoveAll(filepath.Join(dir, folder)); err != nil {
			return err
		}
	}
	return nil
}

// checkOverlap rejects a target the old data would be copied into or removed
// with. Below the home directory only the data sub-folders are removed, so
// other folders of the home directory remain valid targets.
func (s *SettingsService) checkOverlap(current, target string) error {
	if within(target, current) {
		return fmt.Errorf("%w: %s contains %s", ErrNestedDirectory, target, current)
	}
	if current != filepath.Clean(s.home) {
		if within(current, target) {
			return fmt.Errorf("%w: %s is inside %s", ErrNestedDirectory, target, current)
		}
		return nil
	}
	for _, folder := range config.DataFolders() {
		dir := filepath.Join(current, folder)
		if target == dir || within(dir, target) {
			return fmt.Errorf("%w: %s is inside %s", ErrNestedDirectory, target, dir)
		}
	}
	return nil
}

// within reports whether path lies strictly below dir
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil || rel == "." || rel == ".." {
		return false
	}
	return !filepath.IsAbs(rel) && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
