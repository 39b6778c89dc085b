package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"switcherforgames.com/cli/internal/core/discovery"
	"switcherforgames.com/cli/internal/core/domain/platform"
	"switcherforgames.com/cli/internal/core/pathvar"
	pluginports "switcherforgames.com/cli/internal/core/ports/plugin"
	"switcherforgames.com/cli/internal/infrastructure/config"
)

// SettingsStore reads and updates the persisted settings
type SettingsStore interface {
	Settings() (config.Settings, error)
	Stored() config.Settings
	Update(fn func(*config.Settings) error) error
}

// PluginSource provides the loaded plugins
type PluginSource interface {
	Get(uid string) (pluginports.Plugin, error)
	Plugins() []pluginports.Plugin
}

// AssignReport describes the outcome of AutoAssign
type AssignReport struct {
	// Assigned maps plugin uids to the game folders found for them
	Assigned map[string]string
	// Stale maps plugin uids to stored paths that no longer verify
	Stale map[string]string
	// Games is every discovered game folder, keyed by path
	Games map[string]string
}

// GameService associates plugins with the folders their games are installed in
type GameService struct {
	fs       afero.Fs
	platform platform.Platform
	env      pathvar.Environment
	settings SettingsStore
	plugins  PluginSource
	logger   *zap.Logger
}

// NewGameService creates a game service
func NewGameService(fs afero.Fs, p platform.Platform, env pathvar.Environment, settings SettingsStore, plugins PluginSource, logger *zap.Logger) *GameService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GameService{
		fs:       fs,
		platform: p,
		env:      env,
		settings: settings,
		plugins:  plugins,
		logger:   logger.Named("games"),
	}
}

// SetPath stores path as the game folder of a plugin. Nothing is stored
// unless the plugin verifies the folder.
func (s *GameService) SetPath(uid, path string) error {
	plugin, err := s.plugins.Get(uid)
	if err != nil {
		return err
	}

	path, err = filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	if err := plugin.Verify(path); err != nil {
		return fmt.Errorf("%s is not a valid folder for %s: %w", path, plugin.Descriptor().Game, err)
	}

	return s.settings.Update(func(st *config.Settings) error {
		st.GamePaths[uid] = path
		return nil
	})
}

// ClearPath forgets the game folder of a plugin
func (s *GameService) ClearPath(uid string) error {
	return s.settings.Update(func(st *config.Settings) error {
		delete(st.GamePaths, uid)
		return nil
	})
}

// Path returns the stored game folder of a plugin
func (s *GameService) Path(uid string) (string, bool) {
	path, ok := s.settings.Stored().GamePaths[uid]
	return path, ok && path != ""
}

// VerifiedPath returns the stored game folder of a plugin, failing when it
// is missing or no longer verifies.
func (s *GameService) VerifiedPath(uid string) (string, error) {
	plugin, err := s.plugins.Get(uid)
	if err != nil {
		return "", err
	}
	path, ok := s.Path(uid)
	if !ok {
		return "", fmt.Errorf("no game folder set for %s", uid)
	}
	if err := plugin.Verify(path); err != nil {
		return "", fmt.Errorf("stored folder %s for %s: %w", path, uid, err)
	}
	return path, nil
}

// Discover lists the game folders found in the default and configured
// library locations.
func (s *GameService) Discover(ctx context.Context) (map[string]string, error) {
	eff, err := s.settings.Settings()
	if err != nil {
		return nil, err
	}
	roots := discovery.DefaultRoots(s.platform, s.env, s.fs, eff.LibraryFolders)
	s.logger.Debug("discovering games", zap.Strings("roots", roots))
	return discovery.ListGames(ctx, s.fs, roots)
}

// AutoAssign discovers games and assigns a folder to every plugin without a
// valid one. Stored folders that no longer verify are reported and replaced
// when a new folder is found.
func (s *GameService) AutoAssign(ctx context.Context) (AssignReport, error) {
	report := AssignReport{Assigned: map[string]string{}, Stale: map[string]string{}}

	games, err := s.Discover(ctx)
	if err != nil {
		return report, err
	}
	report.Games = games

	paths := make([]string, 0, len(games))
	for path := range games {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	stored := s.settings.Stored().GamePaths
	for _, plugin := range s.plugins.Plugins() {
		uid := plugin.Descriptor().UID
		if current, ok := stored[uid]; ok && current != "" {
			if plugin.Verify(current) == nil {
				continue
			}
			report.Stale[uid] = current
		}

		for _, path := range paths {
			if plugin.Identify(path) {
				report.Assigned[uid] = path
				break
			}
		}
	}

	if len(report.Assigned) == 0 {
		return report, nil
	}
	err = s.settings.Update(func(st *config.Settings) error {
		for uid, path := range report.Assigned {
			st.GamePaths[uid] = path
		}
		return nil
	})
	if err != nil {
		return report, err
	}
	s.logger.Info("game folders assigned", zap.Int("assigned", len(report.Assigned)), zap.Int("stale", len(report.Stale)))
	return report, nil
}

// Executable returns the executable of the game assigned to a plugin
func (s *GameService) Executable(uid string) (string, error) {
	plugin, err := s.plugins.Get(uid)
	if err != nil {
		return "", err
	}
	path, err := s.VerifiedPath(uid)
	if err != nil {
		return "", err
	}
	return plugin.Executable(path)
}

// GuessExecutable returns the most likely executable of an arbitrary game
// folder, preferring the executable of a plugin that identifies it.
func (s *GameService) GuessExecutable(gameDir, game string) (string, error) {
	for _, plugin := range s.plugins.Plugins() {
		if !plugin.Identify(gameDir) {
			continue
		}
		if exe, err := plugin.Executable(gameDir); err == nil {
			return exe, nil
		}
	}
	return discovery.FindExecutable(s.fs, gameDir, game, s.platform)
}
