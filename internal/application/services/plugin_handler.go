package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	apphttp "switcherforgames.com/cli/internal/application/http"
	"switcherforgames.com/cli/internal/core/domain/platform"
	plugindomain "switcherforgames.com/cli/internal/core/domain/plugin"
	pluginports "switcherforgames.com/cli/internal/core/ports/plugin"
	storageports "switcherforgames.com/cli/internal/core/ports/storage"
	plugininfra "switcherforgames.com/cli/internal/infrastructure/plugin"
)

// changeLimit bounds how many plugin changes are applied at once
const changeLimit = 3

// RepositoryResolver looks up GitHub repositories by numeric id
type RepositoryResolver interface {
	Repository(ctx context.Context, id int64) (*apphttp.Repository, error)
}

// LoadReport describes the outcome of scanning the plugins folder
type LoadReport struct {
	Loaded     []string
	Skipped    map[string]error
	Duplicates []string
}

// PluginHandler owns the set of loaded plugins and their installation
type PluginHandler struct {
	fs        afero.Fs
	dir       string
	platform  platform.Platform
	loader    pluginports.Loader
	installer pluginports.Installer
	registry  pluginports.Registry
	repos     RepositoryResolver
	locker    storageports.Locker
	logger    *zap.Logger
	now       func() time.Time

	mu      sync.RWMutex
	plugins map[string]pluginports.Plugin
	ordered []pluginports.Plugin

	registryMu sync.Mutex
}

// PluginHandlerDeps groups the collaborators of a PluginHandler
type PluginHandlerDeps struct {
	Fs        afero.Fs
	Dir       string
	Platform  platform.Platform
	Loader    pluginports.Loader
	Installer pluginports.Installer
	Registry  pluginports.Registry
	Repos     RepositoryResolver
	Locker    storageports.Locker
	Logger    *zap.Logger
}

// NewPluginHandler creates a handler for the plugins stored in deps.Dir
func NewPluginHandler(deps PluginHandlerDeps) *PluginHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PluginHandler{
		fs:        deps.Fs,
		dir:       deps.Dir,
		platform:  deps.Platform,
		loader:    deps.Loader,
		installer: deps.Installer,
		registry:  deps.Registry,
		repos:     deps.Repos,
		locker:    deps.Locker,
		logger:    logger.Named("plugins"),
		now:       time.Now,
		plugins:   map[string]pluginports.Plugin{},
	}
}

// Load scans the plugins folder and replaces the loaded set. Plugins that
// fail to load are skipped and reported; of two folders declaring the same
// uid the first in lexical order wins.
func (h *PluginHandler) Load(ctx context.Context) (LoadReport, error) {
	report := LoadReport{Skipped: map[string]error{}}

	entries, err := afero.ReadDir(h.fs, h.dir)
	if err != nil && !os.IsNotExist(err) {
		return report, fmt.Errorf("failed to read plugins folder: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	loaded := map[string]pluginports.Plugin{}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") ||
			strings.HasSuffix(entry.Name(), ".new") || strings.HasSuffix(entry.Name(), ".old") {
			continue
		}

		dir := filepath.Join(h.dir, entry.Name())
		p, err := h.loader.LoadDir(dir)
		if err != nil {
			h.logger.Warn("skipping plugin", zap.String("dir", dir), zap.Error(err))
			report.Skipped[dir] = err
			continue
		}

		uid := p.Descriptor().UID
		if _, dup := loaded[uid]; dup {
			h.logger.Warn("duplicate plugin uid", zap.String("uid", uid), zap.String("dir", dir))
			report.Duplicates = append(report.Duplicates, dir)
			continue
		}
		loaded[uid] = p
		report.Loaded = append(report.Loaded, uid)
	}

	ordered := make([]pluginports.Plugin, 0, len(loaded))
	for _, p := range loaded {
		ordered = append(ordered, p)
	}
	sort.Slice(ordered, func(i, j int) bool {
		a, b := ordered[i].Descriptor(), ordered[j].Descriptor()
		if ga, gb := strings.ToLower(a.Game), strings.ToLower(b.Game); ga != gb {
			return ga < gb
		}
		return a.UID < b.UID
	})

	h.mu.Lock()
	h.plugins = loaded
	h.ordered = ordered
	h.mu.Unlock()

	h.logger.Debug("plugins loaded", zap.Int("count", len(loaded)), zap.Int("skipped", len(report.Skipped)))
	return report, nil
}

// Get returns the loaded plugin with the given uid
func (h *PluginHandler) Get(uid string) (pluginports.Plugin, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	p, ok := h.plugins[uid]
	if !ok {
		return nil, fmt.Errorf("%w: %s", plugindomain.ErrPluginNotFound, uid)
	}
	return p, nil
}

// Plugins returns the loaded plugins ordered by game name
func (h *PluginHandler) Plugins() []pluginports.Plugin {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]pluginports.Plugin, len(h.ordered))
	copy(out, h.ordered)
	return out
}

// InstallFromSource installs the plugin found at src and reloads the set
func (h *PluginHandler) InstallFromSource(ctx context.Context, src string) (*plugindomain.Descriptor, error) {
	var desc *plugindomain.Descriptor
	err := h.mutate(ctx, func() error {
		var err error
		desc, err = h.installSource(ctx, src)
		return err
	})
	return desc, err
}

// InstallFromGitHubID resolves a repository by id and installs its default branch
func (h *PluginHandler) InstallFromGitHubID(ctx context.Context, id int64) (*plugindomain.Descriptor, error) {
	if h.repos == nil {
		return nil, fmt.Errorf("no GitHub client configured")
	}
	repo, err := h.repos.Repository(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve repository %d: %w", id, err)
	}
	h.logger.Info("installing from GitHub", zap.Int64("id", id), zap.String("repository", repo.FullName))
	return h.InstallFromSource(ctx, repo.ArchiveSource())
}

// InstallFromYAML installs a codeless plugin from descriptor data, recording
// source as its origin.
func (h *PluginHandler) InstallFromYAML(ctx context.Context, data []byte, source string) (*plugindomain.Descriptor, error) {
	var desc *plugindomain.Descriptor
	err := h.mutate(ctx, func() error {
		var err error
		desc, err = h.installer.InstallYAML(ctx, data)
		if err != nil {
			return err
		}
		return h.record(ctx, desc.UID, source)
	})
	return desc, err
}

// Uninstall removes an installed plugin and forgets where it came from
func (h *PluginHandler) Uninstall(ctx context.Context, uid string) error {
	return h.mutate(ctx, func() error {
		return h.uninstall(ctx, uid)
	})
}

// InstalledSources returns the install records keyed by source
func (h *PluginHandler) InstalledSources(ctx context.Context) (map[string]plugindomain.InstallRecord, error) {
	records, err := h.registry.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]plugindomain.InstallRecord, len(records))
	for _, r := range records {
		if r.Source != "" {
			out[r.Source] = r
		}
	}
	return out, nil
}

// ApplyChanges installs every source mapped to true and uninstalls the
// plugins installed from sources mapped to false. All changes are attempted;
// failures are returned together.
func (h *PluginHandler) ApplyChanges(ctx context.Context, changes map[string]bool) error {
	installed, err := h.InstalledSources(ctx)
	if err != nil {
		return err
	}

	sources := make([]string, 0, len(changes))
	for src := range changes {
		sources = append(sources, src)
	}
	sort.Strings(sources)

	return h.mutate(ctx, func() error {
		var (
			mu     sync.Mutex
			result *multierror.Error
		)
		fail := func(src string, err error) {
			mu.Lock()
			defer mu.Unlock()
			result = multierror.Append(result, fmt.Errorf("%s: %w", src, err))
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(changeLimit)
		for _, src := range sources {
			install := changes[src]
			record, isInstalled := installed[src]
			switch {
			case install && !isInstalled:
				g.Go(func() error {
					if _, err := h.installSource(gctx, src); err != nil {
						fail(src, err)
					}
					return nil
				})
			case !install && isInstalled:
				g.Go(func() error {
					if err := h.uninstall(gctx, record.UID); err != nil {
						fail(src, err)
					}
					return nil
				})
			}
		}
		_ = g.Wait()
		return result.ErrorOrNil()
	})
}

// Scaffold renders a descriptor skeleton for the game installed in gameDir
func (h *PluginHandler) Scaffold(gameDir string, opts plugininfra.ScaffoldOptions) ([]byte, error) {
	if opts.Platform == "" {
		opts.Platform = h.platform
	}
	return plugininfra.Scaffold(h.fs, gameDir, opts)
}

// mutate runs fn under the data directory lock and reloads the plugin set
func (h *PluginHandler) mutate(ctx context.Context, fn func() error) error {
	if h.locker != nil {
		unlock, err := h.locker.Lock(ctx)
		if err != nil {
			return err
		}
		defer unlock()
	}

	err := fn()
	if _, loadErr := h.Load(ctx); loadErr != nil && err == nil {
		err = loadErr
	}
	return err
}

func (h *PluginHandler) installSource(ctx context.Context, src string) (*plugindomain.Descriptor, error) {
	desc, err := h.installer.InstallFromSource(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("failed to install %s: %w", src, err)
	}
	if err := h.record(ctx, desc.UID, src); err != nil {
		return desc, err
	}
	h.logger.Info("plugin installed", zap.String("uid", desc.UID), zap.String("source", src))
	return desc, nil
}

func (h *PluginHandler) uninstall(ctx context.Context, uid string) error {
	if err := h.installer.Uninstall(ctx, uid); err != nil {
		return err
	}

	h.registryMu.Lock()
	defer h.registryMu.Unlock()
	if err := h.registry.Remove(ctx, uid); err != nil {
		return fmt.Errorf("failed to update plugin registry: %w", err)
	}
	h.logger.Info("plugin removed", zap.String("uid", uid))
	return nil
}

func (h *PluginHandler) record(ctx context.Context, uid, source string) error {
	h.registryMu.Lock()
	defer h.registryMu.Unlock()

	err := h.registry.Add(ctx, plugindomain.InstallRecord{
		UID:         uid,
		Source:      source,
		InstalledAt: h.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to update plugin registry: %w", err)
	}
	return nil
}
