package di

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	apphttp "switcherforgames.com/cli/internal/application/http"
	"switcherforgames.com/cli/internal/application/services"
	"switcherforgames.com/cli/internal/core/domain/platform"
	"switcherforgames.com/cli/internal/core/pathvar"
	"switcherforgames.com/cli/internal/infrastructure/config"
	httpinfra "switcherforgames.com/cli/internal/infrastructure/http"
	lockinfra "switcherforgames.com/cli/internal/infrastructure/lock"
	"switcherforgames.com/cli/internal/infrastructure/logging"
	plugininfra "switcherforgames.com/cli/internal/infrastructure/plugin"
	profileinfra "switcherforgames.com/cli/internal/infrastructure/profile"
	"switcherforgames.com/cli/internal/interfaces/cli"
)

const (
	httpTimeout    = 30 * time.Second
	httpRetries    = 2
	httpRetryDelay = 250
)

// Options control how the container is built
type Options struct {
	// Debug enables debug logging on the console
	Debug bool
	// Environ replaces the process environment when non-nil
	Environ map[string]string
	// Console receives log entries, stderr when nil
	Console io.Writer
}

// Container holds all application dependencies
type Container struct {
	Platform  platform.Platform
	Settings  *config.Store
	Paths     config.Paths
	Evaluator *pathvar.Evaluator

	Plugins         *services.PluginHandler
	Profiles        *services.ProfileService
	Games           *services.GameService
	SettingsService *services.SettingsService
	Website         *apphttp.WebsiteClient
	GitHub          *apphttp.GitHubClient

	// CLI
	CLIContainer *cli.CLIContainer

	Logger *zap.Logger

	closeLog func() error
}

// NewContainer creates and configures the dependency injection container
func NewContainer(opts Options) (*Container, error) {
	c := &Container{}
	if err := c.initializeComponents(opts); err != nil {
		if c.closeLog != nil {
			_ = c.closeLog()
		}
		return nil, fmt.Errorf("failed to initialize components: %w", err)
	}
	return c, nil
}

// Factory builds containers for the command line once its flags are parsed
func Factory(base Options) cli.ContainerFactory {
	return func(o cli.Options) (*cli.CLIContainer, error) {
		opts := base
		opts.Debug = opts.Debug || o.Debug
		c, err := NewContainer(opts)
		if err != nil {
			return nil, err
		}
		return c.GetCLIContainer(), nil
	}
}

// initializeComponents initializes all components with proper dependencies
func (c *Container) initializeComponents(opts Options) error {
	// 1. Platform and path variables
	p, err := platform.Current()
	if err != nil {
		return err
	}
	c.Platform = p

	var env pathvar.Environment = pathvar.NewOSEnvironment()
	if opts.Environ != nil {
		env = pathvar.MapEnvironment{Vars: opts.Environ, Home: opts.Environ["HOME"]}
	}
	c.Evaluator = pathvar.NewEvaluator(p, env)

	// 2. Settings
	overrides, err := config.ParseEnv(opts.Environ)
	if err != nil {
		return err
	}
	home, err := config.ResolveHome(overrides, c.Evaluator)
	if err != nil {
		return err
	}
	c.Settings, err = config.OpenStore(home, overrides)
	if err != nil {
		return err
	}
	settings, err := c.Settings.Settings()
	if err != nil {
		return err
	}
	c.Paths, err = c.Settings.Paths()
	if err != nil {
		return err
	}

	// 3. Logging
	c.Logger, c.closeLog, err = logging.New(logging.Options{
		File:      c.Paths.Log(),
		FileLevel: settings.LogLevel,
		Console:   opts.Console,
		Debug:     opts.Debug,
	})
	if err != nil {
		return err
	}
	c.Logger.Debug("starting", zap.String("version", cli.Version), zap.String("platform", string(p)),
		zap.String("home", c.Paths.Home), zap.String("data", c.Paths.Data))

	// 4. Infrastructure
	fs := afero.NewOsFs()
	locker := lockinfra.NewFileLock(c.Paths.Data)

	pwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to read working directory: %w", err)
	}
	installer := plugininfra.NewFileSystemInstaller(fs, c.Paths.Plugins(), c.Paths.Staging(), plugininfra.NewGoGetterFetcher(pwd))
	registry := plugininfra.NewFileSystemRegistry(fs, c.Paths.Plugins())
	loader := plugininfra.NewFileSystemLoader(fs, c.Evaluator)

	userAgent := "switcher-cli/" + cli.Version
	retry := httpinfra.NewBackoffRetryPolicy(httpRetries, httpRetryDelay)
	c.Website = apphttp.NewWebsiteClient(apphttp.NewBackendClient(settings.WebsiteURL, userAgent, httpTimeout, httpinfra.StaticHeaders{}, retry, c.Logger))
	c.GitHub = apphttp.NewGitHubClient(apphttp.NewBackendClient(settings.GitHubAPIURL, userAgent, httpTimeout, httpinfra.StaticHeaders{}, retry, c.Logger))

	// 5. Application services
	c.Plugins = services.NewPluginHandler(services.PluginHandlerDeps{
		Fs:        fs,
		Dir:       c.Paths.Plugins(),
		Platform:  p,
		Loader:    loader,
		Installer: installer,
		Registry:  registry,
		Repos:     c.GitHub,
		Locker:    locker,
		Logger:    c.Logger,
	})
	report, err := c.Plugins.Load(context.Background())
	if err != nil {
		return err
	}

	store := profileinfra.NewFileSystemStore(fs, c.Paths.Profiles(), c.Logger)
	c.Profiles = services.NewProfileService(fs, store, locker, c.Logger)
	c.Games = services.NewGameService(fs, p, env, c.Settings, c.Plugins, c.Logger)
	c.SettingsService = services.NewSettingsService(fs, home, c.Settings, locker, c.Logger)

	// 6. CLI container
	c.CLIContainer = &cli.CLIContainer{
		Settings:        c.Settings,
		Paths:           c.Paths,
		Evaluator:       c.Evaluator,
		Plugins:         c.Plugins,
		LoadReport:      report,
		Profiles:        c.Profiles,
		Games:           c.Games,
		SettingsService: c.SettingsService,
		Website:         c.Website,
		Logger:          c.Logger,
		Close:           c.Shutdown,
	}

	c.Logger.Debug("container initialized", zap.Int("plugins", len(report.Loaded)), zap.Int("skipped", len(report.Skipped)))
	return nil
}

// GetCLIContainer returns the CLI container for command execution
func (c *Container) GetCLIContainer() *cli.CLIContainer {
	return c.CLIContainer
}

// Shutdown flushes and closes the log file
func (c *Container) Shutdown() error {
	if c.closeLog == nil {
		return nil
	}
	closeLog := c.closeLog
	c.closeLog = nil
	return closeLog()
}
