package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	apphttp "switcherforgames.com/cli/internal/application/http"
	"switcherforgames.com/cli/internal/application/links"
	"switcherforgames.com/cli/internal/application/services"
	"switcherforgames.com/cli/internal/core/pathvar"
	"switcherforgames.com/cli/internal/infrastructure/config"
)

var (
	Version   = "dev"     // Overridden by ldflags
	BuildTime = "unknown" // Overridden by ldflags
)

// Options are the global flags a container is built from
type Options struct {
	Debug bool
}

// CLIContainer holds all the dependencies for CLI commands
type CLIContainer struct {
	Settings        *config.Store
	Paths           config.Paths
	Evaluator       *pathvar.Evaluator
	Plugins         *services.PluginHandler
	LoadReport      services.LoadReport
	Profiles        *services.ProfileService
	Games           *services.GameService
	SettingsService *services.SettingsService
	Website         *apphttp.WebsiteClient
	Logger          *zap.Logger

	// Pick chooses one of the discovered games; nil uses the terminal picker
	Pick func(games []GameChoice) (GameChoice, error)
	// Close flushes logs and releases resources
	Close func() error
}

// ContainerFactory builds the container once global flags are parsed
type ContainerFactory func(opts Options) (*CLIContainer, error)

// app lazily builds the container for the command being run
type app struct {
	factory   ContainerFactory
	opts      Options
	container *CLIContainer
}

func (a *app) init() error {
	if a.container != nil {
		return nil
	}
	c, err := a.factory(a.opts)
	if err != nil {
		return fmt.Errorf("failed to initialize switcher: %w", err)
	}
	a.container = c
	return nil
}

func (a *app) close() error {
	if a.container == nil || a.container.Close == nil {
		return nil
	}
	return a.container.Close()
}

// NewRootCommand creates the switcher command tree
func NewRootCommand(factory ContainerFactory) *cobra.Command {
	return newRootCommand(&app{factory: factory})
}

func newRootCommand(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "switcher [link]",
		Short: "Switcher - graphics, keymap and save profiles for your games",
		Long: `Switcher backs up and restores per-game configuration such as graphics
settings, keymaps and saves. Support for each game comes from a plugin.

Links of the form switcher://install-plugin?github=<id>, switcher://dev-install?code=<code>
and switcher://magic-link?code=<code> are accepted as arguments.`,
		Version:       Version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			found := links.Parse(args)
			if len(found) == 0 {
				if rest := links.Strip(args); len(rest) > 0 {
					return fmt.Errorf("unknown command %q", rest[0])
				}
				return cmd.Help()
			}
			for _, link := range found {
				if err := runLink(cmd, a.container, link); err != nil {
					return err
				}
			}
			return nil
		},
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf("{{.Name}} version {{.Version}}\nBuild time: %s\nGo version: %s\nPlatform: %s/%s\n",
		BuildTime, goVersion(), runtime.GOOS, runtime.GOARCH))

	rootCmd.PersistentFlags().BoolVar(&a.opts.Debug, "debug", false, "Enable debug logging on the console")

	rootCmd.AddCommand(newPluginsCommand(a))
	rootCmd.AddCommand(newGamesCommand(a))
	rootCmd.AddCommand(newProfilesCommand(a))
	rootCmd.AddCommand(newSettingsCommand(a))
	rootCmd.AddCommand(newPathsCommand(a))
	rootCmd.AddCommand(newOpenCommand(a))

	return rootCmd
}

// goVersion returns the Go version used to build the binary
func goVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		return info.GoVersion
	}
	return "unknown"
}

// Run executes the command tree with args, writing to out and errOut
func Run(ctx context.Context, factory ContainerFactory, args []string, out, errOut io.Writer) error {
	a := &app{factory: factory}
	defer a.close()

	rootCmd := newRootCommand(a)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	return rootCmd.ExecuteContext(ctx)
}

// Execute runs the command line and exits with status 1 on failure
func Execute(ctx context.Context, factory ContainerFactory) {
	if err := Run(ctx, factory, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
