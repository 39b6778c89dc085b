package cli

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	plugindomain "switcherforgames.com/cli/internal/core/domain/plugin"
	pluginports "switcherforgames.com/cli/internal/core/ports/plugin"
	plugininfra "switcherforgames.com/cli/internal/infrastructure/plugin"
)

// newPluginsCommand creates the plugins command group
func newPluginsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plugins",
		Short: "Manage game plugins",
		Long: `Manage the plugins that teach switcher where a game keeps its configuration.

A plugin is a folder holding a plugin.yaml descriptor and, optionally, a plugin.go
script. Plugins can be installed from a local folder, an archive URL, a git
repository or a GitHub repository id.`,
		Example: `  # List installed plugins
  switcher plugins list

  # Install a plugin from a local folder or URL
  switcher plugins install ./war-thunder
  switcher plugins install https://example.com/war-thunder.zip

  # Install a plugin published on GitHub
  switcher plugins install-github 123456

  # Remove a plugin
  switcher plugins remove war-thunder`,
	}

	cmd.AddCommand(newPluginsListCommand(a))
	cmd.AddCommand(newPluginsInfoCommand(a))
	cmd.AddCommand(newPluginsInstallCommand(a))
	cmd.AddCommand(newPluginsInstallGitHubCommand(a))
	cmd.AddCommand(newPluginsDevInstallCommand(a))
	cmd.AddCommand(newPluginsRemoveCommand(a))
	cmd.AddCommand(newPluginsSyncCommand(a))
	cmd.AddCommand(newPluginsScaffoldCommand(a))

	return cmd
}

func newPluginsListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List installed plugins",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.container
			out := cmd.OutOrStdout()

			sources, err := c.Plugins.InstalledSources(cmd.Context())
			if err != nil {
				return err
			}
			bySource := map[string]string{}
			for src, record := range sources {
				bySource[record.UID] = src
			}

			var rows [][]string
			for _, p := range c.Plugins.Plugins() {
				desc := p.Descriptor()
				path, _ := c.Games.Path(desc.UID)
				rows = append(rows, []string{desc.UID, desc.Game, desc.Features.String(), pluginKind(p), orDash(path), orDash(bySource[desc.UID])})
			}
			printTable(out, "No plugins installed.", []string{"UID", "GAME", "FEATURES", "TYPE", "GAME FOLDER", "SOURCE"}, rows)

			dirs := make([]string, 0, len(c.LoadReport.Skipped))
			for dir := range c.LoadReport.Skipped {
				dirs = append(dirs, dir)
			}
			sort.Strings(dirs)
			for _, dir := range dirs {
				printWarn(out, "skipped %s: %v", dir, c.LoadReport.Skipped[dir])
			}
			for _, dir := range c.LoadReport.Duplicates {
				printWarn(out, "skipped %s: duplicate uid", dir)
			}
			return nil
		},
	}
}

func newPluginsInfoCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info <uid>",
		Short: "Show the details of a plugin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.container
			p, err := c.Plugins.Get(args[0])
			if err != nil {
				return err
			}
			desc := p.Descriptor()
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, field("Game", desc.Game))
			fmt.Fprintln(out, field("UID", desc.UID))
			fmt.Fprintln(out, field("Author", desc.Author))
			fmt.Fprintln(out, field("Type", pluginKind(p)))
			fmt.Fprintln(out, field("Folder", desc.Dir))
			if desc.SteamID != 0 {
				fmt.Fprintln(out, field("Steam ID", strconv.Itoa(desc.SteamID)))
			}
			fmt.Fprintln(out, field("Identified by", strings.Join(desc.GameDirectories(), ", ")))
			for _, f := range desc.Features {
				fragments, err := p.Fragments(f)
				value := strings.Join(fragments, ", ")
				if err != nil {
					value = err.Error()
				}
				fmt.Fprintln(out, field(capitalize(f.String()), value))
			}
			if path, ok := c.Games.Path(desc.UID); ok {
				fmt.Fprintln(out, field("Game folder", path))
			}
			return nil
		},
	}
}

func newPluginsInstallCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "install <source>",
		Short: "Install a plugin from a folder, archive URL or repository",
		Long: `Install a plugin from any source understood by go-getter: a local folder,
a zip or tar archive URL, or a git repository (git::https://...). The plugin
descriptor may sit at the root of the source or in its single sub-folder.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, err := a.container.Plugins.InstallFromSource(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printOK(cmd.OutOrStdout(), "Installed %s (%s)", desc.Game, desc.UID)
			return nil
		},
	}
}

func newPluginsInstallGitHubCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "install-github <repository-id>",
		Short: "Install a plugin from a GitHub repository id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid repository id %q", args[0])
			}
			return installGitHub(cmd, a.container, id)
		},
	}
}

func newPluginsDevInstallCommand(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "dev-install [code]",
		Short: "Install a plugin descriptor under development",
		Long: `Install a codeless plugin from a descriptor being written on the website,
identified by its code, or from a local descriptor file with --file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if file != "" {
				data, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", file, err)
				}
				desc, err := a.container.Plugins.InstallFromYAML(cmd.Context(), data, "file:"+file)
				if err != nil {
					return err
				}
				printOK(cmd.OutOrStdout(), "Installed %s (%s)", desc.Game, desc.UID)
				return nil
			}
			if len(args) == 0 {
				return fmt.Errorf("a code or --file is required")
			}
			return devInstall(cmd, a.container, args[0])
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Install from a local descriptor file")
	return cmd
}

func newPluginsRemoveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <uid>",
		Short: "Remove an installed plugin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.container.Plugins.Uninstall(cmd.Context(), args[0]); err != nil {
				return err
			}
			printOK(cmd.OutOrStdout(), "Removed %s", args[0])
			return nil
		},
	}
}

func newPluginsSyncCommand(a *app) *cobra.Command {
	var install, remove []string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Install and remove several plugin sources at once",
		Example: `  switcher plugins sync --install ./a --install ./b --remove https://example.com/c.zip`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			changes := map[string]bool{}
			for _, src := range remove {
				changes[src] = false
			}
			for _, src := range install {
				changes[src] = true
			}
			if len(changes) == 0 {
				return fmt.Errorf("nothing to do: use --install or --remove")
			}
			if err := a.container.Plugins.ApplyChanges(cmd.Context(), changes); err != nil {
				return err
			}
			printOK(cmd.OutOrStdout(), "Plugins updated")
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&install, "install", nil, "Source to install")
	cmd.Flags().StringSliceVar(&remove, "remove", nil, "Source to remove")
	return cmd
}

func newPluginsScaffoldCommand(a *app) *cobra.Command {
	var (
		author   string
		features string
		output   string
	)

	cmd := &cobra.Command{
		Use:   "scaffold <game-folder>",
		Short: "Write a descriptor skeleton for a game",
		Long: `Generate a plugin.yaml skeleton for the game installed in the given folder.
The uid is derived from the folder name and the executable is detected; the
configuration fragments are placeholders to be edited.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := plugindomain.ParseFeatures(features)
			if err != nil {
				return err
			}
			data, err := a.container.Plugins.Scaffold(args[0], plugininfra.ScaffoldOptions{
				Author:   author,
				Features: set,
			})
			if err != nil {
				return err
			}
			if output == "" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			printOK(cmd.OutOrStdout(), "Wrote %s", output)
			return nil
		},
	}

	cmd.Flags().StringVar(&author, "author", "", "Plugin author")
	cmd.Flags().StringVar(&features, "features", "graphics", "Comma separated features to declare")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the descriptor to a file instead of stdout")
	return cmd
}

func pluginKind(p pluginports.Plugin) string {
	if _, ok := p.(*plugininfra.ScriptedPlugin); ok {
		return "scripted"
	}
	return "codeless"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
