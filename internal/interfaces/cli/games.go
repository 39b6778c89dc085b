package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	pluginports "switcherforgames.com/cli/internal/core/ports/plugin"
)

// newGamesCommand creates the games command group
func newGamesCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "games",
		Short: "Find games and associate them with plugins",
		Long: `Find installed games in launcher libraries (Steam, Ubisoft Connect, GOG Galaxy,
Epic Games) and remember which folder belongs to which plugin.`,
		Example: `  # List the games found in your libraries
  switcher games discover

  # Assign every plugin the game folder it recognises
  switcher games discover --assign

  # Set the folder of a plugin by hand
  switcher games set war-thunder "/mnt/games/War Thunder"`,
	}

	cmd.AddCommand(newGamesDiscoverCommand(a))
	cmd.AddCommand(newGamesSetCommand(a))
	cmd.AddCommand(newGamesShowCommand(a))
	cmd.AddCommand(newGamesPickCommand(a))
	cmd.AddCommand(newGamesClearCommand(a))

	return cmd
}

func newGamesDiscoverCommand(a *app) *cobra.Command {
	var assign bool

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "List the games found in launcher libraries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.container
			out := cmd.OutOrStdout()

			if !assign {
				games, err := c.Games.Discover(cmd.Context())
				if err != nil {
					return err
				}
				printGames(cmd, games)
				return nil
			}

			report, err := c.Games.AutoAssign(cmd.Context())
			if err != nil {
				return err
			}
			printGames(cmd, report.Games)
			for _, uid := range sortedKeys(report.Assigned) {
				printOK(out, "%s -> %s", uid, report.Assigned[uid])
			}
			for _, uid := range sortedKeys(report.Stale) {
				if _, replaced := report.Assigned[uid]; !replaced {
					printWarn(out, "%s: stored folder %s no longer verifies", uid, report.Stale[uid])
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&assign, "assign", false, "Assign discovered folders to plugins without a valid one")
	return cmd
}

func newGamesSetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set <uid> <folder>",
		Short: "Set the game folder of a plugin",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.container.Games.SetPath(args[0], args[1]); err != nil {
				return err
			}
			path, _ := a.container.Games.Path(args[0])
			printOK(cmd.OutOrStdout(), "%s -> %s", args[0], path)
			return nil
		},
	}
}

func newGamesShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show [uid]",
		Short: "Show the game folders of plugins",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.container

			plugins := c.Plugins.Plugins()
			if len(args) == 1 {
				p, err := c.Plugins.Get(args[0])
				if err != nil {
					return err
				}
				plugins = []pluginports.Plugin{p}
			}

			var rows [][]string
			for _, p := range plugins {
				uid := p.Descriptor().UID
				path, ok := c.Games.Path(uid)
				status := "not set"
				switch {
				case ok && p.Verify(path) == nil:
					status = "ok"
				case ok:
					status = "invalid"
				}
				rows = append(rows, []string{uid, p.Descriptor().Game, orDash(path), status})
			}
			printTable(cmd.OutOrStdout(), "No plugins installed.", []string{"UID", "GAME", "FOLDER", "STATUS"}, rows)
			return nil
		},
	}
}

func newGamesPickCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "pick <uid>",
		Short: "Choose the game folder of a plugin from the discovered games",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.container
			p, err := c.Plugins.Get(args[0])
			if err != nil {
				return err
			}

			games, err := c.Games.Discover(cmd.Context())
			if err != nil {
				return err
			}
			choice, err := pick(cmd, c, "Select the folder of "+p.Descriptor().Game, gameChoices(games))
			if err != nil {
				return err
			}
			if err := c.Games.SetPath(args[0], choice.Path); err != nil {
				return err
			}
			printOK(cmd.OutOrStdout(), "%s -> %s", args[0], choice.Path)
			return nil
		},
	}
}

func newGamesClearCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear <uid>",
		Short: "Forget the game folder of a plugin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.container.Games.ClearPath(args[0])
		},
	}
}

func printGames(cmd *cobra.Command, games map[string]string) {
	var rows [][]string
	for _, g := range gameChoices(games) {
		rows = append(rows, []string{g.Name, g.Path})
	}
	printTable(cmd.OutOrStdout(), "No games found.", []string{"GAME", "FOLDER"}, rows)
}

// pick asks the user for one of choices
func pick(cmd *cobra.Command, c *CLIContainer, title string, choices []GameChoice) (GameChoice, error) {
	if len(choices) == 0 {
		return GameChoice{}, fmt.Errorf("no games found; add library folders to %s", c.Settings.Path())
	}
	if c.Pick != nil {
		return c.Pick(choices)
	}
	return runPicker(cmd.InOrStdin(), cmd.OutOrStdout(), title, choices)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
