package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	apphttp "switcherforgames.com/cli/internal/application/http"
	"switcherforgames.com/cli/internal/application/links"
	"switcherforgames.com/cli/internal/core/discovery"
	"switcherforgames.com/cli/internal/core/pathvar"
)

// newOpenCommand creates the command handling switcher:// links
func newOpenCommand(a *app) *cobra.Command {
	var game string

	cmd := &cobra.Command{
		Use:   "open <link>",
		Short: "Handle a switcher:// link opened from the website",
		Long: `Handle a link opened from the switcher website:

  switcher://install-plugin?github=<id>  install a plugin published on GitHub
  switcher://dev-install?code=<code>     install a descriptor under development
  switcher://magic-link?code=<code>      send a game folder to the website

For magic links the game is chosen from the discovered games unless --game is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			link, err := links.ParseLink(args[0])
			if err != nil {
				return err
			}
			if link.Kind == links.MagicLink && game != "" {
				return magicLinkFor(cmd, a.container, link.Code, game)
			}
			return runLink(cmd, a.container, link)
		},
	}

	cmd.Flags().StringVar(&game, "game", "", "Game folder to report for a magic link")
	return cmd
}

// runLink performs the action requested by a link
func runLink(cmd *cobra.Command, c *CLIContainer, link links.Link) error {
	c.Logger.Info("handling link", zap.String("kind", string(link.Kind)))

	switch link.Kind {
	case links.InstallPlugin:
		return installGitHub(cmd, c, link.GitHubID)
	case links.DevInstall:
		return devInstall(cmd, c, link.Code)
	case links.MagicLink:
		return magicLink(cmd, c, link.Code)
	}
	return fmt.Errorf("unsupported link %q", link.Kind)
}

func installGitHub(cmd *cobra.Command, c *CLIContainer, id int64) error {
	desc, err := c.Plugins.InstallFromGitHubID(cmd.Context(), id)
	if err != nil {
		return err
	}
	printOK(cmd.OutOrStdout(), "Installed %s (%s)", desc.Game, desc.UID)
	return nil
}

func devInstall(cmd *cobra.Command, c *CLIContainer, code string) error {
	data, err := c.Website.DevPluginYAML(cmd.Context(), code)
	if err != nil {
		return fmt.Errorf("failed to download the plugin for code %s: %w", code, err)
	}
	desc, err := c.Plugins.InstallFromYAML(cmd.Context(), data, "dev:"+code)
	if err != nil {
		return err
	}
	printOK(cmd.OutOrStdout(), "Installed %s (%s)", desc.Game, desc.UID)
	return nil
}

// magicLink lets the user choose a discovered game and reports it
func magicLink(cmd *cobra.Command, c *CLIContainer, code string) error {
	games, err := c.Games.Discover(cmd.Context())
	if err != nil {
		return err
	}
	choice, err := pick(cmd, c, "Select the game to send to the website", gameChoices(games))
	if err != nil {
		return err
	}
	return postMagicLink(cmd, c, code, choice)
}

// magicLinkFor reports the game installed in folder
func magicLinkFor(cmd *cobra.Command, c *CLIContainer, code, folder string) error {
	path, err := filepath.Abs(folder)
	if err != nil {
		return err
	}
	return postMagicLink(cmd, c, code, GameChoice{Name: filepath.Base(path), Path: path})
}

func postMagicLink(cmd *cobra.Command, c *CLIContainer, code string, game GameChoice) error {
	username, err := c.Evaluator.Value(pathvar.Username)
	if err != nil {
		return err
	}

	report := apphttp.GameReport{Username: username, Game: game.Name, GamePath: game.Path}
	exe, err := c.Games.GuessExecutable(game.Path, game.Name)
	switch {
	case err == nil:
		report.ExecutablePath = &exe
	case errors.Is(err, discovery.ErrNoExecutable):
	default:
		return fmt.Errorf("failed to inspect %s: %w", game.Path, err)
	}

	if err := c.Website.PostMagicLink(cmd.Context(), code, report); err != nil {
		return fmt.Errorf("failed to send %s to the website: %w", game.Name, err)
	}
	printOK(cmd.OutOrStdout(), "Sent %s to the website", game.Name)
	return nil
}
