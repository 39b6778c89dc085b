package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"switcherforgames.com/cli/internal/infrastructure/config"
)

// newSettingsCommand creates the settings command group
func newSettingsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show and change switcher settings",
		Long: `Show the effective settings and change the data directory or the extra
library folders searched for games.

Environment variables take precedence over settings.yaml:
  SWITCHER_HOME            Directory holding settings.yaml and the log
  SWITCHER_DATA_DIR        Directory holding plugins and profiles
  SWITCHER_LOG_LEVEL       Log level of the log file (debug, info, warn, error)
  SWITCHER_WEBSITE_URL     Base URL of the switcher website
  SWITCHER_GITHUB_API_URL  Base URL of the GitHub API`,
	}

	cmd.AddCommand(newSettingsShowCommand(a))
	cmd.AddCommand(newSettingsMoveCommand(a))
	cmd.AddCommand(newSettingsLibraryCommand(a))

	return cmd
}

func newSettingsShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.container
			eff, err := c.Settings.Settings()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, field("Settings", c.Settings.Path()))
			fmt.Fprintln(out, field("Log file", c.Paths.Log()))
			dataDir := eff.DataDir
			if stored := c.Settings.Stored().DataDir; filepath.Clean(stored) != filepath.Clean(dataDir) {
				dataDir += mutedStyle.Render(" (from SWITCHER_DATA_DIR)")
			}
			fmt.Fprintln(out, field("Data folder", dataDir))
			fmt.Fprintln(out, field("Log level", eff.LogLevel))
			fmt.Fprintln(out, field("Website", eff.WebsiteURL))
			fmt.Fprintln(out, field("GitHub API", eff.GitHubAPIURL))
			fmt.Fprintln(out, field("Libraries", orDash(strings.Join(eff.LibraryFolders, ", "))))
			return nil
		},
	}
}

func newSettingsMoveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "move <folder>",
		Short: "Move plugins and profiles to another folder",
		Long: `Copy the plugins and profiles folders into the given folder, make it the data
directory and remove the old copies. When the folder is not empty the data is
placed in a sub-folder named after the current data directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := a.container.SettingsService.MoveDataDir(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if report.Cleanup != nil {
				printWarn(out, "could not remove %s: %v", report.From, report.Cleanup)
			}
			printOK(out, "Data moved from %s to %s", report.From, report.To)
			return nil
		},
	}
}

func newSettingsLibraryCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "library",
		Short: "Manage the extra folders searched for games",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <folder>",
		Short: "Search a launcher library folder for games",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			err = a.container.Settings.Update(func(s *config.Settings) error {
				for _, f := range s.LibraryFolders {
					if f == folder {
						return nil
					}
				}
				s.LibraryFolders = append(s.LibraryFolders, folder)
				return nil
			})
			if err != nil {
				return err
			}
			printOK(cmd.OutOrStdout(), "Added %s", folder)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <folder>",
		Short: "Stop searching a library folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			removed := false
			err = a.container.Settings.Update(func(s *config.Settings) error {
				kept := s.LibraryFolders[:0]
				for _, f := range s.LibraryFolders {
					if f == folder {
						removed = true
						continue
					}
					kept = append(kept, f)
				}
				s.LibraryFolders = kept
				return nil
			})
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("%s is not a library folder", folder)
			}
			printOK(cmd.OutOrStdout(), "Removed %s", folder)
			return nil
		},
	})

	return cmd
}
