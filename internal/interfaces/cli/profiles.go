package cli

import (
	"io"
	"sort"

	"github.com/spf13/cobra"

	"switcherforgames.com/cli/internal/application/services"
	plugindomain "switcherforgames.com/cli/internal/core/domain/plugin"
)

// newProfilesCommand creates the profiles command group
func newProfilesCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "Save and apply configuration profiles",
		Long: `A profile is a copy of the configuration files of a game for some features
(graphics, keymap, saves). Profiles are stored in the switcher data directory and
can be applied back to the game at any time.`,
		Example: `  # Save the current graphics settings of War Thunder
  switcher profiles save war-thunder --name "Low settings" --features graphics

  # List the saved profiles
  switcher profiles list war-thunder

  # Apply a profile
  switcher profiles apply war-thunder 3f0e2c4a-...`,
	}

	cmd.AddCommand(newProfilesListCommand(a))
	cmd.AddCommand(newProfilesSaveCommand(a))
	cmd.AddCommand(newProfilesApplyCommand(a))
	cmd.AddCommand(newProfilesDeleteCommand(a))
	cmd.AddCommand(newProfilesRenameCommand(a))

	return cmd
}

func newProfilesListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list <uid>",
		Short: "List the profiles saved for a plugin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.container
			if _, err := c.Plugins.Get(args[0]); err != nil {
				return err
			}
			profiles, err := c.Profiles.List(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			var rows [][]string
			for _, p := range profiles {
				size := "-"
				if n, err := c.Profiles.Size(cmd.Context(), args[0], p.ID); err == nil {
					size = formatSize(n)
				}
				rows = append(rows, []string{p.ID, p.Name, p.Features.String(), formatAge(p.CreatedAt), size})
			}
			printTable(cmd.OutOrStdout(), "No profiles saved.", []string{"ID", "NAME", "FEATURES", "CREATED", "SIZE"}, rows)
			return nil
		},
	}
}

func newProfilesSaveCommand(a *app) *cobra.Command {
	var (
		name     string
		features string
	)

	cmd := &cobra.Command{
		Use:   "save <uid>",
		Short: "Save the current configuration of a game",
		Long: `Copy the configuration files of the features given with --features into a
new profile. Every feature defaults to the ones the plugin declares. The game
folder must have been set with "switcher games set" or "switcher games pick".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.container
			p, err := c.Plugins.Get(args[0])
			if err != nil {
				return err
			}
			gameDir, err := c.Games.VerifiedPath(args[0])
			if err != nil {
				return err
			}

			set := p.Descriptor().Features
			if features != "" {
				if set, err = plugindomain.ParseFeatures(features); err != nil {
					return err
				}
			}

			profile, reports, err := c.Profiles.Save(cmd.Context(), p, gameDir, name, set)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printReports(out, reports)
			printOK(out, "Saved %q (%s)", profile.Name, profile.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Name of the profile")
	cmd.Flags().StringVar(&features, "features", "", "Comma separated features to save (default: all declared)")
	return cmd
}

func newProfilesApplyCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "apply <uid> <profile-id>",
		Short: "Copy a saved profile back into the game",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.container
			p, err := c.Plugins.Get(args[0])
			if err != nil {
				return err
			}
			gameDir, err := c.Games.VerifiedPath(args[0])
			if err != nil {
				return err
			}

			reports, err := c.Profiles.Apply(cmd.Context(), p, gameDir, args[1])
			out := cmd.OutOrStdout()
			printReports(out, reports)
			if err != nil {
				return err
			}
			printOK(out, "Applied %s", args[1])
			return nil
		},
	}
}

func newProfilesDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <uid> <profile-id>",
		Short: "Delete a saved profile",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.container.Profiles.Delete(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			printOK(cmd.OutOrStdout(), "Deleted %s", args[1])
			return nil
		},
	}
}

func newProfilesRenameCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <uid> <profile-id> <name>",
		Short: "Rename a saved profile",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := a.container.Profiles.Rename(cmd.Context(), args[0], args[1], args[2])
			if err != nil {
				return err
			}
			printOK(cmd.OutOrStdout(), "Renamed %s to %q", profile.ID, profile.Name)
			return nil
		},
	}
}

// printReports warns about the candidate paths that could not be copied
func printReports(out io.Writer, reports services.FeatureReports) {
	features := make([]plugindomain.Feature, 0, len(reports))
	for f := range reports {
		features = append(features, f)
	}
	sort.Slice(features, func(i, j int) bool { return features[i] < features[j] })

	for _, f := range features {
		failed := reports[f].Failed
		paths := make([]string, 0, len(failed))
		for path := range failed {
			paths = append(paths, path)
		}
		sort.Strings(paths)
		for _, path := range paths {
			printWarn(out, "%s: %s: %v", f, path, failed[path])
		}
	}
}
