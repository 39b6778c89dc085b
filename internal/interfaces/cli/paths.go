package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"switcherforgames.com/cli/internal/core/pathvar"
)

// newPathsCommand creates the paths command group
func newPathsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paths",
		Short: "Evaluate the path variables used by plugins",
		Long: `Plugin descriptors describe configuration files with paths such as
{documents}/My Games/Game/config.ini. These commands show what the variables
evaluate to on this machine.`,
	}

	cmd.AddCommand(newPathsEvalCommand(a))
	cmd.AddCommand(newPathsSymbolizeCommand(a))
	cmd.AddCommand(newPathsVarsCommand(a))

	return cmd
}

func newPathsEvalCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "eval <path>",
		Short: "Replace the variables of a path with their values",
		Example: `  switcher paths eval "{documents}/My Games/War Thunder"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.container.Evaluator.Evaluate(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	}
}

func newPathsSymbolizeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "symbolize <path>",
		Short: "Rewrite a concrete path with the longest matching variable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), a.container.Evaluator.Symbolize(args[0]))
			return nil
		},
	}
}

func newPathsVarsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "vars",
		Short: "List the variables available on this platform",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eval := a.container.Evaluator
			var rows [][]string
			for _, name := range pathvar.Variables(eval.Platform()) {
				value, err := eval.Value(name)
				if err != nil {
					value = mutedStyle.Render(err.Error())
				}
				rows = append(rows, []string{"{" + name + "}", value})
			}
			printTable(cmd.OutOrStdout(), "No variables.", []string{"VARIABLE", "VALUE"}, rows)
			return nil
		},
	}
}
