package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/loupeteam/lpm/pkg/deps"
)

// listCommand creates the list command.
func (c *CLI) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list [package...]",
		Aliases: []string{"ls"},
		Short:   "List installed packages",
		Long: `List installed packages with npm. Without packages, the whole dependency
tree is listed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := c.newEnv()
			if err != nil {
				return err
			}
			if len(args) == 0 {
				return e.npm.Run(cmd.Context(), "list", "--all")
			}
			refs, err := deps.ParseReferences(args)
			if err != nil {
				return err
			}
			npmArgs := []string{"list"}
			for _, r := range refs {
				npmArgs = append(npmArgs, r.FullName())
			}
			return e.npm.Run(cmd.Context(), npmArgs...)
		},
	}
}

// viewCommand creates the view command.
func (c *CLI) viewCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "view <package>[@version] [field...]",
		Aliases: []string{"info"},
		Short:   "Show registry information about a package",
		Example: `  lpm view atn
  lpm view atn versions`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := deps.ParseReference(args[0])
			if err != nil {
				return err
			}
			e, err := c.newEnv()
			if err != nil {
				return err
			}
			out, err := e.npm.View(cmd.Context(), ref.Spec(), args[1:]...)
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		},
	}
}

// npmCommand creates the npm command, which hands everything after it to
// npm without interpreting flags.
func (c *CLI) npmCommand() *cobra.Command {
	return &cobra.Command{
		Use:                "npm [args...]",
		Short:              "Run npm in the project directory",
		Example:            `  lpm npm outdated --json`,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runNPM(cmd.Context(), args)
		},
	}
}
