package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// syncCommand creates the sync command.
func (c *CLI) syncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync [package...]",
		Short: "Place installed packages into the project",
		Long: `Place installed packages and everything they depend on into the project.

Without packages, the dependencies of package.json are placed. Nothing is
fetched; run install first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := c.newEnv()
			if err != nil {
				return err
			}
			prog := newProgress(c.Logger)
			report, err := e.runner.Sync(cmd.Context(), args)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Synchronized %d packages", report.Set().Len()))
			printSuccess("Synchronized %d packages", report.Set().Len())
			printPackages(report)
			return nil
		},
	}
}

// deployCommand creates the deploy command.
func (c *CLI) deployCommand() *cobra.Command {
	var configs []string

	cmd := &cobra.Command{
		Use:   "deploy [package...]",
		Short: "Register placed packages in build configurations",
		Long: `Register placed packages and everything they depend on in the software
configuration of build configurations.

Without --config, the configurations chosen with configure are used.
Without packages, the dependencies of package.json are deployed.`,
		Example: `  lpm deploy
  lpm deploy atn --config Intel --config Arm`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := c.newEnv()
			if err != nil {
				return err
			}
			report, err := e.runner.Deploy(cmd.Context(), args, configs)
			if err != nil {
				return err
			}
			if len(report.Configs) == 0 {
				if report.Undeployed {
					printUndeployed()
				} else {
					printInfo("Nothing to deploy")
				}
				return nil
			}
			printSuccess("Deployed %d packages", report.Set().Len())
			printCounts(report)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&configs, "config", nil, "build configuration to deploy to (repeatable)")

	return cmd
}
