package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/loupeteam/lpm/pkg/pipeline"
)

// installCommand creates the install command.
func (c *CLI) installCommand() *cobra.Command {
	var opts pipeline.InstallOptions

	cmd := &cobra.Command{
		Use:     "install [package[@version]...]",
		Aliases: []string{"i", "add"},
		Short:   "Install packages and place them into the project",
		Long: `Install packages with npm, then place them and everything they depend on into
the project and deploy them to the configured build configurations.

Without packages, every dependency of package.json is installed.

With --source, libraries are cloned from git into Logical/Libraries/Loupe
instead, and only the libraries they depend on are installed with npm.`,
		Example: `  lpm install atn
  lpm install vartools@1.2.0 stringext
  lpm install --source atn`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Packages = args
			return c.runInstall(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Source, "source", "s", false, "clone libraries as source instead of installing binaries")
	cmd.Flags().BoolVar(&opts.NoDeploy, "no-deploy", false, "place packages but do not deploy them")

	return cmd
}

func (c *CLI) runInstall(ctx context.Context, opts pipeline.InstallOptions) error {
	e, err := c.newEnv()
	if err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	report, err := e.runner.Install(ctx, opts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Installed %d packages", report.Set().Len()))

	printSuccess("Installed %d packages", report.Set().Len())
	printPackages(report)
	printCounts(report)
	if report.Undeployed {
		printUndeployed()
	}
	return nil
}

// uninstallCommand creates the uninstall command.
func (c *CLI) uninstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "uninstall <package>...",
		Aliases: []string{"remove", "rm"},
		Short:   "Remove packages from node_modules and package.json",
		Long: `Remove packages from node_modules and package.json.

Content already placed into the project is left alone; remove it in
Automation Studio.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := c.newEnv()
			if err != nil {
				return err
			}
			report, err := e.runner.Uninstall(cmd.Context(), args)
			if err != nil {
				return err
			}
			for _, ref := range report.Requested {
				printSuccess("Uninstalled %s", ref.FullName())
			}
			printWarning("Content placed in the project has not been removed")
			return nil
		},
	}
}
