package cli

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/loupeteam/lpm/pkg/deps"
	lpmerrors "github.com/loupeteam/lpm/pkg/errors"
	"github.com/loupeteam/lpm/pkg/git"
	"github.com/loupeteam/lpm/pkg/manifest"
	"github.com/loupeteam/lpm/pkg/pipeline"
	"github.com/loupeteam/lpm/pkg/syncer"
)

// =============================================================================
// init
// =============================================================================

// initOpts holds the command-line flags for the init command.
type initOpts struct {
	silent    bool   // no prompts, defaults everywhere
	starter   string // starter project for an empty directory
	noStarter bool   // never install a starter
	imports   bool   // import existing libraries without asking
	asProject bool   // treat the directory as a project
	asLibrary bool   // treat the directory as a library
}

// initCommand creates the init command.
func (c *CLI) initCommand() *cobra.Command {
	var opts initOpts

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Prepare the directory for lpm",
		Long: `Prepare the directory for lpm according to what it holds.

An Automation Studio project gets a package.json, optionally the Loupe
libraries it already contains, and its deployment configuration.

An Automation Studio library gets the package.json it is published with.

Any other directory becomes a stand-alone package manager, optionally
seeded with a starter project.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.asProject && opts.asLibrary {
				return fmt.Errorf("--as-project and --as-library are mutually exclusive")
			}
			return c.runInit(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.silent, "silent", "s", false, "use defaults without prompting")
	cmd.Flags().StringVar(&opts.starter, "starter", "", "starter project for an empty directory (default "+pipeline.DefaultStarter+" when confirmed)")
	cmd.Flags().BoolVar(&opts.noStarter, "no-starter", false, "do not offer a starter project")
	cmd.Flags().BoolVar(&opts.imports, "import", false, "import the libraries the project already contains")
	cmd.Flags().BoolVar(&opts.asProject, "as-project", false, "treat the directory as an Automation Studio project")
	cmd.Flags().BoolVar(&opts.asLibrary, "as-library", false, "treat the directory as an Automation Studio library")

	return cmd
}

func (c *CLI) runInit(ctx context.Context, opts initOpts) error {
	e, err := c.newEnv()
	if err != nil {
		return err
	}

	in := pipeline.InitOptions{Import: opts.imports, Starter: opts.starter}
	switch {
	case opts.asProject:
		in.Kind = pipeline.InitProject
	case opts.asLibrary:
		in.Kind = pipeline.InitLibrary
	}

	kind := in.Kind
	if kind == pipeline.InitAuto {
		kind = e.runner.Detect()
	}
	if !opts.silent {
		if err := askInit(kind, &in, opts); err != nil {
			return err
		}
	}

	kind, report, err := e.runner.Init(ctx, in)
	if err != nil {
		return err
	}

	switch kind {
	case pipeline.InitProject:
		if report != nil && report.Set().Len() > 0 {
			printSuccess("Imported %d packages", report.Set().Len())
			printPackages(report)
		}
		if err := c.runConfigure(e, nil, nil, opts.silent); err != nil {
			return err
		}
		printSuccess("Your Automation Studio project is now ready to be used with lpm")
		if in.Import && e.tree.IsPackage(path.Join(deps.LogicalDir, "Libraries", "_ARG")) {
			printWarning("Remove the _ARG folder manually to avoid library conflicts")
		}
	case pipeline.InitLibrary:
		m, err := manifest.Read(e.tree.FS(), deps.ManifestFile)
		if err != nil {
			return err
		}
		printSuccess("Created %s for %s %s", deps.ManifestFile, m.Name, m.Version)
		printNextStep("Publish it with", "npm publish")
	default:
		if in.Starter != "" && e.tree.IsProject(syncer.Root) {
			if err := c.runConfigure(e, nil, nil, opts.silent); err != nil {
				return err
			}
			printSuccess("Your directory now holds %s and is ready to be used with lpm", in.Starter)
			return nil
		}
		printSuccess("This directory has been initialized as a stand-alone package manager")
	}
	return nil
}

// askInit fills in what the user did not pass as flags.
func askInit(kind pipeline.InitKind, in *pipeline.InitOptions, opts initOpts) error {
	switch kind {
	case pipeline.InitProject:
		if in.Import {
			return nil
		}
		ok, err := confirm("Initialize lpm with the Loupe libraries already in the project?", false)
		if err != nil {
			return err
		}
		in.Import = ok
	case pipeline.InitStandalone:
		if in.Starter != "" || opts.noStarter {
			return nil
		}
		ok, err := confirm("No Automation Studio project found. Initialize the directory with a starter project?", true)
		if err != nil {
			return err
		}
		if ok {
			in.Starter = pipeline.DefaultStarter
		}
	}
	return nil
}

// =============================================================================
// configure
// =============================================================================

// configureCommand creates the configure command.
func (c *CLI) configureCommand() *cobra.Command {
	var (
		silent    bool
		configs   []string
		gitClient string
	)

	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Choose deployment configurations and the git client",
		Long: `Choose the build configurations installed packages are deployed to, and the
git client used to open source libraries. The choice is stored under
lpmConfig in the project's package.json.

With --silent, every build configuration of the project is selected.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := c.newEnv()
			if err != nil {
				return err
			}
			var client *string
			if cmd.Flags().Changed("git-client") {
				client = &gitClient
			}
			return c.runConfigure(e, configs, client, silent)
		},
	}

	cmd.Flags().BoolVarP(&silent, "silent", "s", false, "select every configuration without prompting")
	cmd.Flags().StringSliceVar(&configs, "config", nil, "build configuration to deploy to (repeatable)")
	cmd.Flags().StringVar(&gitClient, "git-client", "", "git client: "+strings.Join(git.Clients[:len(git.Clients)-1], ", ")+" or empty")

	return cmd
}

func (c *CLI) runConfigure(e *env, configs []string, gitClient *string, silent bool) error {
	if !e.tree.IsProject(syncer.Root) {
		return lpmerrors.New(lpmerrors.ErrCodeNotAProject, "configuration is only supported at the root of a project")
	}
	current := manifest.ReadConfig(e.tree.FS(), deps.ManifestFile)

	if configs == nil {
		all, err := e.tree.BuildConfigs()
		if err != nil {
			return err
		}
		if silent {
			printInfo("Assigning every configuration as a deployment target")
			configs = all
		} else if configs, err = chooseMany("Which configurations should packages be deployed to?", all, current.DeploymentConfigs); err != nil {
			return err
		}
	}
	if gitClient == nil && !silent {
		cur := ""
		if current.GitClient != nil {
			cur = *current.GitClient
		}
		choice, err := chooseOne("Which git client should open source libraries?", git.Clients, cur)
		if err != nil {
			return err
		}
		gitClient = &choice
	}

	if err := e.runner.Configure(configs, gitClient); err != nil {
		return err
	}
	if len(configs) > 0 {
		printSuccess("Deploying to %s", strings.Join(configs, ", "))
	} else {
		printSuccess("No configurations used for deployments")
	}
	if gitClient != nil && *gitClient != "" {
		printSuccess("%s is the preferred git client", *gitClient)
	}
	return nil
}

// =============================================================================
// status, type
// =============================================================================

// statusCommand creates the status command.
func (c *CLI) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show what the directory holds and how lpm is set up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := c.newEnv()
			if err != nil {
				return err
			}
			s := e.runner.Status()

			printKeyValue("Directory", e.root)
			printKeyValue("Role", renderRole(s.Role))
			if !s.Initialized {
				printKeyValue("Status", StyleWarning.Render("not initialized for use with lpm"))
				printNextStep("Initialize it with", appName+" init")
				return nil
			}
			printKeyValue("Status", StyleSuccess.Render(statusText(s.Role)))
			printKeyValue("Registry", registryText(e))
			if s.Config.GitClient != nil && *s.Config.GitClient != "" {
				printKeyValue("Git client", *s.Config.GitClient)
			}
			if len(s.Configs) > 0 {
				fmt.Println(configTable(s))
			}
			return nil
		},
	}
}

// statusText describes an initialized directory of role r.
func statusText(r deps.Role) string {
	switch r {
	case deps.Project:
		return "initialized with Automation Studio project"
	case deps.Library:
		return "initialized with local library"
	case deps.Program, deps.Package:
		return "initialized with local program"
	}
	return "initialized as stand-alone package manager"
}

func registryText(e *env) string {
	if e.cfg.Token() == "" {
		return "npm (" + e.cfg.TokenEnv + " not set)"
	}
	return e.cfg.Registry
}

// configTable renders the build configurations and whether each one is
// deployed to.
func configTable(s pipeline.Status) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	rows := make([][]string, 0, len(s.Configs))
	for _, name := range s.Configs {
		deployed := ""
		for _, d := range s.Config.DeploymentConfigs {
			if strings.EqualFold(d, name) {
				deployed = iconSuccess
			}
		}
		rows = append(rows, []string{name, deployed})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Configuration", "Deploy").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 1 {
				return StyleSuccess
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

// typeCommand creates the type command.
func (c *CLI) typeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "type [path|package]...",
		Short: "Print the role of directories or installed packages",
		Long: `Print the role of directories or installed packages: project, hmi-project,
program, package, library or undefined.

Arguments naming an existing directory are classified in place; others are
looked up as packages in node_modules or the library folder.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := c.newEnv()
			if err != nil {
				return err
			}
			if len(args) == 0 {
				args = []string{syncer.Root}
			}
			for _, arg := range args {
				role, err := e.runner.Type(arg)
				if err != nil {
					return err
				}
				if len(args) == 1 {
					fmt.Println(role)
					continue
				}
				printKeyValue(arg, renderRole(role))
			}
			return nil
		},
	}
}

// =============================================================================
// git
// =============================================================================

// gitCommand creates the git command.
func (c *CLI) gitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "git <package>...",
		Short: "Open source libraries in the configured git client",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := c.newEnv()
			if err != nil {
				return err
			}
			cfg := manifest.ReadConfig(e.tree.FS(), deps.ManifestFile)
			client := ""
			if cfg.GitClient != nil {
				client = *cfg.GitClient
			}
			refs, err := deps.ParseReferences(args)
			if err != nil {
				return err
			}
			g := git.New(e.cfg.Git, e.cfg.GitHost, c.Logger)
			for _, ref := range refs {
				dir := deps.SourceDir(ref)
				if !e.tree.IsLibrary(dir) {
					return lpmerrors.New(lpmerrors.ErrCodeNotFound, "%s is not installed as source, run lpm install --source %s", ref.FullName(), ref.BaseName())
				}
				if err := g.OpenClient(client, filepath.Join(e.root, filepath.FromSlash(dir))); err != nil {
					return err
				}
				printSuccess("Opened %s in %s", ref.FullName(), client)
			}
			return nil
		},
	}
}
