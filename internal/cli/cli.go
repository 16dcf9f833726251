package cli

import (
	"context"
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/mandelsoft/vfs/pkg/osfs"
	"github.com/spf13/cobra"

	"github.com/loupeteam/lpm/pkg/buildinfo"
	"github.com/loupeteam/lpm/pkg/config"
	"github.com/loupeteam/lpm/pkg/deps"
	"github.com/loupeteam/lpm/pkg/git"
	"github.com/loupeteam/lpm/pkg/httputil"
	"github.com/loupeteam/lpm/pkg/npm"
	"github.com/loupeteam/lpm/pkg/pipeline"
	"github.com/loupeteam/lpm/pkg/project"
	"github.com/loupeteam/lpm/pkg/registry"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "lpm"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	dir        string // project directory
	configPath string // overrides config.Path()
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), dir: "."}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
//
// Arguments that name no subcommand are handed to npm unchanged, so
// "lpm outdated" behaves like "npm outdated".
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "lpm [command]",
		Short: "lpm manages Loupe packages in Automation Studio projects",
		Long: `lpm is a lightweight wrapper around npm for Automation Studio dependency management.

Packages are fetched with npm, then placed into the project's logical tree and
registered in the software configuration of the selected build configurations.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		Args:         cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return c.runNPM(cmd.Context(), args)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.dir, "dir", "C", c.dir, "project directory")
	root.PersistentFlags().StringVar(&c.configPath, "config-file", "", "configuration file (default: $"+config.EnvPath+" or the user config directory)")

	root.AddCommand(c.installCommand())
	root.AddCommand(c.uninstallCommand())
	root.AddCommand(c.syncCommand())
	root.AddCommand(c.deployCommand())
	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.initCommand())
	root.AddCommand(c.configureCommand())
	root.AddCommand(c.statusCommand())
	root.AddCommand(c.typeCommand())
	root.AddCommand(c.gitCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.npmCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// env is everything a command needs to work on the project directory.
type env struct {
	cfg    *config.Config
	root   string
	tree   *project.Tree
	npm    *npm.Client
	runner *pipeline.Runner
}

// loadConfig reads the user configuration.
func (c *CLI) loadConfig() (*config.Config, error) {
	p := c.configFile()
	c.Logger.Debug("loading configuration", "path", p)
	return config.Load(osfs.New(), p)
}

// newEnv opens the project directory and wires the runner.
func (c *CLI) newEnv() (*env, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	root, err := filepath.Abs(c.dir)
	if err != nil {
		return nil, err
	}
	tree, err := project.Open(root)
	if err != nil {
		return nil, err
	}

	npmClient := npm.New(cfg.NPM, root, c.Logger)
	gitClient := git.New(cfg.Git, cfg.GitHost, c.Logger)
	runner := pipeline.NewRunner(tree, root, npmClient, gitClient, c.newRegistry(cfg, npmClient), c.Logger)
	runner.Options.MaxDepth = cfg.MaxDepth

	return &env{cfg: cfg, root: root, tree: tree, npm: npmClient, runner: runner}, nil
}

// newRegistry returns the registry lookup: the HTTP registry when a token
// is available, falling back to npm.
func (c *CLI) newRegistry(cfg *config.Config, fallback deps.Registry) deps.Registry {
	token := cfg.Token()
	if token == "" {
		c.Logger.Debug("no registry token, using npm view", "env", cfg.TokenEnv)
		return fallback
	}
	cache, err := newCache(cfg)
	if err != nil {
		c.Logger.Warn("registry cache disabled", "error", err)
		cache = nil
	}
	return &registry.Fallback{
		Primary:   registry.NewClient(cfg.Registry, token, cache, c.Logger),
		Secondary: fallback,
		Logger:    c.Logger,
	}
}

func newCache(cfg *config.Config) (*httputil.Cache, error) {
	return httputil.NewCache(osfs.New(), cfg.CacheDir, cfg.CacheTTL.Duration)
}

// runNPM passes args through to npm in the project directory.
func (c *CLI) runNPM(ctx context.Context, args []string) error {
	e, err := c.newEnv()
	if err != nil {
		return err
	}
	return e.npm.Run(ctx, args...)
}
