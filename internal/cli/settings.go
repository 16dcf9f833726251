package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/loupeteam/lpm/pkg/config"
)

// configCommand creates the user configuration command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the user configuration",
		Long: `Show the user configuration. The file is TOML and every key is optional:

  registry  = "https://npm.pkg.github.com"
  token_env = "LPM_TOKEN"
  npm       = "npm"
  git       = "git"
  git_host  = "https://github.com/loupeteam"
  cache_dir = "~/.cache/lpm"
  cache_ttl = "24h"
  max_depth = 50`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(c.configFile())
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			data, err := cfg.Encode()
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(data)
			return err
		},
	})

	return cmd
}

// configFile returns the configuration file in use.
func (c *CLI) configFile() string {
	if c.configPath != "" {
		return c.configPath
	}
	return config.Path()
}
