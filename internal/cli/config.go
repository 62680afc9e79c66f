package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/wardley/pkg/config"
)

// configCommand creates the config command.
func (c *CLI) configCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the effective configuration as TOML.

The file is read from --config or $XDG_CONFIG_HOME/wardley/config.toml.
Every key is optional; missing keys keep their defaults.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.configPath
			if path == "" {
				p, err := config.Path()
				if err != nil {
					return err
				}
				path = p
			}
			fmt.Fprintln(stdout, StyleDim.Render("# "+path))
			fmt.Fprint(stdout, c.Config.String())
			return nil
		},
	}
}
