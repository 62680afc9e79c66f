package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/wardley/pkg/cache"
	"github.com/matzehuels/wardley/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the compiled map and layout cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached map and layout",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.newCache(ctx, false)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer store.Close()

			clearer, ok := store.(cache.Clearer)
			if !ok {
				printInfo("Cache is disabled")
				return nil
			}
			count, err := clearer.Clear(ctx)
			if err != nil {
				return err
			}
			if count == 0 {
				printInfo("Cache is empty")
				return nil
			}

			printSuccess("Cleared %d cached entries", count)
			printDetail("Backend: %s", c.cacheLocation())
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache location",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(stdout, c.cacheLocation())
			return nil
		},
	}
}

// cacheLocation describes where the configured backend keeps entries.
func (c *CLI) cacheLocation() string {
	switch c.Config.Cache.Backend {
	case config.BackendRedis:
		return fmt.Sprintf("redis://%s/%d", c.Config.Cache.RedisAddr, c.Config.Cache.RedisDB)
	case config.BackendNone:
		return "none"
	}
	dir, err := cacheDir()
	if err != nil {
		return "none"
	}
	return dir
}
