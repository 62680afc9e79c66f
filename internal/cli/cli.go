package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/wardley/pkg/buildinfo"
	"github.com/matzehuels/wardley/pkg/cache"
	"github.com/matzehuels/wardley/pkg/config"
	"github.com/matzehuels/wardley/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = config.AppName

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

	// Config is loaded before any subcommand runs. Flags override it.
	Config     config.Config
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Wardley compiles Wardley Map notation into positioned maps",
		Long: `Wardley compiles the Wardley Map text notation into a validated map model,
places every component on a canvas from its evolution and visibility, and
merges the manual drag offsets recorded in a meta overlay.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/wardley/config.toml)")

	// Register all subcommands
	root.AddCommand(c.compileCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.moveCommand())
	root.AddCommand(c.positionCommand())
	root.AddCommand(c.metaCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads --config, or the default location when the flag is
// unset.
func (c *CLI) loadConfig() error {
	var (
		cfg config.Config
		err error
	)
	if c.configPath != "" {
		cfg, err = config.Load(c.configPath)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return err
	}
	c.Config = cfg
	c.Logger.Debug("loaded config", "backend", cfg.Cache.Backend, "canvas", [2]float64{cfg.Canvas.Width, cfg.Canvas.Height})
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if c.Config.Cache.Prefix != "" {
		keyer = cache.NewScopedKeyer(nil, c.Config.Cache.Prefix)
	}
	r := pipeline.NewRunner(store, keyer, c.Logger)
	r.TTL = c.Config.Cache.TTL.Duration
	return r, nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Config.Cache.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr: c.Config.Cache.RedisAddr,
			DB:   c.Config.Cache.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		return rc, nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return fc, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/wardley/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// canvasFlags holds --width and --height. Zero means the configured value.
type canvasFlags struct {
	width, height float64
}

func (f *canvasFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.width, "width", 0, "canvas width in pixels (default from config, 500)")
	cmd.Flags().Float64Var(&f.height, "height", 0, "canvas height in pixels (default from config, 600)")
}

// layoutOptions builds pipeline options from the flags and the configured
// canvas.
func (c *CLI) layoutOptions(f canvasFlags) pipeline.Options {
	opts := pipeline.Options{
		Width:  f.width,
		Height: f.height,
		Logger: c.Logger,
	}
	if opts.Width == 0 {
		opts.Width = c.Config.Canvas.Width
	}
	if opts.Height == 0 {
		opts.Height = c.Config.Canvas.Height
	}
	return opts
}
