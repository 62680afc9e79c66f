// Package config loads the wardley configuration file.
//
// The file is TOML and lives at $XDG_CONFIG_HOME/wardley/config.toml
// (~/.config/wardley/config.toml when XDG_CONFIG_HOME is unset):
//
//	[canvas]
//	width = 500
//	height = 600
//
//	[cache]
//	backend = "redis"        # file, redis or none
//	ttl = "24h"
//	redis_addr = "localhost:6379"
//	redis_db = 0
//	prefix = "wardley:staging:" # scopes keys in a shared cache
//
//	[server]
//	addr = ":8080"
//
// Every key is optional. Command-line flags override file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/wardley/pkg/errors"
	"github.com/matzehuels/wardley/pkg/pipeline"
)

// AppName names the configuration and cache directories.
const AppName = "wardley"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config is the decoded configuration file.
type Config struct {
	Canvas Canvas `toml:"canvas"`
	Cache  Cache  `toml:"cache"`
	Server Server `toml:"server"`
}

// Canvas sets the default drawing size.
type Canvas struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

// Cache selects and tunes the cache backend.
type Cache struct {
	Backend   string   `toml:"backend"`
	TTL       Duration `toml:"ttl"`
	RedisAddr string   `toml:"redis_addr"`
	RedisDB   int      `toml:"redis_db"`
	Prefix    string   `toml:"prefix"`
}

// Server configures `wardley serve`.
type Server struct {
	Addr string `toml:"addr"`
}

// Duration decodes TOML strings such as "90s" or "24h".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Canvas: Canvas{Width: pipeline.DefaultWidth, Height: pipeline.DefaultHeight},
		Cache: Cache{
			Backend:   BackendFile,
			RedisAddr: "localhost:6379",
		},
		Server: Server{Addr: ":8080"},
	}
}

// Load reads the file at path on top of the defaults and validates the
// result.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, errors.New(errors.ErrCodeInvalidInput, "config %s: unknown key %q", path, undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadDefault loads the file at Path, falling back to Default when the file
// does not exist.
func LoadDefault() (Config, error) {
	path, err := Path()
	if err != nil {
		return Default(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// Path returns the location of the configuration file.
func Path() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// Validate checks the configuration values.
func (c Config) Validate() error {
	if err := errors.ValidateCanvas(c.Canvas.Width, c.Canvas.Height); err != nil {
		return err
	}
	switch c.Cache.Backend {
	case BackendFile, BackendNone:
	case BackendRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidInput, "cache.redis_addr is required for the redis backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "invalid cache.backend %q (must be file, redis or none)", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cache.ttl must not be negative")
	}
	if c.Server.Addr == "" {
		return errors.New(errors.ErrCodeInvalidInput, "server.addr must not be empty")
	}
	return nil
}

// String renders the configuration as TOML.
func (c Config) String() string {
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(c); err != nil {
		return fmt.Sprintf("# encode config: %v", err)
	}
	return b.String()
}
