package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/wardley/pkg/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if cfg.Canvas.Width != 500 || cfg.Canvas.Height != 600 {
		t.Errorf("Canvas = %+v", cfg.Canvas)
	}
	if cfg.Cache.Backend != BackendFile {
		t.Errorf("Backend = %q", cfg.Cache.Backend)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[canvas]
width = 800

[cache]
backend = "redis"
ttl = "90m"
redis_addr = "cache:6379"
redis_db = 2
prefix = "team:"

[server]
addr = "127.0.0.1:9000"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Canvas.Width != 800 {
		t.Errorf("Width = %v", cfg.Canvas.Width)
	}
	if cfg.Canvas.Height != 600 {
		t.Errorf("Height should keep its default, got %v", cfg.Canvas.Height)
	}
	if cfg.Cache.Backend != BackendRedis || cfg.Cache.RedisAddr != "cache:6379" || cfg.Cache.RedisDB != 2 || cfg.Cache.Prefix != "team:" {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Cache.TTL.Duration != 90*time.Minute {
		t.Errorf("TTL = %v", cfg.Cache.TTL)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code errors.Code
	}{
		{"syntax", "[canvas", errors.ErrCodeInvalidInput},
		{"unknown key", "[canvas]\ndepth = 3", errors.ErrCodeInvalidInput},
		{"bad ttl", "[cache]\nttl = \"soon\"", errors.ErrCodeInvalidInput},
		{"negative width", "[canvas]\nwidth = -5", errors.ErrCodeInvalidCanvas},
		{"bad backend", "[cache]\nbackend = \"memcached\"", errors.ErrCodeInvalidInput},
		{"redis without addr", "[cache]\nbackend = \"redis\"\nredis_addr = \"\"", errors.ErrCodeInvalidInput},
		{"empty server addr", "[server]\naddr = \"\"", errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %s, want %s (%v)", got, tt.code, err)
			}
		})
	}
}

func TestLoadDefault(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	cfg, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault without file: %v", err)
	}
	if cfg != Default() {
		t.Errorf("missing file should give defaults, got %+v", cfg)
	}

	path, err := Path()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, AppName, "config.toml"); path != want {
		t.Errorf("Path() = %q, want %q", path, want)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("[server]\naddr = \":7070\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault: %v", err)
	}
	if cfg.Server.Addr != ":7070" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
}

func TestString(t *testing.T) {
	cfg := Default()
	cfg.Cache.TTL = Duration{time.Hour}
	out := cfg.String()
	for _, want := range []string{"[canvas]", "width = 500.0", `ttl = "1h0m0s"`, `addr = ":8080"`} {
		if !strings.Contains(out, want) {
			t.Errorf("String() missing %q:\n%s", want, out)
		}
	}
}
