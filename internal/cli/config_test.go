package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/stackweight/pkg/errors"
)

// isolateConfig points every config and cache lookup at temp directories and
// clears the STACKWEIGHT_* variables a developer might have set.
func isolateConfig(t *testing.T) (configHome string) {
	t.Helper()
	configHome = t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	for _, name := range []string{
		"POLICY", "ROOT", "FORMAT", "RETAIN", "EPSILON", "ADDR",
		"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "CACHE_DIR",
	} {
		t.Setenv(envPrefix+name, "")
	}
	return configHome
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigNone(t *testing.T) {
	isolateConfig(t)

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Path != "" || cfg.Policy != "" {
		t.Errorf("LoadConfig() = %+v, want zero config", cfg)
	}
}

func TestLoadConfigFile(t *testing.T) {
	isolateConfig(t)
	path := writeFile(t, filepath.Join(t.TempDir(), "sw.toml"), `
policy = "selfloop"
root = "optimism"
retain = 0.3

[server]
addr = ":9090"
timeout = "30s"
cache_size = 64

[redis]
addr = "redis://localhost:6379/2"
prefix = "sw:"

[cache]
disabled = true
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Path != path {
		t.Errorf("Path = %q, want %q", cfg.Path, path)
	}
	if cfg.Policy != "selfloop" || cfg.Root != "optimism" || cfg.Retain != 0.3 {
		t.Errorf("weight settings = %q/%q/%v", cfg.Policy, cfg.Root, cfg.Retain)
	}
	if cfg.Server.Addr != ":9090" || cfg.Server.Timeout != 30*time.Second || cfg.Server.CacheSize != 64 {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Redis.Addr != "redis://localhost:6379/2" || cfg.Redis.Prefix != "sw:" {
		t.Errorf("Redis = %+v", cfg.Redis)
	}
	if !cfg.Cache.Disabled {
		t.Error("Cache.Disabled = false, want true")
	}
}

func TestLoadConfigDiscovery(t *testing.T) {
	configHome := isolateConfig(t)
	path := writeFile(t, filepath.Join(configHome, appName, "config.toml"), `policy = "half"`)

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Path != path || cfg.Policy != "half" {
		t.Errorf("LoadConfig() = %+v, want policy half from %s", cfg, path)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	isolateConfig(t)
	path := writeFile(t, filepath.Join(t.TempDir(), "sw.toml"), `
policy = "half"
root = "optimism"
`)
	t.Setenv("STACKWEIGHT_POLICY", "c")
	t.Setenv("STACKWEIGHT_RETAIN", "0.4")
	t.Setenv("STACKWEIGHT_REDIS_ADDR", "cache:6379")
	t.Setenv("STACKWEIGHT_REDIS_DB", "3")
	t.Setenv("STACKWEIGHT_ADDR", ":7000")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Policy != "c" {
		t.Errorf("Policy = %q, want env value c", cfg.Policy)
	}
	if cfg.Root != "optimism" {
		t.Errorf("Root = %q, want file value optimism", cfg.Root)
	}
	if cfg.Retain != 0.4 || cfg.Redis.Addr != "cache:6379" || cfg.Redis.DB != 3 || cfg.Server.Addr != ":7000" {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	isolateConfig(t)
	dir := t.TempDir()

	tests := []struct {
		name  string
		setup func(t *testing.T) string
		code  errors.Code
	}{
		{
			name:  "missing explicit file",
			setup: func(t *testing.T) string { return filepath.Join(dir, "nope.toml") },
			code:  errors.ErrCodeFileNotFound,
		},
		{
			name:  "malformed toml",
			setup: func(t *testing.T) string { return writeFile(t, filepath.Join(dir, "bad.toml"), "policy = ") },
			code:  errors.ErrCodeConfiguration,
		},
		{
			name:  "unknown key",
			setup: func(t *testing.T) string { return writeFile(t, filepath.Join(dir, "typo.toml"), `polcy = "half"`) },
			code:  errors.ErrCodeConfiguration,
		},
		{
			name: "bad env number",
			setup: func(t *testing.T) string {
				t.Setenv("STACKWEIGHT_RETAIN", "lots")
				return ""
			},
			code: errors.ErrCodeConfiguration,
		},
		{
			name: "bad env integer",
			setup: func(t *testing.T) string {
				t.Setenv("STACKWEIGHT_REDIS_DB", "one")
				return ""
			},
			code: errors.ErrCodeConfiguration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(tt.setup(t))
			if !errors.Is(err, tt.code) {
				t.Errorf("LoadConfig() error = %v, want code %s", err, tt.code)
			}
		})
	}
}
