package cli

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/matzehuels/stackweight/pkg/errors"
)

// configFile is the project-local config file name.
const configFile = appName + ".toml"

// Config is the file and environment configuration. Command-line flags take
// precedence over it; zero values fall through to the built-in defaults.
//
//	policy = "selfloop"
//	root   = "ethereum"
//	retain = 0.2
//
//	[server]
//	addr    = ":8080"
//	timeout = "30s"
//
//	[redis]
//	addr = "localhost:6379"
type Config struct {
	Policy  string  `toml:"policy"`
	Root    string  `toml:"root"`
	Retain  float64 `toml:"retain"`
	Epsilon float64 `toml:"epsilon"`
	Format  string  `toml:"format"`

	Server ServerConfig `toml:"server"`
	Redis  RedisConfig  `toml:"redis"`
	Cache  CacheConfig  `toml:"cache"`

	// Path is the file the configuration was read from, if any.
	Path string `toml:"-"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Addr         string        `toml:"addr"`
	MaxBodyBytes int64         `toml:"max_body_bytes"`
	Timeout      time.Duration `toml:"timeout"`
	CacheSize    int           `toml:"cache_size"`
}

// RedisConfig selects a shared redis cache for the serve command.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

// CacheConfig configures the on-disk result cache.
type CacheConfig struct {
	Dir      string `toml:"dir"`
	Disabled bool   `toml:"disabled"`
}

// LoadConfig reads .env, the config file and the environment. An explicit
// path must exist; otherwise the first of ./stackweight.toml and the XDG
// config file that exists is used, and having neither is fine.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrap(errors.ErrCodeConfiguration, err, "load .env")
	}

	cfg := &Config{}
	if path == "" {
		path = findConfig()
	} else if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
	}
	if path != "" {
		if err := decodeConfigFile(path, cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func findConfig() string {
	candidates := []string{configFile}
	if dir, err := configDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "config.toml"))
	}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

func decodeConfigFile(path string, cfg *Config) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return errors.Wrap(errors.ErrCodeConfiguration, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.Configuration("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	cfg.Path = path
	return nil
}

// applyEnv overrides file values with STACKWEIGHT_* variables.
func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"POLICY":         &c.Policy,
		"ROOT":           &c.Root,
		"FORMAT":         &c.Format,
		"ADDR":           &c.Server.Addr,
		"REDIS_ADDR":     &c.Redis.Addr,
		"REDIS_PASSWORD": &c.Redis.Password,
		"CACHE_DIR":      &c.Cache.Dir,
	}
	for name, dst := range strs {
		if v, ok := os.LookupEnv(envPrefix + name); ok && v != "" {
			*dst = v
		}
	}

	floats := map[string]*float64{
		"RETAIN":  &c.Retain,
		"EPSILON": &c.Epsilon,
	}
	for name, dst := range floats {
		v, ok := os.LookupEnv(envPrefix + name)
		if !ok || v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.Configuration("%s%s=%q: not a number", envPrefix, name, v)
		}
		*dst = f
	}

	if v := os.Getenv(envPrefix + "REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return errors.Configuration("%sREDIS_DB=%q: not an integer", envPrefix, v)
		}
		c.Redis.DB = db
	}
	return nil
}
