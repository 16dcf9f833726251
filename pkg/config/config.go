// Package config loads the user configuration of lpm.
//
// The configuration is a TOML file, by default
// $XDG_CONFIG_HOME/lpm/config.toml. LPM_CONFIG names another file. A
// missing file is not an error; every field has a default.
//
//	registry  = "https://npm.pkg.github.com"
//	token_env = "LPM_TOKEN"
//	npm       = "npm"
//	git       = "git"
//	git_host  = "https://github.com/loupeteam"
//	cache_ttl = "24h"
//	max_depth = 50
package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/mandelsoft/vfs/pkg/vfs"

	"github.com/loupeteam/lpm/pkg/deps"
	lpmerrors "github.com/loupeteam/lpm/pkg/errors"
	"github.com/loupeteam/lpm/pkg/git"
	"github.com/loupeteam/lpm/pkg/npm"
	"github.com/loupeteam/lpm/pkg/registry"
)

// EnvPath overrides the configuration file location.
const EnvPath = "LPM_CONFIG"

const (
	appName         = "lpm"
	fileName        = "config.toml"
	defaultTokenEnv = "LPM_TOKEN"
	defaultCacheTTL = 24 * time.Hour
)

// Duration is a time.Duration written as a string such as "90m".
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
	return []byte(d.String()), nil
}

// Config is the user configuration.
type Config struct {
	Registry string   `toml:"registry"`
	TokenEnv string   `toml:"token_env"`
	NPM      string   `toml:"npm"`
	Git      string   `toml:"git"`
	GitHost  string   `toml:"git_host"`
	CacheDir string   `toml:"cache_dir"`
	CacheTTL Duration `toml:"cache_ttl"`
	MaxDepth int      `toml:"max_depth"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Registry: registry.DefaultURL,
		TokenEnv: defaultTokenEnv,
		NPM:      npm.DefaultBin,
		Git:      git.DefaultBin,
		GitHost:  git.DefaultHost,
		CacheDir: defaultCacheDir(),
		CacheTTL: Duration{defaultCacheTTL},
		MaxDepth: deps.DefaultMaxDepth,
	}
}

// Path returns the configuration file location.
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, appName, fileName)
}

// Load reads the configuration at path on fs. Fields the file leaves out
// keep their defaults.
func Load(fs vfs.FileSystem, path string) (*Config, error) {
	cfg := Default()
	data, err := vfs.ReadFile(fs, path)
	if errors.Is(err, vfs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, lpmerrors.Wrap(lpmerrors.ErrCodeInvalidPath, err, "read %s", path)
	}
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, lpmerrors.Wrap(lpmerrors.ErrCodeInvalidFormat, err, "parse %s", path)
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		return nil, lpmerrors.New(lpmerrors.ErrCodeInvalidFormat, "%s: unknown key %s", path, keys[0])
	}
	if err := lpmerrors.ValidateURL(cfg.Registry); err != nil {
		return nil, lpmerrors.Wrap(lpmerrors.ErrCodeInvalidInput, err, "%s: registry", path)
	}
	if cfg.MaxDepth < 0 {
		return nil, lpmerrors.New(lpmerrors.ErrCodeInvalidInput, "%s: max_depth must not be negative", path)
	}
	return cfg, nil
}

// Token returns the registry token from the environment variable the
// configuration names, or "".
func (c *Config) Token() string {
	if c.TokenEnv == "" {
		return ""
	}
	return os.Getenv(c.TokenEnv)
}

// Encode writes c as TOML.
func (c *Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), appName)
	}
	return filepath.Join(dir, appName)
}
