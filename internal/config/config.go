package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultFileName is the standard configuration file name.
const DefaultFileName = "stockchecker.toml"

// xdgSubdir is the subdirectory under XDG_CONFIG_HOME.
const xdgSubdir = "stockchecker"

// DefaultTimeout bounds every API call when timeout_seconds is unset.
const DefaultTimeout = 15 * time.Second

// Config holds the client configuration.
//
// APIURL may legitimately be empty after loading: the API client reports a
// configuration error on first use rather than falling back to a hardcoded
// host.
type Config struct {
	APIURL         string `toml:"api_url"`
	Token          string `toml:"token"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Timeout returns the configured request timeout, or DefaultTimeout.
func (c *Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return DefaultTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Load reads configuration in order of precedence:
//  1. the explicit path, if provided (missing file is then an error)
//  2. $XDG_CONFIG_HOME/stockchecker/stockchecker.toml
//  3. ./stockchecker.toml
//
// A missing config file is not an error when no explicit path was given;
// environment variables may supply everything. STOCKCHECKER_API_URL,
// STOCKCHECKER_TOKEN and STOCKCHECKER_TIMEOUT_SECONDS override file values.
func Load(explicitPath string) (*Config, error) {
	cfg := &Config{}

	if explicitPath != "" {
		if err := loadFile(explicitPath, cfg); err != nil {
			return nil, err
		}
	} else {
		for _, path := range []string{xdgPath(), filepath.Join(".", DefaultFileName)} {
			if path == "" || !fileExists(path) {
				continue
			}
			if err := loadFile(path, cfg); err != nil {
				return nil, err
			}
			break
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("STOCKCHECKER_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv("STOCKCHECKER_TOKEN"); v != "" {
		cfg.Token = v
	}
	if v := os.Getenv("STOCKCHECKER_TIMEOUT_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			cfg.TimeoutSeconds = secs
		}
	}
}

func xdgPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, xdgSubdir, DefaultFileName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", xdgSubdir, DefaultFileName)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
