// Package config loads taskflow settings from defaults, TOML files and the
// environment. Command-line flags are applied last by the caller.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Defaults.
const (
	DefaultAPIURL   = "http://localhost:8000/api"
	DefaultLogLevel = "warn"
	DefaultTheme    = "classic"

	ProjectFileName = "taskflow.toml"
	userDirName     = ".taskflow"
	userFileName    = "config.toml"
)

// Config holds every setting the binary reads.
type Config struct {
	APIURL   string `toml:"api_url"`
	LogLevel string `toml:"log_level"`
	LogFile  string `toml:"log_file"`
	Theme    string `toml:"theme"`
	Group    bool   `toml:"group"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		APIURL:   DefaultAPIURL,
		LogLevel: DefaultLogLevel,
		Theme:    DefaultTheme,
	}
}

// Load applies, in order: defaults, the user file (~/.taskflow/config.toml),
// the project file (./taskflow.toml) or explicit, then TASKFLOW_* environment
// variables. A non-empty explicit path replaces the project file and must
// exist.
func Load(explicit string) (*Config, error) {
	cfg := Default()

	if p := userConfigFile(); p != "" {
		if err := loadFile(cfg, p); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", p, err)
		}
	}

	if explicit != "" {
		if err := loadFile(cfg, explicit); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", explicit, err)
		}
	} else if _, err := os.Stat(ProjectFileName); err == nil {
		if err := loadFile(cfg, ProjectFileName); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", ProjectFileName, err)
		}
	}

	loadFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail late.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("api_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api_url: scheme must be http or https, got %q", c.APIURL)
	}
	if u.Host == "" {
		return errors.New("api_url: missing host")
	}
	return nil
}

func loadFile(cfg *Config, path string) error {
	_, err := toml.DecodeFile(path, cfg)
	return err
}

func loadFromEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("TASKFLOW_API_URL")); v != "" {
		cfg.APIURL = v
	}
	if v := strings.TrimSpace(os.Getenv("TASKFLOW_LOG_LEVEL")); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv("TASKFLOW_LOG_FILE")); v != "" {
		cfg.LogFile = v
	}
	if v := strings.TrimSpace(os.Getenv("TASKFLOW_THEME")); v != "" {
		cfg.Theme = v
	}
}

// Dir is ~/.taskflow, where the user config and credentials live.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, userDirName), nil
}

func userConfigFile() string {
	dir, err := Dir()
	if err != nil {
		return ""
	}
	p := filepath.Join(dir, userFileName)
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}
