// Package config resolves CLI configuration in priority order:
// defaults -> config file -> environment. The config file is optional; a
// fresh install works with defaults alone.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultBaseURL points at the hosted platform API.
const DefaultBaseURL = "https://platform.shauryatechnosoft.com/notification-api/api/v1/o"

// Config is the resolved runtime configuration for the CLI.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// configFile mirrors the YAML schema of config.yaml. Separate from Config so
// resolution stays in one place.
type configFile struct {
	API struct {
		BaseURL string `yaml:"base_url"`
		Timeout string `yaml:"timeout"` // Go duration string, e.g. "30s"
	} `yaml:"api"`
}

// Path returns the default config file location.
func Path() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "notifyctl", "config.yaml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "notifyctl", "config.yaml")
}

// Load resolves the configuration. A missing file is not an error; a present
// but unparsable one is.
func Load(path string) (Config, error) {
	cfg := Config{
		BaseURL: DefaultBaseURL,
		Timeout: 30 * time.Second,
	}

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			var cf configFile
			if err := yaml.Unmarshal(b, &cf); err != nil {
				return Config{}, fmt.Errorf("parse %s: %w", path, err)
			}
			if cf.API.BaseURL != "" {
				cfg.BaseURL = cf.API.BaseURL
			}
			if cf.API.Timeout != "" {
				d, err := time.ParseDuration(cf.API.Timeout)
				if err != nil {
					return Config{}, fmt.Errorf("%s: timeout: %w", path, err)
				}
				cfg.Timeout = d
			}
		case os.IsNotExist(err):
			// fine, defaults apply
		default:
			return Config{}, fmt.Errorf("read %s: %w", path, err)
		}
	}

	if v := os.Getenv("NOTIFY_API_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("NOTIFY_API_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("NOTIFY_API_TIMEOUT: %w", err)
		}
		cfg.Timeout = d
	}
	return cfg, nil
}
