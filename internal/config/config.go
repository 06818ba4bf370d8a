package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/notexe/remind/internal/reminder"
)

// EnvPrefix is the prefix of environment overrides, e.g. REMIND_STORE_PATH.
const EnvPrefix = "REMIND_"

type Config struct {
	Store  StoreConfig  `koanf:"store"`
	Notify NotifyConfig `koanf:"notify"`
	Sound  SoundConfig  `koanf:"sound"`
	Log    LogConfig    `koanf:"log"`
	UI     UIConfig     `koanf:"ui"`
}

type StoreConfig struct {
	Backend string `koanf:"backend"` // json or sqlite
	Path    string `koanf:"path"`
}

type NotifyConfig struct {
	Command string `koanf:"command"`
	AppName string `koanf:"app_name"`
	Title   string `koanf:"title"`
}

type SoundConfig struct {
	Player string `koanf:"player"`
	File   string `koanf:"file"`
}

type LogConfig struct {
	File string `koanf:"file"` // Worker log; empty discards
}

type UIConfig struct {
	ColoredOutput bool `koanf:"colored_output"`
}

// Load layers defaults, the optional YAML file at configPath and REMIND_*
// environment variables, in that order.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(NewDefaultProvider(), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		configPath = ExpandPath(configPath)

		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
		}
	}

	// REMIND_STORE_PATH -> store.path
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.Replace(key, "_", ".", 1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Store.Path = ExpandPath(cfg.Store.Path)
	cfg.Sound.File = ExpandPath(cfg.Sound.File)
	cfg.Log.File = ExpandPath(cfg.Log.File)

	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Store.Backend {
	case reminder.BackendJSON, reminder.BackendSQLite:
	default:
		return fmt.Errorf("unknown store backend: %s (supported: %s, %s)",
			c.Store.Backend, reminder.BackendJSON, reminder.BackendSQLite)
	}

	if c.Store.Path == "" {
		return fmt.Errorf("store path is required")
	}

	if c.Notify.Command == "" {
		return fmt.Errorf("notify command is required")
	}

	return nil
}

// StoreLocation returns where reminders are kept.
func (c *Config) StoreLocation() reminder.StoreLocation {
	return reminder.StoreLocation{
		Backend: c.Store.Backend,
		Path:    c.Store.Path,
	}
}

// ExpandPath replaces a leading "~/" with the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}

	return path
}
