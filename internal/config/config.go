// Package config loads server configuration from a YAML file with
// sane defaults for every field.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full server configuration.
type Config struct {
	// ListenAddr is the HTTP bind address.
	ListenAddr string `yaml:"listen_addr"`
	// DBPath is the SQLite event log location. ":memory:" keeps the
	// log in process memory.
	DBPath string `yaml:"db_path"`
	// ActiveUsersID is the fixed id of the connected-users roster
	// partition. Every process sharing a log must agree on it.
	ActiveUsersID string `yaml:"active_users_id"`
	// SeedFile optionally points at a YAML seed document applied at
	// startup.
	SeedFile string `yaml:"seed_file"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		ListenAddr:    ":8080",
		DBPath:        "askwave.db",
		ActiveUsersID: "active-users-default",
	}
}

// Load reads a YAML config file over the defaults. An empty path
// returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr must not be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("db_path must not be empty")
	}
	if c.ActiveUsersID == "" {
		return fmt.Errorf("active_users_id must not be empty")
	}
	return nil
}
