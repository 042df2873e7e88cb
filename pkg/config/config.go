// Package config handles loading and saving crew configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/crew/config.yaml
//   - Data:    ~/.local/share/crew/ (org data files, chart exports)
//   - State:   ~/.local/state/crew/
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// UIConfig holds UI preference settings.
type UIConfig struct {
	DefaultView string `yaml:"default_view,omitempty"` // pool, list, cards, people
	Compact     bool   `yaml:"compact,omitempty"`
}

// Config is the top-level configuration for crew.
type Config struct {
	// DataPath points at the org data source, either a SQLite database
	// or a JSON snapshot. Relative paths and ~ are resolved at load time.
	DataPath string `yaml:"data_path,omitempty"`
	// StartURL is the app URL opened on launch when none is given on the
	// command line.
	StartURL string `yaml:"start_url,omitempty"`
	// DefaultProject preselects a project in the member area.
	DefaultProject int      `yaml:"default_project,omitempty"`
	UI             UIConfig `yaml:"ui,omitempty"`
	// ExportDir receives metrics chart exports. Defaults to the data dir.
	ExportDir string `yaml:"export_dir,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		StartURL: "/app",
		UI: UIConfig{
			DefaultView: "pool",
		},
	}
}

// ConfigDir returns the XDG config directory for crew.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "crew")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "crew")
}

// DataDir returns the XDG data directory for crew.
func DataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "crew")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", "crew")
}

// StateDir returns the XDG state directory for crew.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "crew")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "crew")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	cfg.DataPath = expandHome(cfg.DataPath)
	cfg.ExportDir = expandHome(cfg.ExportDir)
	if cfg.StartURL == "" {
		cfg.StartURL = "/app"
	}

	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
