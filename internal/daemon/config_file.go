package daemon

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// fileConfig mirrors Config but uses strings for durations to make TOML
// friendly.
type fileConfig struct {
	Oneshot      *bool  `toml:"oneshot"`
	SeedInterval string `toml:"seed_interval"`
	ForceReseed  *bool  `toml:"force_reseed"`
	Sources      int    `toml:"sources"`
}

// loadFileConfig reads and parses a TOML config file.
func loadFileConfig(path string) (fileConfig, error) {
	var fc fileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// defaultConfigPath returns the default configuration file path,
// ~/.jitterseed/config.toml, if the user home directory is accessible.
func defaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".jitterseed", "config.toml")
	}
	return ""
}

// applyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func applyFileConfig(cfg *Config, fc fileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	if err := s.setDuration("interval", fc.SeedInterval, &cfg.SeedInterval); err != nil {
		return err
	}
	s.setInt("sources", fc.Sources, &cfg.Sources)
	s.setBool("oneshot", fc.Oneshot, &cfg.Oneshot)
	s.setBool("force-reseed", fc.ForceReseed, &cfg.ForceReseed)

	return nil
}

// fileExists checks if a file exists at the given path.
func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

// Exported wrappers for use from the main package.

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (fileConfig, error) {
	return loadFileConfig(path)
}

// DefaultConfigPath returns the default configuration file path.
func DefaultConfigPath() string {
	return defaultConfigPath()
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc fileConfig, changed map[string]bool) error {
	return applyFileConfig(cfg, fc, changed)
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	return fileExists(p)
}
