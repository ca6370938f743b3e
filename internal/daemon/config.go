package daemon

import (
	"fmt"
	"strconv"
	"time"
)

// Config holds the daemon configuration.
type Config struct {
	// Oneshot runs a single mixing iteration and exits.
	Oneshot bool

	// SeedInterval is the sleep between mixing iterations.
	SeedInterval time.Duration

	// ForceReseed triggers a kernel CRNG reseed after every injection.
	ForceReseed bool

	// Sources is the number of independent jitter collectors to mix.
	Sources int

	// ConfigFile, when set, is watched for changes to the reloadable
	// settings (seed interval, force-reseed).
	ConfigFile string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		SeedInterval: 10 * time.Second,
		Sources:      1,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if !c.Oneshot && c.SeedInterval <= 0 {
		return fmt.Errorf("seed interval must be positive")
	}
	if c.Sources < 1 {
		return fmt.Errorf("at least one entropy source is required")
	}
	return nil
}

// configSetter helps apply configuration values while respecting flag
// precedence. It only applies values if the corresponding flag hasn't been
// explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setDuration parses and sets a duration from string if valid and flag not
// changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setIntFromString parses a string to int and sets the destination if
// valid. Used for environment variables.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false. Used for environment
// variables.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
