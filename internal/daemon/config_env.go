package daemon

import "os"

// ApplyEnvConfig applies configuration from environment variables
// (JITTERSEED_*). It respects flags that have been explicitly set (changed
// map). Returns an error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	if err := s.setDuration("interval", os.Getenv("JITTERSEED_SEED_INTERVAL"), &cfg.SeedInterval); err != nil {
		return err
	}
	if err := s.setIntFromString("sources", os.Getenv("JITTERSEED_SOURCES"), &cfg.Sources); err != nil {
		return err
	}
	s.setBoolFromString("oneshot", os.Getenv("JITTERSEED_ONESHOT"), &cfg.Oneshot)
	s.setBoolFromString("force-reseed", os.Getenv("JITTERSEED_FORCE_RESEED"), &cfg.ForceReseed)

	return nil
}
