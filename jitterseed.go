// Package jitterseed provides a daemon that feeds the Linux kernel CRNG
// with CPU timing jitter entropy.
//
// Example usage:
//
//	cfg := jitterseed.DefaultConfig()
//	cfg.Oneshot = true
//	if err := jitterseed.Run(context.Background(), cfg); err != nil {
//	    log.Fatal(err)
//	}
//
// Injecting entropy into the kernel requires superuser privilege.
package jitterseed

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/croftsec/jitterseed/internal/daemon"
)

// Config holds the configuration for the entropy feeding daemon.
// Use DefaultConfig() to get a Config with sensible defaults.
type Config = daemon.Config

// Run starts the daemon with the given configuration. It blocks until the
// context is cancelled, the one-shot iteration completes, or a fault
// occurs. Faults are never masked: any failure of the entropy sources or
// the kernel channel stops the daemon.
func Run(ctx context.Context, cfg Config) error {
	return daemon.Run(ctx, cfg)
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return daemon.DefaultConfig()
}

// Logger returns the package-level zerolog logger used by the daemon.
func Logger() zerolog.Logger {
	return daemon.Logger()
}
