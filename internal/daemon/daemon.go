// Package daemon implements the entropy feedback loop: it draws bytes from
// jitter entropy sources, mixes them with a carried hidden state through two
// domain-separated SHA3-512 computations, and injects the result into the
// kernel entropy pool.
package daemon

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/sha3"

	"github.com/croftsec/jitterseed/internal/jent"
	"github.com/croftsec/jitterseed/internal/procrand"
	"github.com/croftsec/jitterseed/internal/randdev"
)

// stateSize is the width of the hidden state, of each kernel injection, and
// of a SHA3-512 digest.
const stateSize = 64

// Domain separation tags for the two hash computations. Both computations
// ingest the same inputs; the distinct prefixes keep the published output
// cryptographically unrelated to the next hidden state.
const (
	tagState  = "STATE"
	tagOutput = "RAND0"
)

// EntropySource produces raw random bytes.
type EntropySource interface {
	FillBytes(p []byte) error
}

// KernelPool receives mixed entropy.
type KernelPool interface {
	InjectEntropy(p []byte, claimedBits uint32) error
	ForceReseed() error
}

// Run builds the configured jitter sources and the kernel channel, then
// drives the feedback loop until ctx is cancelled, the one-shot iteration
// completes, or a fault occurs. Every fault is fatal: this process sits on
// the kernel CRNG trust boundary, and stopping is safer than silently
// degrading the entropy feed.
func Run(ctx context.Context, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if id, err := procrand.New().BootID(); err == nil {
		logger.Info().Str("boot_id", id).Int("sources", cfg.Sources).Msg("starting")
	} else {
		logger.Warn().Err(err).Msg("boot id unavailable")
	}

	sources := make([]EntropySource, 0, cfg.Sources)
	closers := make([]*jent.Source, 0, cfg.Sources)
	defer func() {
		for _, src := range closers {
			src.Close()
		}
	}()
	for i := 0; i < cfg.Sources; i++ {
		src, err := jent.New()
		if err != nil {
			return fmt.Errorf("entropy source %d: %w", i, err)
		}
		sources = append(sources, src)
		closers = append(closers, src)
	}

	live := newLiveConfig(cfg)
	if cfg.ConfigFile != "" && !cfg.Oneshot {
		go NewConfigWatcher(cfg.ConfigFile, live).Run(ctx)
	}

	return run(ctx, cfg, live, randdev.New(), sources)
}

// run is the mixing loop over injected collaborators.
func run(ctx context.Context, cfg Config, live *liveConfig, pool KernelPool, sources []EntropySource) error {
	// The hidden state carries mixing history across iterations. It starts
	// all-zero, is overwritten every round, and never leaves this loop.
	state := make([]byte, stateSize)
	defer zero(state)
	out := make([]byte, stateSize)
	defer zero(out)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := mixRound(state, out, sources); err != nil {
			return err
		}
		if err := pool.InjectEntropy(out, uint32(len(out))*8); err != nil {
			return err
		}

		interval, reseed := live.get()
		if reseed {
			if err := pool.ForceReseed(); err != nil {
				return err
			}
		}
		zero(out)

		logger.Debug().Int("bytes", stateSize).Bool("reseed", reseed).
			Msg("injected mixed entropy")

		if cfg.Oneshot {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

// mixRound draws len(out) bytes from every source and folds the draws and
// the previous hidden state through the two domain-separated hash
// computations. state is overwritten with the STATE digest, so recovering a
// published output does not reveal the state that produced it; out is
// overwritten with the RAND0 digest, so raw generator bytes never leave the
// process. The state must be fed before the sources and both computations
// finalized only after every source has been fed.
func mixRound(state, out []byte, sources []EntropySource) error {
	hs := sha3.New512()
	ho := sha3.New512()

	hs.Write([]byte(tagState))
	ho.Write([]byte(tagOutput))

	hs.Write(state)
	ho.Write(state)

	for i, src := range sources {
		if err := src.FillBytes(out); err != nil {
			return fmt.Errorf("source %d: %w", i, err)
		}
		hs.Write(out)
		ho.Write(out)
	}

	copy(state, hs.Sum(nil)[:len(state)])
	copy(out, ho.Sum(nil)[:len(out)])
	return nil
}

func zero(p []byte) {
	for i := range p {
		p[i] = 0
	}
}
