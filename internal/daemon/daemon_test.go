package daemon

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/sha3"

	"github.com/croftsec/jitterseed/internal/jent"
)

type stubSource struct {
	fill  func(p []byte) error
	draws int
}

func (s *stubSource) FillBytes(p []byte) error {
	s.draws++
	if s.fill != nil {
		return s.fill(p)
	}
	for i := range p {
		p[i] = byte(i)
	}
	return nil
}

type stubPool struct {
	injects   int
	reseeds   int
	lastBits  uint32
	last      []byte
	injectErr error
	reseedErr error
	onInject  func()
}

func (p *stubPool) InjectEntropy(b []byte, bits uint32) error {
	p.injects++
	p.lastBits = bits
	p.last = append(p.last[:0], b...)
	if p.onInject != nil {
		p.onInject()
	}
	return p.injectErr
}

func (p *stubPool) ForceReseed() error {
	p.reseeds++
	return p.reseedErr
}

func runOnce(t *testing.T, cfg Config, pool *stubPool, sources ...EntropySource) error {
	t.Helper()
	cfg.Oneshot = true
	if cfg.Sources == 0 {
		cfg.Sources = len(sources)
	}
	return run(context.Background(), cfg, newLiveConfig(cfg), pool, sources)
}

func TestOneshotSingleInjection(t *testing.T) {
	pool := &stubPool{}
	src := &stubSource{}

	if err := runOnce(t, Config{}, pool, src); err != nil {
		t.Fatalf("run: %v", err)
	}
	if pool.injects != 1 {
		t.Fatalf("expected exactly 1 injection, got %d", pool.injects)
	}
	if pool.reseeds != 0 {
		t.Fatalf("expected no reseed, got %d", pool.reseeds)
	}
	if src.draws != 1 {
		t.Fatalf("expected 1 draw, got %d", src.draws)
	}
	if len(pool.last) != stateSize {
		t.Fatalf("injected %d bytes, want %d", len(pool.last), stateSize)
	}
	// The daemon claims full entropy on its mixed output.
	if pool.lastBits != stateSize*8 {
		t.Fatalf("claimed %d bits, want %d", pool.lastBits, stateSize*8)
	}
}

func TestOneshotForceReseed(t *testing.T) {
	pool := &stubPool{}
	if err := runOnce(t, Config{ForceReseed: true}, pool, &stubSource{}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if pool.reseeds != 1 {
		t.Fatalf("expected 1 reseed, got %d", pool.reseeds)
	}
}

func TestOutputIsNotRawSourceBytes(t *testing.T) {
	pool := &stubPool{}
	raw := bytes.Repeat([]byte{0x42}, stateSize)
	src := &stubSource{fill: func(p []byte) error { copy(p, raw); return nil }}

	if err := runOnce(t, Config{}, pool, src); err != nil {
		t.Fatalf("run: %v", err)
	}
	if bytes.Equal(pool.last, raw) {
		t.Fatal("raw generator bytes were published")
	}
}

func TestRunDrawsFromEverySource(t *testing.T) {
	pool := &stubPool{}
	a, b, c := &stubSource{}, &stubSource{}, &stubSource{}

	if err := runOnce(t, Config{}, pool, a, b, c); err != nil {
		t.Fatalf("run: %v", err)
	}
	for i, src := range []*stubSource{a, b, c} {
		if src.draws != 1 {
			t.Fatalf("source %d: %d draws, want 1", i, src.draws)
		}
	}
}

func TestRunAbortsOnSourceFault(t *testing.T) {
	pool := &stubPool{}
	src := &stubSource{fill: func(p []byte) error { return jent.ErrRCTFailure }}

	err := runOnce(t, Config{}, pool, src)
	if !errors.Is(err, jent.ErrRCTFailure) {
		t.Fatalf("expected source fault, got %v", err)
	}
	if pool.injects != 0 {
		t.Fatalf("expected no injection after source fault, got %d", pool.injects)
	}
}

func TestRunAbortsOnInjectFault(t *testing.T) {
	fault := errors.New("inject failed")
	pool := &stubPool{injectErr: fault}

	err := runOnce(t, Config{}, pool, &stubSource{})
	if !errors.Is(err, fault) {
		t.Fatalf("expected inject fault, got %v", err)
	}
}

func TestRunAbortsOnReseedFault(t *testing.T) {
	fault := errors.New("reseed failed")
	pool := &stubPool{reseedErr: fault}

	err := runOnce(t, Config{ForceReseed: true}, pool, &stubSource{})
	if !errors.Is(err, fault) {
		t.Fatalf("expected reseed fault, got %v", err)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := &stubPool{onInject: cancel}
	cfg := Config{SeedInterval: time.Hour, Sources: 1}

	err := run(ctx, cfg, newLiveConfig(cfg), pool, []EntropySource{&stubSource{}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if pool.injects != 1 {
		t.Fatalf("expected 1 injection before cancel, got %d", pool.injects)
	}
}

// fixedSource returns a source that always produces the given 64-byte
// pattern.
func fixedSource(pattern []byte) *stubSource {
	return &stubSource{fill: func(p []byte) error { copy(p, pattern); return nil }}
}

func TestMixRoundStateDependsOnEveryDrawnByte(t *testing.T) {
	base := make([]byte, stateSize)
	for i := range base {
		base[i] = byte(i * 7)
	}

	mix := func(pattern []byte) []byte {
		state := make([]byte, stateSize)
		out := make([]byte, stateSize)
		if err := mixRound(state, out, []EntropySource{fixedSource(pattern)}); err != nil {
			t.Fatalf("mixRound: %v", err)
		}
		return state
	}

	want := mix(base)
	for _, idx := range []int{0, 1, 31, 62, 63} {
		flipped := append([]byte(nil), base...)
		flipped[idx] ^= 0x01
		if bytes.Equal(mix(flipped), want) {
			t.Fatalf("state unchanged after flipping drawn byte %d", idx)
		}
	}
}

func TestMixRoundDomainSeparation(t *testing.T) {
	state := make([]byte, stateSize)
	out := make([]byte, stateSize)
	if err := mixRound(state, out, []EntropySource{fixedSource(make([]byte, stateSize))}); err != nil {
		t.Fatalf("mixRound: %v", err)
	}
	if len(state) != stateSize || len(out) != stateSize {
		t.Fatalf("digest widths %d/%d, want %d", len(state), len(out), stateSize)
	}
	// Identical inputs, distinct tags: the two digests must differ.
	if bytes.Equal(state, out) {
		t.Fatal("state and output digests are equal; domain separation broken")
	}
}

func TestMixRoundCarriesStateForward(t *testing.T) {
	state := make([]byte, stateSize)
	out := make([]byte, stateSize)
	src := fixedSource(bytes.Repeat([]byte{0xEE}, stateSize))

	if err := mixRound(state, out, []EntropySource{src}); err != nil {
		t.Fatalf("round 1: %v", err)
	}
	first := append([]byte(nil), out...)

	if err := mixRound(state, out, []EntropySource{src}); err != nil {
		t.Fatalf("round 2: %v", err)
	}
	// Same source bytes both rounds; only the carried state changed.
	if bytes.Equal(first, out) {
		t.Fatal("identical outputs across iterations; state not carried forward")
	}
}

func TestMixRoundDeterministicSourceOrder(t *testing.T) {
	a := bytes.Repeat([]byte{0xAA}, stateSize)
	b := bytes.Repeat([]byte{0xBB}, stateSize)

	mix := func(patterns ...[]byte) []byte {
		state := make([]byte, stateSize)
		out := make([]byte, stateSize)
		srcs := make([]EntropySource, 0, len(patterns))
		for _, p := range patterns {
			srcs = append(srcs, fixedSource(p))
		}
		if err := mixRound(state, out, srcs); err != nil {
			t.Fatalf("mixRound: %v", err)
		}
		return out
	}

	if !bytes.Equal(mix(a, b), mix(a, b)) {
		t.Fatal("same configuration must mix deterministically")
	}
	if bytes.Equal(mix(a, b), mix(b, a)) {
		t.Fatal("source iteration order must be part of the mix")
	}
}

func TestMixRoundTranscript(t *testing.T) {
	state0 := make([]byte, stateSize)
	for i := range state0 {
		state0[i] = byte(i)
	}
	first := bytes.Repeat([]byte{0x5A}, stateSize)
	second := bytes.Repeat([]byte{0xC3}, stateSize)

	// Both accumulators absorb the same transcript: the domain tag,
	// then the previous state, then each source draw in order.
	hs := sha3.New512()
	hs.Write([]byte("STATE"))
	hs.Write(state0)
	hs.Write(first)
	hs.Write(second)
	wantState := hs.Sum(nil)[:stateSize]

	ho := sha3.New512()
	ho.Write([]byte("RAND0"))
	ho.Write(state0)
	ho.Write(first)
	ho.Write(second)
	wantOut := ho.Sum(nil)[:stateSize]

	state := append([]byte(nil), state0...)
	out := make([]byte, stateSize)
	err := mixRound(state, out, []EntropySource{fixedSource(first), fixedSource(second)})
	if err != nil {
		t.Fatalf("mixRound: %v", err)
	}
	if !bytes.Equal(state, wantState) {
		t.Fatalf("state = %x, want the STATE-tagged digest %x", state, wantState)
	}
	if !bytes.Equal(out, wantOut) {
		t.Fatalf("out = %x, want the RAND0-tagged digest %x", out, wantOut)
	}
}
