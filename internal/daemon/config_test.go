package daemon

import (
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", DefaultConfig(), false},
		{"oneshot without interval", Config{Oneshot: true, Sources: 1}, false},
		{"zero interval", Config{Sources: 1}, true},
		{"negative interval", Config{SeedInterval: -time.Second, Sources: 1}, true},
		{"no sources", Config{SeedInterval: time.Second}, true},
		{"many sources", Config{SeedInterval: time.Second, Sources: 8}, false},
	}
	for _, tt := range tests {
		err := tt.cfg.Validate()
		if (err != nil) != tt.wantErr {
			t.Fatalf("%s: Validate() = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestApplyFileConfig(t *testing.T) {
	trueVal := true

	tests := []struct {
		name     string
		fc       fileConfig
		changed  map[string]bool
		initial  Config
		expected Config
		wantErr  bool
	}{
		{
			name: "applies all values",
			fc: fileConfig{
				Oneshot:      &trueVal,
				SeedInterval: "30s",
				ForceReseed:  &trueVal,
				Sources:      4,
			},
			changed: map[string]bool{},
			initial: DefaultConfig(),
			expected: Config{
				Oneshot:      true,
				SeedInterval: 30 * time.Second,
				ForceReseed:  true,
				Sources:      4,
			},
		},
		{
			name: "respects changed flags",
			fc: fileConfig{
				SeedInterval: "30s",
				Sources:      4,
			},
			changed: map[string]bool{"interval": true},
			initial: Config{SeedInterval: 5 * time.Second, Sources: 1},
			expected: Config{
				SeedInterval: 5 * time.Second, // flag wins
				Sources:      4,
			},
		},
		{
			name:     "invalid duration",
			fc:       fileConfig{SeedInterval: "soon"},
			changed:  map[string]bool{},
			initial:  DefaultConfig(),
			expected: DefaultConfig(),
			wantErr:  true,
		},
		{
			name:     "empty file keeps defaults",
			fc:       fileConfig{},
			changed:  map[string]bool{},
			initial:  DefaultConfig(),
			expected: DefaultConfig(),
		},
	}

	for _, tt := range tests {
		cfg := tt.initial
		err := applyFileConfig(&cfg, tt.fc, tt.changed)
		if (err != nil) != tt.wantErr {
			t.Fatalf("%s: applyFileConfig() = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
		if err != nil {
			continue
		}
		if cfg != tt.expected {
			t.Fatalf("%s: got %+v, want %+v", tt.name, cfg, tt.expected)
		}
	}
}

func TestApplyEnvConfig(t *testing.T) {
	t.Setenv("JITTERSEED_SEED_INTERVAL", "45s")
	t.Setenv("JITTERSEED_SOURCES", "3")
	t.Setenv("JITTERSEED_ONESHOT", "1")
	t.Setenv("JITTERSEED_FORCE_RESEED", "true")

	cfg := DefaultConfig()
	if err := ApplyEnvConfig(&cfg, map[string]bool{}); err != nil {
		t.Fatalf("ApplyEnvConfig: %v", err)
	}
	if cfg.SeedInterval != 45*time.Second {
		t.Fatalf("SeedInterval = %v, want 45s", cfg.SeedInterval)
	}
	if cfg.Sources != 3 {
		t.Fatalf("Sources = %d, want 3", cfg.Sources)
	}
	if !cfg.Oneshot || !cfg.ForceReseed {
		t.Fatalf("bool envs not applied: %+v", cfg)
	}
}

func TestApplyEnvConfigRespectsFlags(t *testing.T) {
	t.Setenv("JITTERSEED_SEED_INTERVAL", "45s")

	cfg := DefaultConfig()
	if err := ApplyEnvConfig(&cfg, map[string]bool{"interval": true}); err != nil {
		t.Fatalf("ApplyEnvConfig: %v", err)
	}
	if cfg.SeedInterval != DefaultConfig().SeedInterval {
		t.Fatalf("flag not respected: SeedInterval = %v", cfg.SeedInterval)
	}
}

func TestApplyEnvConfigBadDuration(t *testing.T) {
	t.Setenv("JITTERSEED_SEED_INTERVAL", "whenever")

	cfg := DefaultConfig()
	if err := ApplyEnvConfig(&cfg, map[string]bool{}); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}
