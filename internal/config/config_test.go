package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func validConfig() Config {
	cfg, err := LoadFromViper(Defaults())
	if err != nil {
		panic(err)
	}
	return cfg
}

func TestDefaultsAreValid(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 100*time.Millisecond, cfg.Simulation.TickInterval)
	assert.Equal(t, "social", cfg.Assist.SocialTag)
	assert.Equal(t, 3*time.Second, cfg.Assist.Gate.CastTime)
}

func TestLoadFromFile(t *testing.T) {
	yaml := `
logging:
  level: debug
  format: console
simulation:
  tick_interval: 250ms
  effects_dir: fx
  npcs_dir: mobs
  zones_dir: maps
  seed: 42
hit:
  base_hit: 0.8
  armor_k: 20
assist:
  radius: 2
  throttle_window: 1500ms
  gate:
    max_waves: 2
    wave_interval: 4s
`
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 250*time.Millisecond, cfg.Simulation.TickInterval)
	assert.Equal(t, "mobs", cfg.Simulation.NPCsDir)
	assert.Equal(t, uint64(42), cfg.Simulation.Seed)
	assert.Equal(t, 0.8, cfg.Hit.BaseHit)
	// unset values fall back to defaults
	assert.Equal(t, 0.05, cfg.Hit.BaseAvoid)
	assert.Equal(t, 2, cfg.Assist.Radius)
	assert.Equal(t, 2, cfg.Assist.Gate.MaxWaves)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestLoadEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: info\n"), 0644))
	t.Setenv("COMBAT_LOGGING_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "verbose"
	cfg.Simulation.TickInterval = 0
	cfg.Hit.MinHitChance = 0.9
	cfg.Hit.MaxHitChance = 0.5
	cfg.Assist.Gate.MaxWaves = 0

	err := cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "logging.level")
	assert.Contains(t, msg, "simulation.tick_interval")
	assert.Contains(t, msg, "hit.min_hit_chance must not exceed")
	assert.Contains(t, msg, "assist.gate.max_waves")
}

func TestValidateRejectsBadHitValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*HitConfig)
		want   string
	}{
		{"band above one", func(h *HitConfig) { h.MaxBand = 1.5 }, "hit.max_band"},
		{"total avoidance one", func(h *HitConfig) { h.MaxTotalAvoidance = 1 }, "hit.max_total_avoidance"},
		{"block zero", func(h *HitConfig) { h.BlockMultiplier = 0 }, "hit.block_multiplier"},
		{"armor k zero", func(h *HitConfig) { h.ArmorK = 0 }, "hit.armor_k"},
		{"negative script limit", func(h *HitConfig) { h.ScriptInstructionLimit = -1 }, "hit.script_instruction_limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg.Hit)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFromViperRejectsInvalid(t *testing.T) {
	v := Defaults()
	v.Set("threat.damage_multiplier", -1)
	_, err := LoadFromViper(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "threat.damage_multiplier")
}

func TestConversions(t *testing.T) {
	cfg := validConfig()

	curve := cfg.Hit.Curve()
	assert.Equal(t, cfg.Hit.BaseHit, curve.BaseHit)
	assert.Equal(t, cfg.Hit.BlockMultiplier, curve.Block)

	bounds := cfg.Hit.Bounds()
	assert.Equal(t, cfg.Hit.MaxTotalAvoidance, bounds.MaxTotalAvoidance)

	ac := cfg.Assist.AssisterConfig()
	assert.Equal(t, int64(1000), ac.ThrottleWindowMs)
	assert.Equal(t, "social", ac.SocialTag)

	gc := cfg.Assist.Gate.AlertConfig()
	assert.Equal(t, int64(3000), gc.CastTimeMs)
	assert.Equal(t, int64(5000), gc.WaveIntervalMs)
	assert.Equal(t, 4, gc.MaxWaves)
}

func TestPropertyLoggingLevelValidation(t *testing.T) {
	valid := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	rapid.Check(t, func(t *rapid.T) {
		level := rapid.SampledFrom([]string{"debug", "info", "warn", "error", "trace", "", "INFO"}).Draw(t, "level")
		cfg := validConfig()
		cfg.Logging.Level = level
		err := cfg.Validate()
		if valid[level] && err != nil {
			t.Fatalf("level %q rejected: %v", level, err)
		}
		if !valid[level] && err == nil {
			t.Fatalf("level %q accepted", level)
		}
	})
}

func TestLoadDevConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "dev.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.Simulation.NPCSwingInterval)
	assert.Equal(t, "content/scripts/curve.lua", cfg.Hit.CurveScript)
	assert.Equal(t, "gate", cfg.Assist.Gate.Tag)
}
