// Package config provides Viper-based configuration loading for the combat simulator.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// SimulationConfig holds the tick loop and content locations.
type SimulationConfig struct {
	TickInterval time.Duration `mapstructure:"tick_interval"`
	// NPCSwingInterval is the delay between NPC auto-attacks; 0 disables them.
	NPCSwingInterval time.Duration `mapstructure:"npc_swing_interval"`
	EffectsDir       string        `mapstructure:"effects_dir"`
	NPCsDir          string        `mapstructure:"npcs_dir"`
	ZonesDir         string        `mapstructure:"zones_dir"`
	// Seed fixes the random source for replayable runs; 0 uses crypto randomness.
	Seed uint64 `mapstructure:"seed"`
}

// HitConfig holds the default hit curve, its bounds, and an optional script.
type HitConfig struct {
	BaseHit              float64 `mapstructure:"base_hit"`
	HitPerLevel          float64 `mapstructure:"hit_per_level"`
	HitPerWeaponSkill    float64 `mapstructure:"hit_per_weapon_skill"`
	BaseAvoid            float64 `mapstructure:"base_avoid"`
	AvoidPerDefenseSkill float64 `mapstructure:"avoid_per_defense_skill"`
	BaseCrit             float64 `mapstructure:"base_crit"`
	CritPerLevel         float64 `mapstructure:"crit_per_level"`
	MultiStrike          float64 `mapstructure:"multi_strike"`
	BlockMultiplier      float64 `mapstructure:"block_multiplier"`

	MinHitChance      float64 `mapstructure:"min_hit_chance"`
	MaxHitChance      float64 `mapstructure:"max_hit_chance"`
	MaxBand           float64 `mapstructure:"max_band"`
	MaxTotalAvoidance float64 `mapstructure:"max_total_avoidance"`
	MaxCritChance     float64 `mapstructure:"max_crit_chance"`

	// ArmorK and MaxMitigation parameterise armor and resistance reduction.
	ArmorK        float64 `mapstructure:"armor_k"`
	MaxMitigation float64 `mapstructure:"max_mitigation"`

	// CurveScript is an optional Lua file overriding the curve formulas.
	CurveScript            string `mapstructure:"curve_script"`
	ScriptInstructionLimit int    `mapstructure:"script_instruction_limit"`
}

// ThreatConfig holds threat accounting settings.
type ThreatConfig struct {
	// DamageMultiplier converts damage dealt to threat.
	DamageMultiplier float64 `mapstructure:"damage_multiplier"`
}

// GateConfig holds the call-for-help alert settings.
type GateConfig struct {
	Tag               string        `mapstructure:"tag"`
	HPThreshold       float64       `mapstructure:"hp_threshold"`
	CastTime          time.Duration `mapstructure:"cast_time"`
	BaseRadius        int           `mapstructure:"base_radius"`
	RadiusStep        int           `mapstructure:"radius_step"`
	MaxEscalation     int           `mapstructure:"max_escalation"`
	MaxWaves          int           `mapstructure:"max_waves"`
	MaxAssistsPerWave int           `mapstructure:"max_assists_per_wave"`
	WaveInterval      time.Duration `mapstructure:"wave_interval"`
}

// AssistConfig holds assist propagation settings.
type AssistConfig struct {
	Radius         int           `mapstructure:"radius"`
	ThrottleWindow time.Duration `mapstructure:"throttle_window"`
	SocialTag      string        `mapstructure:"social_tag"`
	SeedThreat     float64       `mapstructure:"seed_threat"`
	Gate           GateConfig    `mapstructure:"gate"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging    LoggingConfig    `mapstructure:"logging"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Hit        HitConfig        `mapstructure:"hit"`
	Threat     ThreatConfig     `mapstructure:"threat"`
	Assist     AssistConfig     `mapstructure:"assist"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string
	for _, check := range []func() error{
		func() error { return validateLogging(c.Logging) },
		func() error { return validateSimulation(c.Simulation) },
		func() error { return validateHit(c.Hit) },
		func() error { return validateThreat(c.Threat) },
		func() error { return validateAssist(c.Assist) },
	} {
		if err := check(); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func joined(errs []string) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%s", strings.Join(errs, "; "))
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateSimulation(s SimulationConfig) error {
	var errs []string
	if s.TickInterval <= 0 {
		errs = append(errs, fmt.Sprintf("simulation.tick_interval must be > 0, got %s", s.TickInterval))
	}
	if s.NPCSwingInterval < 0 {
		errs = append(errs, "simulation.npc_swing_interval must not be negative")
	}
	if s.EffectsDir == "" {
		errs = append(errs, "simulation.effects_dir must not be empty")
	}
	if s.NPCsDir == "" {
		errs = append(errs, "simulation.npcs_dir must not be empty")
	}
	if s.ZonesDir == "" {
		errs = append(errs, "simulation.zones_dir must not be empty")
	}
	return joined(errs)
}

func probability(name string, v float64, errs []string) []string {
	if v < 0 || v > 1 {
		return append(errs, fmt.Sprintf("hit.%s must be in [0, 1], got %g", name, v))
	}
	return errs
}

func validateHit(h HitConfig) error {
	var errs []string
	errs = probability("min_hit_chance", h.MinHitChance, errs)
	errs = probability("max_hit_chance", h.MaxHitChance, errs)
	errs = probability("max_band", h.MaxBand, errs)
	errs = probability("max_crit_chance", h.MaxCritChance, errs)
	if h.MinHitChance > h.MaxHitChance {
		errs = append(errs, "hit.min_hit_chance must not exceed hit.max_hit_chance")
	}
	if h.MaxTotalAvoidance < 0 || h.MaxTotalAvoidance >= 1 {
		errs = append(errs, fmt.Sprintf("hit.max_total_avoidance must be in [0, 1), got %g", h.MaxTotalAvoidance))
	}
	if h.BlockMultiplier <= 0 || h.BlockMultiplier >= 1 {
		errs = append(errs, fmt.Sprintf("hit.block_multiplier must be in (0, 1), got %g", h.BlockMultiplier))
	}
	if h.ArmorK <= 0 {
		errs = append(errs, fmt.Sprintf("hit.armor_k must be > 0, got %g", h.ArmorK))
	}
	if h.MaxMitigation < 0 || h.MaxMitigation >= 1 {
		errs = append(errs, fmt.Sprintf("hit.max_mitigation must be in [0, 1), got %g", h.MaxMitigation))
	}
	if h.ScriptInstructionLimit < 0 {
		errs = append(errs, "hit.script_instruction_limit must be >= 0")
	}
	return joined(errs)
}

func validateThreat(t ThreatConfig) error {
	if t.DamageMultiplier < 0 {
		return fmt.Errorf("threat.damage_multiplier must be >= 0, got %g", t.DamageMultiplier)
	}
	return nil
}

func validateAssist(a AssistConfig) error {
	var errs []string
	if a.Radius < 0 {
		errs = append(errs, "assist.radius must be >= 0")
	}
	if a.ThrottleWindow < 0 {
		errs = append(errs, "assist.throttle_window must not be negative")
	}
	if a.SeedThreat < 0 {
		errs = append(errs, "assist.seed_threat must be >= 0")
	}
	g := a.Gate
	if g.HPThreshold < 0 || g.HPThreshold > 1 {
		errs = append(errs, fmt.Sprintf("assist.gate.hp_threshold must be in [0, 1], got %g", g.HPThreshold))
	}
	if g.CastTime < 0 || g.WaveInterval < 0 {
		errs = append(errs, "assist.gate durations must not be negative")
	}
	if g.BaseRadius < 0 || g.RadiusStep < 0 || g.MaxEscalation < 0 || g.MaxAssistsPerWave < 0 {
		errs = append(errs, "assist.gate radius, escalation and cap settings must be >= 0")
	}
	if g.MaxWaves < 1 {
		errs = append(errs, fmt.Sprintf("assist.gate.max_waves must be >= 1, got %d", g.MaxWaves))
	}
	return joined(errs)
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with COMBAT_ prefix
	v.SetEnvPrefix("COMBAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Defaults returns a Viper instance holding only the default values.
func Defaults() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("simulation.tick_interval", "100ms")
	v.SetDefault("simulation.npc_swing_interval", "2s")
	v.SetDefault("simulation.effects_dir", "content/effects")
	v.SetDefault("simulation.npcs_dir", "content/npcs")
	v.SetDefault("simulation.zones_dir", "content/zones")
	v.SetDefault("simulation.seed", 0)

	v.SetDefault("hit.base_hit", 0.90)
	v.SetDefault("hit.hit_per_level", 0.02)
	v.SetDefault("hit.hit_per_weapon_skill", 0.005)
	v.SetDefault("hit.base_avoid", 0.05)
	v.SetDefault("hit.avoid_per_defense_skill", 0.05)
	v.SetDefault("hit.base_crit", 0.05)
	v.SetDefault("hit.crit_per_level", 0.01)
	v.SetDefault("hit.multi_strike", 0.10)
	v.SetDefault("hit.block_multiplier", 0.5)
	v.SetDefault("hit.min_hit_chance", 0.05)
	v.SetDefault("hit.max_hit_chance", 0.99)
	v.SetDefault("hit.max_band", 0.30)
	v.SetDefault("hit.max_total_avoidance", 0.75)
	v.SetDefault("hit.max_crit_chance", 0.50)
	v.SetDefault("hit.armor_k", 10.0)
	v.SetDefault("hit.max_mitigation", 0.75)
	v.SetDefault("hit.curve_script", "")
	v.SetDefault("hit.script_instruction_limit", 100_000)

	v.SetDefault("threat.damage_multiplier", 1.0)

	v.SetDefault("assist.radius", 0)
	v.SetDefault("assist.throttle_window", "1s")
	v.SetDefault("assist.social_tag", "social")
	v.SetDefault("assist.seed_threat", 1.0)
	v.SetDefault("assist.gate.tag", "gate")
	v.SetDefault("assist.gate.hp_threshold", 0.5)
	v.SetDefault("assist.gate.cast_time", "3s")
	v.SetDefault("assist.gate.base_radius", 1)
	v.SetDefault("assist.gate.radius_step", 1)
	v.SetDefault("assist.gate.max_escalation", 3)
	v.SetDefault("assist.gate.max_waves", 4)
	v.SetDefault("assist.gate.max_assists_per_wave", 3)
	v.SetDefault("assist.gate.wave_interval", "5s")
}
