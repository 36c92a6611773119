package config

import (
	"github.com/cory-johannsen/combatcore/internal/game/assist"
	"github.com/cory-johannsen/combatcore/internal/game/combat"
)

// Curve returns the configured linear hit curve.
func (h HitConfig) Curve() combat.LinearCurve {
	return combat.LinearCurve{
		BaseHit:              h.BaseHit,
		HitPerLevel:          h.HitPerLevel,
		HitPerWeaponSkill:    h.HitPerWeaponSkill,
		BaseAvoid:            h.BaseAvoid,
		AvoidPerDefenseSkill: h.AvoidPerDefenseSkill,
		BaseCrit:             h.BaseCrit,
		CritPerLevel:         h.CritPerLevel,
		MultiStrike:          h.MultiStrike,
		Block:                h.BlockMultiplier,
	}
}

// Bounds returns the configured resolver clamps.
func (h HitConfig) Bounds() combat.Bounds {
	return combat.Bounds{
		MinHitChance:      h.MinHitChance,
		MaxHitChance:      h.MaxHitChance,
		MaxBand:           h.MaxBand,
		MaxTotalAvoidance: h.MaxTotalAvoidance,
		MaxCritChance:     h.MaxCritChance,
	}
}

// Mitigation returns the configured armor and resistance mitigation.
func (h HitConfig) Mitigation() combat.Mitigation {
	return combat.ArmorMitigation(h.ArmorK, h.MaxMitigation)
}

// AssisterConfig converts the immediate-assist settings.
func (a AssistConfig) AssisterConfig() assist.Config {
	return assist.Config{
		RadiusRooms:      a.Radius,
		ThrottleWindowMs: a.ThrottleWindow.Milliseconds(),
		SocialTag:        a.SocialTag,
	}
}

// AlertConfig converts the call-for-help settings.
func (g GateConfig) AlertConfig() assist.GateConfig {
	return assist.GateConfig{
		Tag:               g.Tag,
		HPThreshold:       g.HPThreshold,
		CastTimeMs:        g.CastTime.Milliseconds(),
		BaseRadius:        g.BaseRadius,
		RadiusStep:        g.RadiusStep,
		MaxEscalation:     g.MaxEscalation,
		MaxWaves:          g.MaxWaves,
		MaxAssistsPerWave: g.MaxAssistsPerWave,
		WaveIntervalMs:    g.WaveInterval.Milliseconds(),
	}
}
