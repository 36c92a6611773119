package effect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/combatcore/internal/game/effect"
)

func poison() *effect.Definition {
	return &effect.Definition{
		ID:         "poison",
		Name:       "Poison",
		DurationMs: 30_000,
		Stacking:   effect.PolicyRefresh,
		Tags:       []string{effect.TagDot, effect.TagDebuff},
		Dot:        &effect.DotDef{IntervalMs: 2_000, Damage: "10", School: effect.SchoolPoison},
	}
}

func collect(s *effect.Set, now int64) []effect.DotTick {
	var ticks []effect.DotTick
	s.Tick(now, func(t effect.DotTick) { ticks = append(ticks, t) })
	return ticks
}

func TestTick_ScheduleDriven(t *testing.T) {
	s := effect.NewSet()
	inst := s.Apply(poison(), caster, 0, nil)
	require.Equal(t, int64(2_000), inst.Dot.NextTickAt)

	assert.Empty(t, collect(s, 1_999))

	ticks := collect(s, 2_000)
	require.Len(t, ticks, 1)
	assert.Equal(t, 10, ticks[0].Amount)
	assert.Equal(t, int64(2_000), ticks[0].At)
	assert.Equal(t, int64(4_000), inst.Dot.NextTickAt)
}

func TestTick_NoImplicitCatchUp(t *testing.T) {
	s := effect.NewSet()
	inst := s.Apply(poison(), caster, 0, nil)
	ticks := collect(s, 9_000)
	assert.Len(t, ticks, 1)
	assert.Equal(t, int64(4_000), inst.Dot.NextTickAt)
	assert.Len(t, collect(s, 9_000), 1)
	assert.Len(t, collect(s, 9_000), 1)
	assert.Len(t, collect(s, 9_000), 1)
	assert.Empty(t, collect(s, 9_000))
}

func TestTick_ThreeTicksBaseline(t *testing.T) {
	s := effect.NewSet()
	inst := s.Apply(poison(), caster, 0, nil)
	first := inst.Dot.NextTickAt
	total := 0
	for i := int64(0); i < 3; i++ {
		for _, tk := range collect(s, first+i*2_000) {
			total += tk.Amount
		}
	}
	assert.Equal(t, 30, total)
}

func TestTick_UsesModifiersLiveAtTickTime(t *testing.T) {
	s := effect.NewSet()
	inst := s.Apply(poison(), caster, 0, nil)
	first := inst.Dot.NextTickAt

	before := collect(s, first)
	require.Len(t, before, 1)
	assert.Equal(t, 10, before[0].Amount)

	s.Apply(&effect.Definition{ID: "vuln", DurationMs: 60_000, Modifiers: effect.Modifiers{DamageTakenPct: 100}}, caster, first+1, nil)

	after := collect(s, first+2_000)
	require.Len(t, after, 1)
	assert.Equal(t, 10, after[0].Raw)
	assert.Equal(t, 20, after[0].Amount)
}

func TestTick_SchoolModifierApplies(t *testing.T) {
	s := effect.NewSet()
	s.Apply(poison(), caster, 0, nil)
	s.Apply(&effect.Definition{ID: "toxic", Modifiers: effect.Modifiers{
		DamageTakenPctBySchool: map[effect.School]float64{effect.SchoolPoison: 50},
	}}, caster, 0, nil)
	ticks := collect(s, 2_000)
	require.Len(t, ticks, 1)
	assert.Equal(t, 15, ticks[0].Amount)
}

func TestTick_StackScalesPerTick(t *testing.T) {
	s := effect.NewSet()
	def := poison()
	def.Stacking = effect.PolicyStack
	def.MaxStacks = 5
	s.Apply(def, caster, 0, nil)
	s.Apply(def, caster, 0, nil)
	ticks := collect(s, 2_000)
	require.Len(t, ticks, 1)
	assert.Equal(t, 20, ticks[0].Amount)
}

func TestTick_FinalTickAtExpiryFires(t *testing.T) {
	s := effect.NewSet()
	def := poison()
	def.DurationMs = 6_000
	s.Apply(def, caster, 0, nil)
	fired := 0
	for _, now := range []int64{2_000, 4_000, 6_000, 8_000} {
		fired += len(collect(s, now))
	}
	assert.Equal(t, 3, fired)
	assert.Equal(t, 0, s.Len())
}

func TestTick_PerTickRolledOnceAtApply(t *testing.T) {
	s := effect.NewSet()
	def := poison()
	def.Dot.Damage = "2d6"
	rolls := 0
	inst := s.Apply(def, caster, 0, func(expr string) int {
		rolls++
		return 9
	})
	assert.Equal(t, 9, inst.Dot.PerTick)
	collect(s, 2_000)
	collect(s, 4_000)
	assert.Equal(t, 1, rolls)
}

func TestTick_NilRollUsesExpectedValue(t *testing.T) {
	s := effect.NewSet()
	def := poison()
	def.Dot.Damage = "2d6+1"
	inst := s.Apply(def, caster, 0, nil)
	assert.Equal(t, 8, inst.Dot.PerTick)
}

func TestNextDotAt(t *testing.T) {
	s := effect.NewSet()
	assert.Equal(t, int64(0), s.NextDotAt(0))
	s.Apply(poison(), caster, 500, nil)
	assert.Equal(t, int64(2_500), s.NextDotAt(500))
}

func TestTick_DotsExpiringTogetherBothFireFinalTick(t *testing.T) {
	def := poison()
	def.DurationMs = 6_000
	s := effect.NewSet()
	s.Apply(def, effect.Source{Kind: effect.SourceSpell, ID: "a"}, 0, nil)
	s.Apply(def, effect.Source{Kind: effect.SourceSpell, ID: "b"}, 0, nil)

	fired, total := 0, 0
	for _, now := range []int64{2_000, 4_000, 6_000} {
		fired += s.Tick(now, func(tk effect.DotTick) {
			// Damage handling drains shields and breaks effects, both of which
			// prune expired instances.
			s.DrainAbsorb(tk.Amount, now)
			s.BreakOnDamage(now)
			total += tk.Amount
		})
	}
	assert.Equal(t, 6, fired)
	assert.Equal(t, 60, total)
	assert.Zero(t, s.Len())
}
