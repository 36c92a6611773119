package scripting_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/combatcore/internal/game/combat"
	"github.com/cory-johannsen/combatcore/internal/scripting"
)

const steepCurve = `
function hit_chance(req)
  return 0.5 + 0.1 * (req.attacker_level - req.defender_level)
end

function avoid_band(kind, req)
  if kind == "parry" then
    return 0
  end
  return req.defense_skill / 100
end
`

func request() combat.HitRequest {
	return combat.HitRequest{AttackerLevel: 12, DefenderLevel: 10, WeaponSkill: 3, DefenseSkill: 20}
}

func newCurve(t *testing.T, src string) *scripting.LuaCurve {
	t.Helper()
	c, err := scripting.NewLuaCurve(src, t.Name(), 0, combat.DefaultCurve(), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestLuaCurve_ScriptedFunctions(t *testing.T) {
	c := newCurve(t, steepCurve)
	req := request()
	assert.InDelta(t, 0.7, c.HitChance(req), 1e-9)
	assert.InDelta(t, 0.2, c.AvoidBand(combat.Dodge, req), 1e-9)
	assert.InDelta(t, 0.0, c.AvoidBand(combat.Parry, req), 1e-9)
}

func TestLuaCurve_UndefinedFallsBack(t *testing.T) {
	c := newCurve(t, steepCurve)
	def := combat.DefaultCurve()
	req := request()
	assert.Equal(t, def.CritChance(req), c.CritChance(req))
	assert.Equal(t, def.MultiStrikeChance(req), c.MultiStrikeChance(req))
	assert.Equal(t, def.BlockMultiplier(req), c.BlockMultiplier(req))
}

func TestLuaCurve_FailuresFallBackAndWarn(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	c, err := scripting.NewLuaCurve(`
		function hit_chance(req) error("boom") end
		function crit_chance(req) while true do end end
		function block_multiplier(req) return "half" end
	`, "broken.lua", 1_000, combat.DefaultCurve(), zap.New(core))
	require.NoError(t, err)
	defer c.Close()

	def := combat.DefaultCurve()
	req := request()
	assert.Equal(t, def.HitChance(req), c.HitChance(req))
	assert.Equal(t, def.CritChance(req), c.CritChance(req))
	assert.Equal(t, def.BlockMultiplier(req), c.BlockMultiplier(req))
	assert.Equal(t, 3, logs.Len())

	// the VM stays usable after a budget overrun
	assert.Equal(t, def.CritChance(req), c.CritChance(req))
}

func TestLuaCurve_EngineLog(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	c, err := scripting.NewLuaCurve(`
		engine.log.info("curve loaded")
		function hit_chance(req)
			engine.log.debug("rolling")
			return 1
		end
	`, "logged.lua", 0, combat.DefaultCurve(), zap.New(core))
	require.NoError(t, err)
	defer c.Close()

	c.HitChance(request())
	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "curve loaded", logs.All()[0].Message)
	assert.Equal(t, zap.DebugLevel, logs.All()[1].Level)
}

func TestLuaCurve_LoadErrors(t *testing.T) {
	_, err := scripting.NewLuaCurve(`function (`, "syntax.lua", 0, combat.DefaultCurve(), nil)
	assert.Error(t, err)
	_, err = scripting.NewLuaCurve(`while true do end`, "spin.lua", 100, combat.DefaultCurve(), nil)
	assert.Error(t, err)
	_, err = scripting.LoadCurveFile(filepath.Join(t.TempDir(), "missing.lua"), 0, combat.DefaultCurve(), nil)
	assert.Error(t, err)
}

func TestLoadCurveFile_DrivesResolver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "never_hit.lua")
	require.NoError(t, os.WriteFile(path, []byte(`function hit_chance(req) return -5 end`), 0o644))
	c, err := scripting.LoadCurveFile(path, 0, combat.DefaultCurve(), nil)
	require.NoError(t, err)
	defer c.Close()

	r := combat.NewResolver(c, combat.DefaultBounds())
	req := request()
	req.Avoidance = combat.AvoidAll

	draws := []float64{0.049, 0.99}
	i := 0
	req.Rand = func() float64 { v := draws[i]; i++; return v }
	assert.Equal(t, combat.Hit, r.Resolve(req).Outcome, "floor keeps a minimum hit chance")

	req.Rand = func() float64 { return 0.05 }
	assert.Equal(t, combat.Miss, r.Resolve(req).Outcome)
}
