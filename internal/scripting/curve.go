package scripting

import (
	"fmt"
	"os"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/combatcore/internal/game/combat"
)

// Lua globals a curve script may define. Each receives a request table
// with attacker_level, defender_level, weapon_skill and defense_skill;
// avoid_band receives the avoidance kind ("dodge", "parry", "block") first.
const (
	fnHitChance       = "hit_chance"
	fnAvoidBand       = "avoid_band"
	fnCritChance      = "crit_chance"
	fnMultiStrike     = "multi_strike_chance"
	fnBlockMultiplier = "block_multiplier"
)

// LuaCurve is a combat.Curve whose formulas come from a Lua script. Any
// function the script leaves undefined, or that errors, exceeds its
// instruction budget or returns a non-number, falls back to the wrapped
// curve. Results are clamped by the resolver, not here.
type LuaCurve struct {
	mu       sync.Mutex
	L        *lua.LState
	limit    int
	fallback combat.Curve
	source   string
	logger   *zap.Logger
}

var _ combat.Curve = (*LuaCurve)(nil)

// NewLuaCurve compiles src into a sandboxed VM.
//
// Precondition: fallback must be non-nil; logger may be nil.
// Postcondition: Returns a ready curve, or an error if the script fails to load.
func NewLuaCurve(src, source string, limit int, fallback combat.Curve, logger *zap.Logger) (*LuaCurve, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	L := NewSandboxedState()
	registerModules(L, logger, source)
	if err := DoStringLimited(L, src, limit); err != nil {
		L.Close()
		return nil, fmt.Errorf("scripting: loading curve %q: %w", source, err)
	}
	return &LuaCurve{L: L, limit: limit, fallback: fallback, source: source, logger: logger}, nil
}

// LoadCurveFile reads a curve script from path.
//
// Postcondition: Returns a ready curve, or an error if the file cannot be read or loaded.
func LoadCurveFile(path string, limit int, fallback combat.Curve, logger *zap.Logger) (*LuaCurve, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scripting: reading curve %q: %w", path, err)
	}
	return NewLuaCurve(string(data), path, limit, fallback, logger)
}

// Close releases the VM.
func (c *LuaCurve) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.L.Close()
}

// HitChance calls the script's hit_chance, or the fallback curve.
func (c *LuaCurve) HitChance(req combat.HitRequest) float64 {
	return c.call(fnHitChance, func() float64 { return c.fallback.HitChance(req) }, req)
}

// AvoidBand calls the script's avoid_band with the avoidance kind name, or the fallback curve.
func (c *LuaCurve) AvoidBand(kind combat.AvoidanceKind, req combat.HitRequest) float64 {
	return c.call(fnAvoidBand, func() float64 { return c.fallback.AvoidBand(kind, req) }, req, lua.LString(kind.String()))
}

// CritChance calls the script's crit_chance, or the fallback curve.
func (c *LuaCurve) CritChance(req combat.HitRequest) float64 {
	return c.call(fnCritChance, func() float64 { return c.fallback.CritChance(req) }, req)
}

// MultiStrikeChance calls the script's multi_strike_chance, or the fallback curve.
func (c *LuaCurve) MultiStrikeChance(req combat.HitRequest) float64 {
	return c.call(fnMultiStrike, func() float64 { return c.fallback.MultiStrikeChance(req) }, req)
}

// BlockMultiplier calls the script's block_multiplier, or the fallback curve.
func (c *LuaCurve) BlockMultiplier(req combat.HitRequest) float64 {
	return c.call(fnBlockMultiplier, func() float64 { return c.fallback.BlockMultiplier(req) }, req)
}

func (c *LuaCurve) toTable(req combat.HitRequest) *lua.LTable {
	t := c.L.NewTable()
	c.L.SetField(t, "attacker_level", lua.LNumber(req.AttackerLevel))
	c.L.SetField(t, "defender_level", lua.LNumber(req.DefenderLevel))
	c.L.SetField(t, "weapon_skill", lua.LNumber(req.WeaponSkill))
	c.L.SetField(t, "defense_skill", lua.LNumber(req.DefenseSkill))
	return t
}

// call invokes the Lua function name with lead followed by the request
// table, under a fresh instruction budget.
func (c *LuaCurve) call(name string, fallback func() float64, req combat.HitRequest, lead ...lua.LValue) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	fn := c.L.GetGlobal(name)
	if fn.Type() != lua.LTFunction {
		return fallback()
	}
	args := append(lead, c.toTable(req))

	var ret lua.LValue = lua.LNil
	err := runLimited(c.L, c.limit, func() error {
		if err := c.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, args...); err != nil {
			return err
		}
		ret = c.L.Get(-1)
		c.L.Pop(1)
		return nil
	})
	if err != nil {
		c.logger.Warn("scripting: curve function failed",
			zap.String("script", c.source),
			zap.String("function", name),
			zap.Error(err),
		)
		return fallback()
	}
	n, ok := ret.(lua.LNumber)
	if !ok {
		c.logger.Warn("scripting: curve function returned a non-number",
			zap.String("script", c.source),
			zap.String("function", name),
			zap.String("type", ret.Type().String()),
		)
		return fallback()
	}
	return float64(n)
}
