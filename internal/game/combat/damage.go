package combat

import (
	"math"

	"github.com/cory-johannsen/combatcore/internal/game/effect"
)

// Mitigation reduces an amount by armor or resistance. It is an external
// collaborator consumed inside ApplyDamage.
type Mitigation func(p *Participant, amount int, school School, now int64) int

// NoMitigation passes the amount through unchanged.
func NoMitigation(_ *Participant, amount int, _ School, _ int64) int { return amount }

// ArmorMitigation returns a Mitigation where physical damage is reduced by
// armor and every other school by the matching resistance, both including
// the deltas from live effects. Reduction is value/(value + k*level), capped
// at maxReduction.
//
// Precondition: k > 0; 0 <= maxReduction < 1.
func ArmorMitigation(k, maxReduction float64) Mitigation {
	return func(p *Participant, amount int, school School, now int64) int {
		snap := p.Effects.Snapshot(now)
		var value int
		if school == effect.SchoolPhysical {
			value = p.Armor + snap.Armor
		} else {
			value = p.Resists[school] + snap.Resists[school]
		}
		if value <= 0 {
			return amount
		}
		reduction := float64(value) / (float64(value) + k*float64(p.Level))
		reduction = math.Min(reduction, maxReduction)
		return amount - int(math.Round(float64(amount)*reduction))
	}
}

// DamageOptions tunes one ApplyDamage call.
type DamageOptions struct {
	// Now is the caller-supplied timestamp in milliseconds.
	Now int64
	// Mitigate defaults to NoMitigation when nil.
	Mitigate Mitigation
	// SkipTakenModifiers is set for DOT ticks whose amount was already
	// filtered through the damage-taken modifiers at tick time.
	SkipTakenModifiers bool
	// SourceID is the entity responsible for the damage, if any.
	SourceID string
}

// DamageResult reports what one ApplyDamage call did.
type DamageResult struct {
	Raw      int
	Amount   int // after damage-taken modifiers and mitigation
	Absorbed int
	HPLoss   int
	NewHP    int
	Killed   bool
	// Broken lists effect ids removed because damage interrupts them.
	Broken []string
}

// ApplyDamage runs the damage pipeline against p:
//
//  1. damage-taken percent modifiers, global then school, multiplicatively
//  2. mitigation
//  3. shield drain, oldest application first across all groups
//  4. remaining amount applied to HP, clamped at zero
//  5. break-on-damage effects removed whenever raw > 0, even when the
//     whole hit was absorbed
//
// Dead participants are left untouched. Negative raw amounts clamp to zero.
//
// Precondition: p must be non-nil with a non-nil Effects set.
// Postcondition: p.HP >= 0; result.Killed is true iff this call took p from alive to dead.
func ApplyDamage(p *Participant, raw int, school School, opts DamageOptions) DamageResult {
	res := DamageResult{Raw: max(raw, 0), NewHP: p.HP}
	if p.IsDead() {
		res.NewHP = max(p.HP, 0)
		return res
	}
	now := opts.Now

	amount := res.Raw
	if !opts.SkipTakenModifiers {
		mult := p.Effects.Snapshot(now).TakenMultiplier(school)
		amount = int(math.Round(float64(amount) * mult))
	}

	mitigate := opts.Mitigate
	if mitigate == nil {
		mitigate = NoMitigation
	}
	amount = min(max(mitigate(p, amount, school, now), 0), amount)
	res.Amount = amount

	res.Absorbed = p.Effects.DrainAbsorb(amount, now)
	amount -= res.Absorbed

	if amount > 0 {
		loss := min(amount, p.HP)
		p.HP -= loss
		res.HPLoss = loss
		if p.HP <= 0 {
			p.HP = 0
			p.Alive = false
			res.Killed = true
		}
	}
	res.NewHP = p.HP

	if res.Raw > 0 {
		res.Broken = p.Effects.BreakOnDamage(now)
	}
	return res
}

// OutgoingDamage scales a rolled base amount by the attacker's live
// damage-dealt modifiers and the swing outcome: crits double, blocks apply
// the block multiplier, avoided or missed swings deal nothing.
//
// Postcondition: Returns >= 0.
func OutgoingDamage(attacker *Participant, base int, school School, hit HitResult, now int64) int {
	if !hit.Outcome.Lands() || base <= 0 {
		return 0
	}
	v := float64(base) * attacker.Effects.Snapshot(now).DealtMultiplier(school)
	switch hit.Outcome {
	case Crit:
		v *= 2
	case Blocked:
		v *= hit.BlockMultiplier
	}
	return max(int(math.Round(v)), 0)
}

// TickDots advances p's DOT schedule to now. Each due tick, already filtered
// through the damage-taken modifiers live at the tick, is applied through
// ApplyDamage without re-applying those modifiers. onTick may be nil.
//
// Postcondition: Returns the number of ticks applied.
func TickDots(p *Participant, now int64, opts DamageOptions, onTick func(effect.DotTick, DamageResult)) int {
	return p.Effects.Tick(now, func(t effect.DotTick) {
		o := opts
		o.Now = now
		o.SkipTakenModifiers = true
		o.SourceID = t.Source.ID
		r := ApplyDamage(p, t.Amount, t.School, o)
		if onTick != nil {
			onTick(t, r)
		}
	})
}
