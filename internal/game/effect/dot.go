package effect

import (
	"math"
	"slices"
)

// DotTick describes one scheduled damage-over-time tick.
type DotTick struct {
	InstanceUID string
	EffectID    string
	Source      Source
	School      School
	// Raw is the per-tick damage fixed at cast time, multiplied by stacks.
	Raw int
	// Amount is Raw filtered through the damage-taken modifiers live at the tick.
	Amount int
	// At is the scheduled tick time.
	At int64
}

// Tick fires every DOT instance whose next tick is due at now, at most once
// per instance, and advances its schedule by one interval. A tick scheduled
// at or before the instance's expiry still fires. fn receives each tick after
// the damage-taken modifiers live at now have been applied; fn may mutate the
// set (absorbs, break-on-damage) while ticking proceeds. Expiry pruning is
// deferred until every due tick has fired, so DOTs expiring together at now
// all deliver their final tick regardless of order.
//
// Postcondition: Returns the number of ticks fired; expired instances are pruned.
func (s *Set) Tick(now int64, fn func(DotTick)) int {
	fired := 0
	s.ticking = true
	defer func() {
		s.ticking = false
		s.prune(now)
	}()
	for _, inst := range slices.Clone(s.instances) {
		d := inst.Dot
		if inst.removed || d == nil || d.NextTickAt > now {
			continue
		}
		if inst.ExpiresAt > 0 && d.NextTickAt > inst.ExpiresAt {
			continue
		}
		raw := d.PerTick * inst.Stacks
		mult := s.liveSnapshot(now).TakenMultiplier(d.School)
		tick := DotTick{
			InstanceUID: inst.UID,
			EffectID:    inst.EffectID,
			Source:      inst.Source,
			School:      d.School,
			Raw:         raw,
			Amount:      scale(raw, mult),
			At:          d.NextTickAt,
		}
		d.NextTickAt += d.IntervalMs
		fired++
		if fn != nil {
			fn(tick)
		}
	}
	return fired
}

// NextDotAt returns the earliest pending DOT tick time, or 0 if none.
func (s *Set) NextDotAt(now int64) int64 {
	var next int64
	for inst := range s.Active(now) {
		if inst.Dot == nil {
			continue
		}
		if next == 0 || inst.Dot.NextTickAt < next {
			next = inst.Dot.NextTickAt
		}
	}
	return next
}

// scale multiplies amount by mult, rounding half away from zero.
func scale(amount int, mult float64) int {
	return int(math.Round(float64(amount) * mult))
}
