package effect

import (
	"slices"
)

// DrainAbsorb consumes amount from live shield instances, oldest application
// first regardless of stacking group. Instances whose budget reaches zero are
// removed.
//
// Postcondition: Returns the absorbed amount, 0 <= absorbed <= max(amount, 0).
func (s *Set) DrainAbsorb(amount int, now int64) int {
	if amount <= 0 {
		return 0
	}
	s.prune(now)

	var shields []*Instance
	for _, inst := range s.instances {
		if inst.Absorb != nil && inst.Absorb.Remaining > 0 && !inst.Expired(now) {
			shields = append(shields, inst)
		}
	}
	slices.SortStableFunc(shields, func(a, b *Instance) int {
		if a.AppliedAt != b.AppliedAt {
			if a.AppliedAt < b.AppliedAt {
				return -1
			}
			return 1
		}
		if a.seq < b.seq {
			return -1
		}
		if a.seq > b.seq {
			return 1
		}
		return 0
	})

	absorbed := 0
	for _, inst := range shields {
		if amount == 0 {
			break
		}
		take := min(amount, inst.Absorb.Remaining)
		inst.Absorb.Remaining -= take
		amount -= take
		absorbed += take
	}
	s.removeWhere(func(i *Instance) bool {
		return i.Absorb != nil && i.Absorb.Remaining <= 0
	})
	return absorbed
}

// AbsorbRemaining returns the total live shield budget.
func (s *Set) AbsorbRemaining(now int64) int {
	total := 0
	for inst := range s.Active(now) {
		if inst.Absorb != nil {
			total += inst.Absorb.Remaining
		}
	}
	return total
}

// BreakOnDamage removes every live instance that incoming damage interrupts
// (break_on_damage, or tagged sleep, mez or incapacitate).
//
// Postcondition: Returns the effect ids removed, in application order.
func (s *Set) BreakOnDamage(now int64) []string {
	s.prune(now)
	var broken []string
	s.removeWhere(func(i *Instance) bool {
		if !i.breaksOnDamage() {
			return false
		}
		if !i.Expired(now) {
			broken = append(broken, i.EffectID)
		}
		return true
	})
	return broken
}
