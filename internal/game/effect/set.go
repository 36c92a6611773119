package effect

import (
	"iter"
	"slices"

	"github.com/google/uuid"

	"github.com/cory-johannsen/combatcore/internal/game/dice"
)

// Roll resolves a dice expression to a total. A nil Roll uses the
// expression's expected value so that applications stay deterministic.
type Roll func(expr string) int

// Set tracks every effect instance applied to one participant.
// It is not safe for concurrent use; the caller must serialise access.
type Set struct {
	instances []*Instance // application order
	seq       uint64
	newUID    func() string
	// ticking suspends pruning while Tick delivers due DOT ticks, so that an
	// instance expiring at now still fires its final tick.
	ticking bool
}

// NewSet creates an empty Set.
func NewSet() *Set {
	return &Set{newUID: uuid.NewString}
}

// Apply instantiates def on this set, or merges it into the live instance
// keyed by (src.ID, def.GroupKey()) according to def.Stacking.
//
// Precondition: def must not be nil and must have passed Validate.
// Postcondition: Returns the live instance holding the application;
// its Stacks never exceed its MaxStacks.
func (s *Set) Apply(def *Definition, src Source, now int64, roll Roll) *Instance {
	s.prune(now)
	if existing := s.find(src.ID, def.GroupKey()); existing != nil {
		switch policyOf(def) {
		case PolicyOverwrite:
			s.fill(existing, def, now, roll)
		case PolicyStack:
			existing.MaxStacks = maxStacksOf(def)
			if existing.Stacks < existing.MaxStacks {
				existing.Stacks++
				if existing.Absorb != nil && def.Absorb != nil {
					existing.Absorb.Total += def.Absorb.Amount
					existing.Absorb.Remaining += def.Absorb.Amount
				}
			}
			existing.ExpiresAt = expiryOf(def, now)
		default:
			existing.ExpiresAt = expiryOf(def, now)
		}
		return existing
	}

	s.seq++
	inst := &Instance{
		UID:       s.newUID(),
		EffectID:  def.ID,
		Source:    src,
		AppliedAt: now,
		Group:     def.GroupKey(),
		seq:       s.seq,
	}
	if inst.Source.Kind == "" {
		inst.Source.Kind = def.SourceKind
	}
	s.fill(inst, def, now, roll)
	s.instances = append(s.instances, inst)
	return inst
}

// fill writes the definition-derived fields of inst, leaving its identity
// (UID, AppliedAt, Source, sequence) untouched.
func (s *Set) fill(inst *Instance, def *Definition, now int64, roll Roll) {
	inst.Name = def.Name
	inst.Stacks = 1
	inst.MaxStacks = maxStacksOf(def)
	inst.ExpiresAt = expiryOf(def, now)
	inst.Modifiers = def.Modifiers
	inst.Tags = slices.Clone(def.Tags)
	inst.Policy = policyOf(def)
	inst.BreakOnDamage = def.BreakOnDamage
	inst.Dot = nil
	if def.Dot != nil {
		inst.Dot = &Dot{
			IntervalMs: def.Dot.IntervalMs,
			PerTick:    rollPerTick(def.Dot.Damage, roll),
			School:     def.Dot.School,
			NextTickAt: now + def.Dot.IntervalMs,
		}
		if inst.Dot.School == "" {
			inst.Dot.School = SchoolPhysical
		}
	}
	inst.Absorb = nil
	if def.Absorb != nil {
		inst.Absorb = &Absorb{Total: def.Absorb.Amount, Remaining: def.Absorb.Amount}
	}
}

// Active returns a restartable sequence over live instances in application
// order. Expired instances are pruned each time the sequence is ranged over.
func (s *Set) Active(now int64) iter.Seq[*Instance] {
	return func(yield func(*Instance) bool) {
		s.prune(now)
		for _, inst := range slices.Clone(s.instances) {
			if inst.Expired(now) {
				continue
			}
			if !yield(inst) {
				return
			}
		}
	}
}

// List returns the live instances at now as a slice.
func (s *Set) List(now int64) []*Instance {
	return slices.Collect(s.Active(now))
}

// Snapshot aggregates the modifiers of every live instance at now.
func (s *Set) Snapshot(now int64) Snapshot {
	s.prune(now)
	return s.liveSnapshot(now)
}

// liveSnapshot aggregates without pruning, skipping expired instances.
func (s *Set) liveSnapshot(now int64) Snapshot {
	snap := newSnapshot()
	for _, inst := range s.instances {
		if inst.Expired(now) {
			continue
		}
		snap.add(inst.Modifiers, inst.Stacks)
	}
	return snap
}

// Has reports whether an instance of effectID is live at now.
func (s *Set) Has(effectID string, now int64) bool {
	for inst := range s.Active(now) {
		if inst.EffectID == effectID {
			return true
		}
	}
	return false
}

// HasTag reports whether any live instance carries tag.
func (s *Set) HasTag(tag string, now int64) bool {
	for inst := range s.Active(now) {
		if inst.HasTag(tag) {
			return true
		}
	}
	return false
}

// Len returns the number of stored instances, including not-yet-pruned ones.
func (s *Set) Len() int { return len(s.instances) }

// Remove deletes every instance of effectID and returns how many were removed.
func (s *Set) Remove(effectID string) int {
	return s.removeWhere(func(i *Instance) bool { return i.EffectID == effectID })
}

// RemoveBySource deletes every instance applied by sourceID.
func (s *Set) RemoveBySource(sourceID string) int {
	return s.removeWhere(func(i *Instance) bool { return i.Source.ID == sourceID })
}

// Clear removes every instance.
func (s *Set) Clear() {
	s.removeWhere(func(*Instance) bool { return true })
}

func (s *Set) removeWhere(match func(*Instance) bool) int {
	n := 0
	s.instances = slices.DeleteFunc(s.instances, func(i *Instance) bool {
		if match(i) {
			i.removed = true
			n++
			return true
		}
		return false
	})
	return n
}

func (s *Set) prune(now int64) {
	if s.ticking {
		return
	}
	s.removeWhere(func(i *Instance) bool { return i.Expired(now) })
}

func (s *Set) find(sourceID, group string) *Instance {
	for _, inst := range s.instances {
		if inst.Source.ID == sourceID && inst.Group == group {
			return inst
		}
	}
	return nil
}

func policyOf(def *Definition) Policy {
	switch def.Stacking {
	case PolicyOverwrite, PolicyStack:
		return def.Stacking
	default:
		return PolicyRefresh
	}
}

func maxStacksOf(def *Definition) int {
	if def.MaxStacks < 1 {
		return 1
	}
	return def.MaxStacks
}

func expiryOf(def *Definition, now int64) int64 {
	if def.DurationMs <= 0 {
		return 0
	}
	return now + def.DurationMs
}

func rollPerTick(expr string, roll Roll) int {
	var n int
	if roll != nil {
		n = roll(expr)
	} else if e, err := dice.Parse(expr); err == nil {
		n = e.Count*(e.Sides+1)/2 + e.Modifier
	}
	return max(n, 0)
}
