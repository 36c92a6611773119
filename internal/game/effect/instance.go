package effect

import "slices"

// School is a damage school ("physical", "fire", ...).
type School string

// Well-known damage schools.
const (
	SchoolPhysical School = "physical"
	SchoolFire     School = "fire"
	SchoolFrost    School = "frost"
	SchoolPoison   School = "poison"
	SchoolArcane   School = "arcane"
)

// Policy selects how a re-application merges with an existing instance.
type Policy string

const (
	// PolicyRefresh extends expiry without touching stacks or payloads.
	PolicyRefresh Policy = "refresh"
	// PolicyOverwrite replaces duration and payloads but keeps instance identity.
	PolicyOverwrite Policy = "overwrite"
	// PolicyStack adds one stack up to the cap and extends expiry.
	PolicyStack Policy = "stack"
)

// SourceKind classifies where an effect came from.
type SourceKind string

const (
	SourceSpell       SourceKind = "spell"
	SourceItem        SourceKind = "item"
	SourceEnvironment SourceKind = "environment"
)

// Source identifies the origin of an application. ID is usually the caster's
// entity id; two casters applying the same effect hold independent instances.
type Source struct {
	Kind SourceKind
	ID   string
}

// Classification tags.
const (
	TagDebuff       = "debuff"
	TagShield       = "shield"
	TagDot          = "dot"
	TagSleep        = "sleep"
	TagMez          = "mez"
	TagIncapacitate = "incapacitate"
	TagStealth      = "stealth"
)

// Dot is the live schedule of a damage-over-time instance.
type Dot struct {
	IntervalMs int64
	// PerTick is fixed when the effect is applied.
	PerTick    int
	School     School
	NextTickAt int64
}

// Absorb is the live budget of a shield instance.
type Absorb struct {
	Total     int
	Remaining int
}

// Instance is one applied effect on one participant.
//
// Invariant: 1 <= Stacks <= MaxStacks; Absorb.Remaining >= 0.
type Instance struct {
	UID           string
	EffectID      string
	Name          string
	Source        Source
	Stacks        int
	MaxStacks     int
	AppliedAt     int64
	ExpiresAt     int64 // 0 = permanent
	Modifiers     Modifiers
	Tags          []string
	Group         string
	Policy        Policy
	BreakOnDamage bool
	Dot           *Dot
	Absorb        *Absorb

	seq     uint64
	removed bool
}

// Expired reports whether the instance is no longer live at now.
func (i *Instance) Expired(now int64) bool {
	return i.ExpiresAt > 0 && now >= i.ExpiresAt
}

// HasTag reports whether the instance carries tag.
func (i *Instance) HasTag(tag string) bool {
	return slices.Contains(i.Tags, tag)
}

// breaksOnDamage reports whether incoming damage removes this instance.
func (i *Instance) breaksOnDamage() bool {
	return i.BreakOnDamage || i.HasTag(TagSleep) || i.HasTag(TagMez) || i.HasTag(TagIncapacitate)
}

// RemainingMs returns the time left before expiry, or -1 for permanent effects.
func (i *Instance) RemainingMs(now int64) int64 {
	if i.ExpiresAt == 0 {
		return -1
	}
	if now >= i.ExpiresAt {
		return 0
	}
	return i.ExpiresAt - now
}
