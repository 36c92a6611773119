// Package combat implements hit resolution and the damage pipeline for the
// combat simulation core. Every function here is a synchronous
// transformation of the state handed to it; timestamps come from the caller.
package combat

import (
	"github.com/cory-johannsen/combatcore/internal/game/effect"
)

// Kind distinguishes player participants from NPC participants.
type Kind int

const (
	KindPlayer Kind = iota
	KindNPC
)

// String returns "player" or "npc".
func (k Kind) String() string {
	if k == KindPlayer {
		return "player"
	}
	return "npc"
}

// School aliases the damage school shared with the effect engine.
type School = effect.School

// Participant is one player or NPC taking part in combat. It is owned by the
// entity registry; the combat core only borrows it for the duration of a call.
type Participant struct {
	ID    string
	Kind  Kind
	Name  string
	HP    int
	MaxHP int
	// Alive is cleared the moment HP reaches zero through ApplyDamage.
	Alive        bool
	Armor        int
	Level        int
	Resists      map[School]int
	WeaponSkill  int
	DefenseSkill int
	Avoidance    Avoidance
	// CanCrit, CanRiposte and CanMultiStrike gate the optional hit branches.
	CanCrit        bool
	CanRiposte     bool
	CanMultiStrike bool
	// DamageDice is the base weapon damage expression, e.g. "1d8+2".
	DamageDice   string
	DamageSchool School
	Effects      *effect.Set
}

// NewParticipant creates a living participant at full health with an empty effect set.
//
// Precondition: id must be non-empty; maxHP >= 1.
// Postcondition: HP == MaxHP; Alive is true; Effects is non-nil.
func NewParticipant(id string, kind Kind, name string, level, maxHP int) *Participant {
	return &Participant{
		ID:           id,
		Kind:         kind,
		Name:         name,
		HP:           maxHP,
		MaxHP:        maxHP,
		Alive:        true,
		Level:        max(level, 1),
		Resists:      make(map[School]int),
		DamageDice:   "1d4",
		DamageSchool: effect.SchoolPhysical,
		Effects:      effect.NewSet(),
	}
}

// IsPlayer reports whether this participant is a player character.
func (p *Participant) IsPlayer() bool { return p.Kind == KindPlayer }

// IsDead reports whether the participant is dead.
func (p *Participant) IsDead() bool { return !p.Alive || p.HP <= 0 }

// Heal restores up to amount hit points on a living participant.
//
// Postcondition: HP <= MaxHP; returns the amount actually restored.
func Heal(p *Participant, amount int) int {
	if p.IsDead() || amount <= 0 {
		return 0
	}
	before := p.HP
	p.HP = min(p.HP+amount, p.MaxHP)
	return p.HP - before
}
