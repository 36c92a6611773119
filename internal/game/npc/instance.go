package npc

import (
	"slices"

	"github.com/cory-johannsen/combatcore/internal/game/combat"
	"github.com/cory-johannsen/combatcore/internal/game/threat"
)

// TagSocial marks opportunistic helpers that join any nearby fight.
const TagSocial = "social"

// Instance is a live NPC entity occupying a room.
type Instance struct {
	// ID uniquely identifies this runtime instance.
	ID string
	// TemplateID is the source template's ID.
	TemplateID  string
	Name        string
	Description string
	// RoomID is the room this instance currently occupies.
	RoomID  string
	GroupID string
	Tags    []string
	// Combat is the instance's participant in the combat core.
	Combat *combat.Participant
	// Threat is owned by this instance; reset on death or despawn.
	Threat *threat.State
}

// NewInstance creates a live NPC instance from a template, placed in roomID.
//
// Precondition: id must be non-empty; tmpl must be non-nil and validated.
// Postcondition: Combat.HP equals tmpl.MaxHP; Threat is empty.
func NewInstance(id string, tmpl *Template, roomID string) *Instance {
	p := combat.NewParticipant(id, combat.KindNPC, tmpl.Name, tmpl.Level, tmpl.MaxHP)
	p.Armor = tmpl.Armor
	p.WeaponSkill = tmpl.WeaponSkill
	p.DefenseSkill = tmpl.DefenseSkill
	p.Avoidance, _ = combat.ParseAvoidance(tmpl.Avoidance)
	p.CanRiposte = tmpl.Riposte
	p.CanCrit = tmpl.Crit
	p.CanMultiStrike = tmpl.MultiStrike
	if tmpl.Damage != "" {
		p.DamageDice = tmpl.Damage
	}
	if tmpl.DamageSchool != "" {
		p.DamageSchool = tmpl.DamageSchool
	}
	for school, v := range tmpl.Resists {
		p.Resists[school] = v
	}

	st := threat.NewState()
	return &Instance{
		ID:          id,
		TemplateID:  tmpl.ID,
		Name:        tmpl.Name,
		Description: tmpl.Description,
		RoomID:      roomID,
		GroupID:     tmpl.GroupID,
		Tags:        slices.Clone(tmpl.Tags),
		Combat:      p,
		Threat:      &st,
	}
}

// HasTag reports whether the instance carries tag.
func (i *Instance) HasTag(tag string) bool {
	return slices.Contains(i.Tags, tag)
}

// IsDead reports whether the instance has zero or fewer hit points.
func (i *Instance) IsDead() bool {
	return i.Combat.IsDead()
}

// IsEngaged reports whether the instance's threat table is non-empty.
func (i *Instance) IsEngaged() bool {
	return i.Threat.Engaged()
}

// HealthFraction returns HP/MaxHP in [0,1].
func (i *Instance) HealthFraction() float64 {
	if i.Combat.MaxHP <= 0 {
		return 0
	}
	return float64(max(i.Combat.HP, 0)) / float64(i.Combat.MaxHP)
}

// HealthDescription returns a visible health state string suitable for examine output.
//
// Postcondition: Returns a non-empty string.
func (i *Instance) HealthDescription() string {
	if i.IsDead() {
		return "dead"
	}
	pct := i.HealthFraction()
	switch {
	case pct >= 1.0:
		return "unharmed"
	case pct >= 0.85:
		return "barely scratched"
	case pct >= 0.60:
		return "lightly wounded"
	case pct >= 0.40:
		return "moderately wounded"
	case pct >= 0.20:
		return "heavily wounded"
	default:
		return "critically wounded"
	}
}

// ResetThreat replaces the threat table with a fresh one.
func (i *Instance) ResetThreat() {
	*i.Threat = threat.Clear(*i.Threat)
}
