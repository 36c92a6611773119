package gameserver

import (
	"github.com/cory-johannsen/combatcore/internal/game/effect"
	"github.com/cory-johannsen/combatcore/internal/game/threat"
)

// Reasons a RoomValidator rejects a target.
const (
	ReasonGone      = "gone"
	ReasonDead      = "dead"
	ReasonOutOfRoom = "out_of_room"
	ReasonStealthed = "stealthed"
)

// RoomValidator accepts targets that exist, are alive, share roomID and are
// not hidden by a stealth effect at now.
func RoomValidator(e *Entities, roomID string, now int64) threat.Validator {
	return threat.ValidatorFunc(func(id string) threat.Verdict {
		p, room, ok := e.Lookup(id)
		switch {
		case !ok:
			return threat.Invalid(ReasonGone)
		case p.IsDead():
			return threat.Invalid(ReasonDead)
		case room != roomID:
			return threat.Invalid(ReasonOutOfRoom)
		case p.Effects.HasTag(effect.TagStealth, now):
			return threat.Invalid(ReasonStealthed)
		}
		return threat.Valid
	})
}
