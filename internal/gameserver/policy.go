package gameserver

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/combatcore/internal/game/combat"
	"github.com/cory-johannsen/combatcore/internal/game/world"
)

// ErrAttackRefused is wrapped by every error a DamagePolicy returns.
var ErrAttackRefused = errors.New("attack refused")

// DamagePolicy decides whether attacker may strike defender in roomID.
type DamagePolicy interface {
	AllowAttack(roomID string, attacker, defender *combat.Participant) error
}

// PolicyFunc adapts a function to DamagePolicy.
type PolicyFunc func(roomID string, attacker, defender *combat.Participant) error

// AllowAttack calls f.
func (f PolicyFunc) AllowAttack(roomID string, attacker, defender *combat.Participant) error {
	return f(roomID, attacker, defender)
}

// AllowAll permits every attack.
var AllowAll DamagePolicy = PolicyFunc(func(string, *combat.Participant, *combat.Participant) error { return nil })

// RoomLookup resolves rooms by id.
type RoomLookup interface {
	GetRoom(id string) (*world.Room, bool)
}

// SafeRoomPolicy refuses attacks inside rooms marked safe and, optionally,
// attacks between two players anywhere.
type SafeRoomPolicy struct {
	Rooms        RoomLookup
	AllowPlayers bool
}

// AllowAttack implements DamagePolicy.
func (p SafeRoomPolicy) AllowAttack(roomID string, attacker, defender *combat.Participant) error {
	if room, ok := p.Rooms.GetRoom(roomID); ok && room.IsSafe() {
		return fmt.Errorf("%w: %s is a safe room", ErrAttackRefused, roomID)
	}
	if !p.AllowPlayers && attacker.IsPlayer() && defender.IsPlayer() {
		return fmt.Errorf("%w: player versus player is disabled", ErrAttackRefused)
	}
	return nil
}
