package gameserver

import (
	"fmt"

	"github.com/cory-johannsen/combatcore/internal/game/combat"
)

// Narrate returns the one-line feed text for a strike.
//
// Postcondition: Returns a non-empty string.
func Narrate(attacker, defender string, outcome combat.Outcome, dmg combat.DamageResult) string {
	var s string
	switch outcome {
	case combat.Miss:
		return fmt.Sprintf("%s swings at %s and misses.", attacker, defender)
	case combat.Dodged:
		return fmt.Sprintf("%s dodges %s's attack.", defender, attacker)
	case combat.Parried:
		return fmt.Sprintf("%s parries %s's attack.", defender, attacker)
	case combat.Blocked:
		s = fmt.Sprintf("%s blocks part of %s's attack, taking %d damage.", defender, attacker, dmg.HPLoss)
	case combat.Crit:
		s = fmt.Sprintf("%s critically hits %s for %d damage!", attacker, defender, dmg.HPLoss)
	default:
		s = fmt.Sprintf("%s hits %s for %d damage.", attacker, defender, dmg.HPLoss)
	}
	if dmg.Absorbed > 0 {
		s += fmt.Sprintf(" (%d absorbed)", dmg.Absorbed)
	}
	if dmg.Killed {
		s += fmt.Sprintf(" %s dies.", defender)
	}
	return s
}
