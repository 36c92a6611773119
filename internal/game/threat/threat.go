// Package threat owns each NPC's per-attacker threat scores and selects the
// NPC's current target, honoring a time-boxed forced-target override.
//
// A State belongs to exactly one NPC. Its Scores map is shared between
// copies, so only the owning NPC's code path may record damage into it.
package threat

import (
	"math"
	"sort"
)

// Entry is one attacker's accumulated threat.
type Entry struct {
	Score float64
	// LastAt is the timestamp of the attacker's most recent contribution.
	LastAt int64
	// Seq orders contributions within one state; higher is more recent.
	Seq uint64
}

// State is the threat table of one NPC.
//
// The ForcedCleared* fields are audit breadcrumbs. They are written once per
// clear event, alongside the clear, and are never read by selection.
type State struct {
	Scores       map[string]*Entry
	LastAttacker string
	LastAggroAt  int64

	ForcedTarget string
	ForcedUntil  int64

	ForcedClearedAt             int64
	ForcedClearedReason         string
	ForcedClearedTargetEntityID string

	seq uint64
}

// Reasons stamped into ForcedClearedReason by the selector itself.
const (
	ReasonExpired = "expired"
	ReasonInvalid = "invalid"
)

// NewState creates an empty threat table.
func NewState() State {
	return State{Scores: make(map[string]*Entry)}
}

// DamageToThreat converts a damage amount to threat.
//
// Postcondition: Returns >= 0.
func DamageToThreat(amount int, multiplier float64) float64 {
	v := float64(amount) * multiplier
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	return v
}

// RecordDamage adds amount to attackerID's score and marks it the last attacker.
// Negative amounts clamp to zero; an empty attacker id is ignored.
func (s *State) RecordDamage(attackerID string, amount float64, now int64) {
	if attackerID == "" {
		return
	}
	if s.Scores == nil {
		s.Scores = make(map[string]*Entry)
	}
	if amount < 0 || math.IsNaN(amount) {
		amount = 0
	}
	s.seq++
	e, ok := s.Scores[attackerID]
	if !ok {
		e = &Entry{}
		s.Scores[attackerID] = e
	}
	e.Score += amount
	e.LastAt = now
	e.Seq = s.seq
	s.LastAttacker = attackerID
	s.LastAggroAt = now
}

// Remove drops attackerID from the table.
func (s *State) Remove(attackerID string) {
	delete(s.Scores, attackerID)
	if s.LastAttacker == attackerID {
		s.LastAttacker = ""
	}
}

// Engaged reports whether the table holds any attacker.
func (s *State) Engaged() bool { return len(s.Scores) > 0 }

// Score returns attackerID's current threat.
func (s *State) Score(attackerID string) float64 {
	if e, ok := s.Scores[attackerID]; ok {
		return e.Score
	}
	return 0
}

// Verdict is the answer of a target validity check.
type Verdict struct {
	OK     bool
	Reason string
}

// Valid is the accepting verdict.
var Valid = Verdict{OK: true}

// Invalid returns a rejecting verdict carrying reason.
func Invalid(reason string) Verdict { return Verdict{Reason: reason} }

// Validator decides whether an entity may currently be targeted
// (stealth, room membership, protection, death).
type Validator interface {
	IsValidCombatTarget(entityID string) Verdict
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc func(entityID string) Verdict

// IsValidCombatTarget calls f.
func (f ValidatorFunc) IsValidCombatTarget(entityID string) Verdict { return f(entityID) }

func check(v Validator, id string) Verdict {
	if v == nil {
		return Valid
	}
	return v.IsValidCombatTarget(id)
}

// SelectTarget picks the NPC's target at now.
//
// An unexpired, valid forced target wins outright. An expired or invalid
// forced target is cleared and the clear is stamped into the breadcrumb
// fields in the same step. Otherwise the highest score among valid entries
// wins; ties go to the most recent attacker and then to the lower id.
//
// Postcondition: Returns "" when no valid entry exists; the returned State
// never carries a dangling forced target.
func SelectTarget(s State, now int64, v Validator) (string, State) {
	if s.ForcedTarget != "" {
		reason := ""
		if now >= s.ForcedUntil {
			reason = ReasonExpired
		} else if verdict := check(v, s.ForcedTarget); !verdict.OK {
			reason = verdict.Reason
			if reason == "" {
				reason = ReasonInvalid
			}
		}
		if reason == "" {
			return s.ForcedTarget, s
		}
		s.ForcedClearedAt = now
		s.ForcedClearedReason = reason
		s.ForcedClearedTargetEntityID = s.ForcedTarget
		s.ForcedTarget = ""
		s.ForcedUntil = 0
	}

	best := ""
	var bestEntry *Entry
	for id, e := range s.Scores {
		if !check(v, id).OK {
			continue
		}
		if bestEntry == nil || outranks(id, e, best, bestEntry) {
			best, bestEntry = id, e
		}
	}
	return best, s
}

func outranks(id string, e *Entry, otherID string, other *Entry) bool {
	if e.Score != other.Score {
		return e.Score > other.Score
	}
	if e.Seq != other.Seq {
		return e.Seq > other.Seq
	}
	return id < otherID
}

// ForceTarget installs a forced target until now+durationMs. A new
// assignment resets the breadcrumb fields. A non-positive duration or an
// empty target leaves s unchanged.
func ForceTarget(s State, targetID string, durationMs, now int64) State {
	if targetID == "" || durationMs <= 0 {
		return s
	}
	s.ForcedTarget = targetID
	s.ForcedUntil = now + durationMs
	s.ForcedClearedAt = 0
	s.ForcedClearedReason = ""
	s.ForcedClearedTargetEntityID = ""
	return s
}

// Clear returns a fresh table, as on NPC death or despawn.
func Clear(State) State { return NewState() }

// Ranked is one row of a sorted threat listing.
type Ranked struct {
	EntityID string
	Score    float64
	LastAt   int64
}

// Top returns up to n entries in selection order, ignoring validity.
// n <= 0 returns every entry.
func (s *State) Top(n int) []Ranked {
	ids := make([]string, 0, len(s.Scores))
	for id := range s.Scores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return outranks(ids[i], s.Scores[ids[i]], ids[j], s.Scores[ids[j]])
	})
	if n > 0 && len(ids) > n {
		ids = ids[:n]
	}
	out := make([]Ranked, len(ids))
	for i, id := range ids {
		e := s.Scores[id]
		out[i] = Ranked{EntityID: id, Score: e.Score, LastAt: e.LastAt}
	}
	return out
}
