package threat

// DebugView is a read-only snapshot of a threat table for operator tooling.
type DebugView struct {
	Entries      []Ranked `json:"entries"`
	LastAttacker string   `json:"last_attacker,omitempty"`
	LastAggroAt  int64    `json:"last_aggro_at,omitempty"`
	ForcedTarget string   `json:"forced_target,omitempty"`
	ForcedUntil  int64    `json:"forced_until,omitempty"`

	ForcedClearedAt             int64  `json:"forced_cleared_at,omitempty"`
	ForcedClearedReason         string `json:"forced_cleared_reason,omitempty"`
	ForcedClearedTargetEntityID string `json:"forced_cleared_target_entity_id,omitempty"`
}

// Debug copies s into a DebugView without mutating it.
func Debug(s *State) DebugView {
	return DebugView{
		Entries:                     s.Top(0),
		LastAttacker:                s.LastAttacker,
		LastAggroAt:                 s.LastAggroAt,
		ForcedTarget:                s.ForcedTarget,
		ForcedUntil:                 s.ForcedUntil,
		ForcedClearedAt:             s.ForcedClearedAt,
		ForcedClearedReason:         s.ForcedClearedReason,
		ForcedClearedTargetEntityID: s.ForcedClearedTargetEntityID,
	}
}

// DebugSetScore overwrites attackerID's score. It exists for operator
// tooling only; gameplay paths use RecordDamage.
func DebugSetScore(s *State, attackerID string, score float64, now int64) {
	if attackerID == "" {
		return
	}
	s.RecordDamage(attackerID, 0, now)
	s.Scores[attackerID].Score = max(score, 0)
}
