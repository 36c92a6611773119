package gameserver

import (
	"fmt"

	"github.com/cory-johannsen/combatcore/internal/game/assist"
	"github.com/cory-johannsen/combatcore/internal/game/threat"
)

// EffectView is the operator view of one active effect.
type EffectView struct {
	UID         string `json:"uid"`
	EffectID    string `json:"effect_id"`
	Name        string `json:"name"`
	SourceID    string `json:"source_id,omitempty"`
	Stacks      int    `json:"stacks"`
	RemainingMs int64  `json:"remaining_ms"`
	AbsorbLeft  int    `json:"absorb_left,omitempty"`
	NextDotAt   int64  `json:"next_dot_at,omitempty"`
}

// DebugThreat returns npcID's threat table and current target.
func (h *CombatHandler) DebugThreat(npcID string) (threat.DebugView, string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	view, ok := h.entities.npcs.Threat(npcID)
	if !ok {
		return threat.DebugView{}, "", fmt.Errorf("npc %q not found", npcID)
	}
	return view, h.targets[npcID], nil
}

// Examine returns the detail view of npcID.
func (h *CombatHandler) Examine(npcID string) (NPCView, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entities.Examine(npcID)
}

// DebugEffects lists the effects live on entityID at now.
func (h *CombatHandler) DebugEffects(entityID string, now int64) ([]EffectView, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, _, ok := h.entities.Lookup(entityID)
	if !ok {
		return nil, fmt.Errorf("entity %q not found", entityID)
	}
	var out []EffectView
	for _, inst := range p.Effects.List(now) {
		v := EffectView{
			UID:         inst.UID,
			EffectID:    inst.EffectID,
			Name:        inst.Name,
			SourceID:    inst.Source.ID,
			Stacks:      inst.Stacks,
			RemainingMs: inst.RemainingMs(now),
		}
		if inst.Absorb != nil {
			v.AbsorbLeft = inst.Absorb.Remaining
		}
		if inst.Dot != nil {
			v.NextDotAt = inst.Dot.NextTickAt
		}
		out = append(out, v)
	}
	return out, nil
}

// DebugAlerts lists the running call-for-help alerts.
func (h *CombatHandler) DebugAlerts() []assist.AlertStatus {
	return h.alerts.Pending()
}

// DebugSetThreat overwrites attackerID's threat on npcID. Operator tooling only.
func (h *CombatHandler) DebugSetThreat(npcID, attackerID string, score float64, now int64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	inst, ok := h.entities.npcs.Get(npcID)
	if !ok {
		return fmt.Errorf("npc %q not found", npcID)
	}
	threat.DebugSetScore(inst.Threat, attackerID, score, now)
	return nil
}

// DebugForceTarget forces npcID onto targetID for durationMs. Operator tooling only.
func (h *CombatHandler) DebugForceTarget(npcID, targetID string, durationMs, now int64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	inst, ok := h.entities.npcs.Get(npcID)
	if !ok {
		return fmt.Errorf("npc %q not found", npcID)
	}
	*inst.Threat = threat.ForceTarget(*inst.Threat, targetID, durationMs, now)
	return nil
}
