package gameserver

import (
	"fmt"

	"github.com/cory-johannsen/combatcore/internal/game/combat"
	"github.com/cory-johannsen/combatcore/internal/game/npc"
	"github.com/cory-johannsen/combatcore/internal/game/session"
	"github.com/cory-johannsen/combatcore/internal/game/threat"
)

// Entities resolves participant ids across the NPC and player registries.
type Entities struct {
	npcs     *npc.Manager
	sessions *session.Manager
}

// NewEntities creates an Entities view.
//
// Precondition: npcs and sessions must be non-nil.
func NewEntities(npcs *npc.Manager, sessions *session.Manager) *Entities {
	return &Entities{npcs: npcs, sessions: sessions}
}

// NPCs returns the NPC registry.
func (e *Entities) NPCs() *npc.Manager { return e.npcs }

// Sessions returns the player registry.
func (e *Entities) Sessions() *session.Manager { return e.sessions }

// Lookup returns the participant for id and the room it occupies.
// NPC ids are checked before player UIDs.
func (e *Entities) Lookup(id string) (*combat.Participant, string, bool) {
	if inst, ok := e.npcs.Get(id); ok {
		return inst.Combat, inst.RoomID, true
	}
	if sess, ok := e.sessions.GetPlayer(id); ok {
		return sess.Combat, sess.RoomID, true
	}
	return nil, "", false
}

// Participants returns every living NPC followed by every living player.
func (e *Entities) Participants() []*combat.Participant {
	var out []*combat.Participant
	for _, inst := range e.npcs.All() {
		if !inst.IsDead() {
			out = append(out, inst.Combat)
		}
	}
	for _, sess := range e.sessions.All() {
		if !sess.Combat.IsDead() {
			out = append(out, sess.Combat)
		}
	}
	return out
}

// NPCView is the examine view of an NPC.
type NPCView struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Health      string           `json:"health"`
	Level       int              `json:"level"`
	RoomID      string           `json:"room_id"`
	Engaged     bool             `json:"engaged"`
	Threat      threat.DebugView `json:"threat"`
}

// Examine returns the detail view of npcID. The caller must hold the combat
// handler's lock; CombatHandler.Examine does so.
//
// Postcondition: Returns an error if npcID is unknown.
func (e *Entities) Examine(npcID string) (NPCView, error) {
	inst, ok := e.npcs.Get(npcID)
	if !ok {
		return NPCView{}, fmt.Errorf("npc %q not found", npcID)
	}
	return NPCView{
		ID:          inst.ID,
		Name:        inst.Name,
		Description: inst.Description,
		Health:      inst.HealthDescription(),
		Level:       inst.Combat.Level,
		RoomID:      inst.RoomID,
		Engaged:     inst.IsEngaged(),
		Threat:      threat.Debug(inst.Threat),
	}, nil
}
