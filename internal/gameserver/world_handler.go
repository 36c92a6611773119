package gameserver

import (
	"fmt"

	"github.com/cory-johannsen/combatcore/internal/game/session"
	"github.com/cory-johannsen/combatcore/internal/game/world"
)

// WorldHandler handles player movement and room inspection.
//
// Every method runs under the combat handler's lock, so movement and room
// views never interleave with a strike or a simulation tick.
type WorldHandler struct {
	world    *world.Manager
	combat   *CombatHandler
	entities *Entities
}

// NewWorldHandler creates a WorldHandler sharing h's entities and lock.
//
// Precondition: worldMgr and h must be non-nil.
func NewWorldHandler(worldMgr *world.Manager, h *CombatHandler) *WorldHandler {
	return &WorldHandler{world: worldMgr, combat: h, entities: h.entities}
}

// PlayerStatus is a consistent snapshot of one player.
type PlayerStatus struct {
	UID    string
	RoomID string
	HP     int
	MaxHP  int
	Dead   bool
}

// RoomView is what a player sees in a room.
type RoomView struct {
	RoomID  string    `json:"room_id"`
	Title   string    `json:"title"`
	Safe    bool      `json:"safe"`
	Exits   []string  `json:"exits"`
	NPCs    []NPCView `json:"npcs"`
	Players []string  `json:"players"`
}

// MoveResult holds the result of a Move including the room left behind.
type MoveResult struct {
	OldRoomID string
	View      RoomView
}

// Move moves the player through the exit in dir. NPC threat tables keep the
// player; target selection drops them while they are out of the room.
//
// Precondition: uid must be a registered player.
// Postcondition: Returns MoveResult or an error if movement fails.
func (h *WorldHandler) Move(uid string, dir world.Direction) (MoveResult, error) {
	h.combat.mu.Lock()
	defer h.combat.mu.Unlock()
	sess, ok := h.entities.sessions.GetPlayer(uid)
	if !ok {
		return MoveResult{}, fmt.Errorf("player %q not found", uid)
	}
	if sess.Combat.IsDead() {
		return MoveResult{}, fmt.Errorf("%s is dead", sess.CharName)
	}
	dest, err := h.world.Navigate(sess.RoomID, dir)
	if err != nil {
		return MoveResult{}, err
	}
	oldRoomID, err := h.entities.sessions.MovePlayer(uid, dest.ID)
	if err != nil {
		return MoveResult{}, fmt.Errorf("moving player: %w", err)
	}
	return MoveResult{OldRoomID: oldRoomID, View: h.buildRoomView(dest)}, nil
}

// Look returns the player's current room view.
//
// Postcondition: Returns the RoomView or an error if the player/room is not found.
func (h *WorldHandler) Look(uid string) (RoomView, error) {
	h.combat.mu.Lock()
	defer h.combat.mu.Unlock()
	sess, ok := h.entities.sessions.GetPlayer(uid)
	if !ok {
		return RoomView{}, fmt.Errorf("player %q not found", uid)
	}
	room, ok := h.world.GetRoom(sess.RoomID)
	if !ok {
		return RoomView{}, fmt.Errorf("room %q not found", sess.RoomID)
	}
	return h.buildRoomView(room), nil
}

// Leave removes a player from the world and from every NPC threat table.
func (h *WorldHandler) Leave(uid string) error {
	h.combat.mu.Lock()
	defer h.combat.mu.Unlock()
	if err := h.entities.sessions.RemovePlayer(uid); err != nil {
		return err
	}
	h.entities.npcs.ForgetAttacker(uid)
	return nil
}

// Join registers a player at spec.RoomID.
//
// Postcondition: Returns an error when the room is unknown or the UID is taken.
func (h *WorldHandler) Join(spec session.PlayerSpec) (*session.PlayerSession, error) {
	h.combat.mu.Lock()
	defer h.combat.mu.Unlock()
	if _, ok := h.world.GetRoom(spec.RoomID); !ok {
		return nil, fmt.Errorf("room %q not found", spec.RoomID)
	}
	return h.entities.sessions.AddPlayer(spec)
}

// Status returns uid's room and health.
//
// Postcondition: Returns an error if uid is not a registered player.
func (h *WorldHandler) Status(uid string) (PlayerStatus, error) {
	h.combat.mu.Lock()
	defer h.combat.mu.Unlock()
	sess, ok := h.entities.sessions.GetPlayer(uid)
	if !ok {
		return PlayerStatus{}, fmt.Errorf("player %q not found", uid)
	}
	return PlayerStatus{
		UID:    uid,
		RoomID: sess.RoomID,
		HP:     sess.Combat.HP,
		MaxHP:  sess.Combat.MaxHP,
		Dead:   sess.Combat.IsDead(),
	}, nil
}

// buildRoomView must be called with the combat handler's lock held.
func (h *WorldHandler) buildRoomView(room *world.Room) RoomView {
	view := RoomView{
		RoomID:  room.ID,
		Title:   room.Title,
		Safe:    room.IsSafe(),
		Exits:   make([]string, 0, len(room.Exits)),
		Players: h.entities.sessions.PlayerUIDsInRoom(room.ID),
	}
	for _, e := range room.Exits {
		name := string(e.Direction)
		if e.Locked {
			name += " (locked)"
		}
		view.Exits = append(view.Exits, name)
	}
	for _, inst := range h.entities.npcs.InstancesInRoom(room.ID) {
		if v, err := h.entities.Examine(inst.ID); err == nil {
			view.NPCs = append(view.NPCs, v)
		}
	}
	return view
}
