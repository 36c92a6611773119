package session

import (
	"fmt"
	"sort"
	"sync"

	"github.com/cory-johannsen/combatcore/internal/game/combat"
)

// PlayerSession tracks a connected player's state.
type PlayerSession struct {
	// UID is the unique player identifier; it doubles as the combat entity id.
	UID      string
	CharName string
	// RoomID is the current room the player occupies.
	RoomID string
	Combat *combat.Participant
	Feed   *Feed
}

// PlayerSpec describes a player entering the world.
type PlayerSpec struct {
	UID          string
	CharName     string
	RoomID       string
	Level        int
	MaxHP        int
	Armor        int
	WeaponSkill  int
	DefenseSkill int
	Avoidance    combat.Avoidance
	Damage       string
}

// Manager tracks all active player sessions and room occupancy.
// All methods are safe for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	players  map[string]*PlayerSession  // uid → session
	roomSets map[string]map[string]bool // roomID → set of UIDs
}

// NewManager creates an empty session Manager.
func NewManager() *Manager {
	return &Manager{
		players:  make(map[string]*PlayerSession),
		roomSets: make(map[string]map[string]bool),
	}
}

// AddPlayer registers a new player in spec.RoomID with a fresh participant.
//
// Precondition: spec.UID and spec.RoomID must be non-empty; spec.MaxHP >= 1.
// Postcondition: Returns the created PlayerSession, or an error if the UID is already registered.
func (m *Manager) AddPlayer(spec PlayerSpec) (*PlayerSession, error) {
	if spec.UID == "" || spec.RoomID == "" {
		return nil, fmt.Errorf("session.Manager.AddPlayer: uid and room must not be empty")
	}
	if spec.MaxHP < 1 {
		return nil, fmt.Errorf("session.Manager.AddPlayer: max hp must be >= 1")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.players[spec.UID]; exists {
		return nil, fmt.Errorf("player %q already connected", spec.UID)
	}

	p := combat.NewParticipant(spec.UID, combat.KindPlayer, spec.CharName, spec.Level, spec.MaxHP)
	p.Armor = spec.Armor
	p.WeaponSkill = spec.WeaponSkill
	p.DefenseSkill = spec.DefenseSkill
	p.Avoidance = spec.Avoidance
	p.CanCrit = true
	if spec.Damage != "" {
		p.DamageDice = spec.Damage
	}

	sess := &PlayerSession{
		UID:      spec.UID,
		CharName: spec.CharName,
		RoomID:   spec.RoomID,
		Combat:   p,
		Feed:     NewFeed(spec.UID, 64),
	}
	m.players[spec.UID] = sess
	if m.roomSets[spec.RoomID] == nil {
		m.roomSets[spec.RoomID] = make(map[string]bool)
	}
	m.roomSets[spec.RoomID][spec.UID] = true
	return sess, nil
}

// RemovePlayer removes a player session and cleans up room occupancy.
//
// Postcondition: The player is removed from all tracking and its feed is
// closed. Returns an error if not found.
func (m *Manager) RemovePlayer(uid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, exists := m.players[uid]
	if !exists {
		return fmt.Errorf("player %q not found", uid)
	}
	if rs, ok := m.roomSets[sess.RoomID]; ok {
		delete(rs, uid)
		if len(rs) == 0 {
			delete(m.roomSets, sess.RoomID)
		}
	}
	_ = sess.Feed.Close()
	delete(m.players, uid)
	return nil
}

// MovePlayer moves a player from their current room to a new room.
//
// Postcondition: Returns the old room ID, or an error if the player is not found.
func (m *Manager) MovePlayer(uid, newRoomID string) (string, error) {
	if newRoomID == "" {
		return "", fmt.Errorf("session.Manager.MovePlayer: room must not be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	sess, exists := m.players[uid]
	if !exists {
		return "", fmt.Errorf("player %q not found", uid)
	}
	oldRoomID := sess.RoomID
	if rs, ok := m.roomSets[oldRoomID]; ok {
		delete(rs, uid)
		if len(rs) == 0 {
			delete(m.roomSets, oldRoomID)
		}
	}
	sess.RoomID = newRoomID
	if m.roomSets[newRoomID] == nil {
		m.roomSets[newRoomID] = make(map[string]bool)
	}
	m.roomSets[newRoomID][uid] = true
	return oldRoomID, nil
}

// PlayerUIDsInRoom returns the sorted UIDs of all players in the given room.
func (m *Manager) PlayerUIDsInRoom(roomID string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]string, 0, len(m.roomSets[roomID]))
	for uid := range m.roomSets[roomID] {
		result = append(result, uid)
	}
	sort.Strings(result)
	return result
}

// GetPlayer returns the session for the given UID.
//
// Postcondition: Returns (session, true) if found, or (nil, false) otherwise.
func (m *Manager) GetPlayer(uid string) (*PlayerSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.players[uid]
	return sess, ok
}

// All returns every session sorted by UID.
func (m *Manager) All() []*PlayerSession {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*PlayerSession, 0, len(m.players))
	for _, sess := range m.players {
		out = append(out, sess)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UID < out[j].UID })
	return out
}

// PlayerCount returns the total number of connected players.
func (m *Manager) PlayerCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.players)
}
