package world

import (
	"fmt"
	"sort"
	"sync"
)

// Manager provides thread-safe access to the loaded world state.
// It indexes rooms across all zones for O(1) lookup by room ID.
type Manager struct {
	mu    sync.RWMutex
	zones map[string]*Zone
	rooms map[string]*Room
}

// NewManager creates a Manager from the given zones.
//
// Postcondition: Returns a Manager with all rooms indexed by ID, or an error
// on duplicate zone or room IDs.
func NewManager(zones []*Zone) (*Manager, error) {
	m := &Manager{
		zones: make(map[string]*Zone, len(zones)),
		rooms: make(map[string]*Room),
	}
	for _, z := range zones {
		if _, exists := m.zones[z.ID]; exists {
			return nil, fmt.Errorf("duplicate zone ID: %q", z.ID)
		}
		m.zones[z.ID] = z
		for id, room := range z.Rooms {
			if existing, exists := m.rooms[id]; exists {
				return nil, fmt.Errorf("duplicate room ID %q: in zone %q and %q", id, existing.ZoneID, z.ID)
			}
			m.rooms[id] = room
		}
	}
	return m, nil
}

// ValidateExits checks that every exit target resolves to a known room
// across all loaded zones.
//
// Postcondition: Returns nil if all exits resolve, or an error naming the first dangling target.
func (m *Manager) ValidateExits() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range m.sortedRoomIDs() {
		room := m.rooms[id]
		for _, exit := range room.Exits {
			if _, ok := m.rooms[exit.TargetRoom]; !ok {
				return fmt.Errorf("zone %q: room %q: exit %q targets unknown room %q",
					room.ZoneID, room.ID, exit.Direction, exit.TargetRoom)
			}
		}
	}
	return nil
}

// GetRoom returns the room with the given ID.
//
// Postcondition: Returns (room, true) if found, or (nil, false) otherwise.
func (m *Manager) GetRoom(id string) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[id]
	return r, ok
}

// Navigate returns the room reached by taking dir out of fromID.
//
// Postcondition: Returns an error when the room or exit is unknown or the exit is locked.
func (m *Manager) Navigate(fromID string, dir Direction) (*Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	from, ok := m.rooms[fromID]
	if !ok {
		return nil, fmt.Errorf("room %q not found", fromID)
	}
	for _, exit := range from.Exits {
		if exit.Direction != dir {
			continue
		}
		if exit.Locked {
			return nil, fmt.Errorf("the way %s is locked", dir)
		}
		dest, ok := m.rooms[exit.TargetRoom]
		if !ok {
			return nil, fmt.Errorf("exit %s leads to unknown room %q", dir, exit.TargetRoom)
		}
		return dest, nil
	}
	return nil, fmt.Errorf("you can't go %s from here", dir)
}

// RoomsWithin returns every room reachable from roomID through at most
// radius exits, roomID itself first, then ordered by distance and room ID.
// Exits are followed in their declared direction, locked or not.
//
// Postcondition: Returns nil when roomID is unknown; radius < 0 is treated as 0.
func (m *Manager) RoomsWithin(roomID string, radius int) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.rooms[roomID]; !ok {
		return nil
	}
	seen := map[string]bool{roomID: true}
	out := []string{roomID}
	frontier := []string{roomID}
	for depth := 0; depth < radius && len(frontier) > 0; depth++ {
		var next []string
		for _, id := range frontier {
			for _, exit := range m.rooms[id].Exits {
				if seen[exit.TargetRoom] {
					continue
				}
				if _, ok := m.rooms[exit.TargetRoom]; !ok {
					continue
				}
				seen[exit.TargetRoom] = true
				next = append(next, exit.TargetRoom)
			}
		}
		sort.Strings(next)
		out = append(out, next...)
		frontier = next
	}
	return out
}

// SpawnRules returns every room's spawn configuration keyed by room ID.
func (m *Manager) SpawnRules() map[string][]RoomSpawnConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string][]RoomSpawnConfig)
	for id, room := range m.rooms {
		if len(room.Spawns) > 0 {
			out[id] = append([]RoomSpawnConfig(nil), room.Spawns...)
		}
	}
	return out
}

// RoomCount returns the total number of rooms across all zones.
func (m *Manager) RoomCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

// ZoneCount returns the number of loaded zones.
func (m *Manager) ZoneCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.zones)
}

func (m *Manager) sortedRoomIDs() []string {
	ids := make([]string, 0, len(m.rooms))
	for id := range m.rooms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
