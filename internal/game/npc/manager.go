package npc

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/cory-johannsen/combatcore/internal/game/threat"
)

// Manager tracks all live NPC instances by ID and by room.
// The indexes are safe for concurrent use; instance state itself is mutated
// only by the simulation tick.
type Manager struct {
	mu        sync.RWMutex
	instances map[string]*Instance       // instanceID → Instance
	roomSets  map[string]map[string]bool // roomID → set of instanceIDs
	counter   atomic.Uint64
}

// NewManager creates an empty NPC Manager.
func NewManager() *Manager {
	return &Manager{
		instances: make(map[string]*Instance),
		roomSets:  make(map[string]map[string]bool),
	}
}

// Spawn creates a new Instance from tmpl and places it in roomID.
//
// Precondition: tmpl must be non-nil; roomID must be non-empty.
// Postcondition: Returns a new Instance with a unique ID registered in roomID.
func (m *Manager) Spawn(tmpl *Template, roomID string) (*Instance, error) {
	if tmpl == nil {
		return nil, fmt.Errorf("npc.Manager.Spawn: tmpl must not be nil")
	}
	if roomID == "" {
		return nil, fmt.Errorf("npc.Manager.Spawn: roomID must not be empty")
	}

	n := m.counter.Add(1)
	id := fmt.Sprintf("%s-%s-%d", tmpl.ID, roomID, n)
	inst := NewInstance(id, tmpl, roomID)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.instances[id] = inst
	m.index(roomID, id)
	return inst, nil
}

// Remove deletes an instance by ID.
//
// Postcondition: Returns an error if the instance is not found.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	inst, ok := m.instances[id]
	if !ok {
		return fmt.Errorf("npc instance %q not found", id)
	}
	m.unindex(inst.RoomID, id)
	delete(m.instances, id)
	return nil
}

// Get returns the instance with the given ID.
//
// Postcondition: Returns (inst, true) if found, or (nil, false) otherwise.
func (m *Manager) Get(id string) (*Instance, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	inst, ok := m.instances[id]
	return inst, ok
}

// InstancesInRoom returns a snapshot of all live instances in roomID, sorted by ID.
//
// Postcondition: Returns a non-nil slice (may be empty).
func (m *Manager) InstancesInRoom(roomID string) []*Instance {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := m.roomSets[roomID]
	out := make([]*Instance, 0, len(ids))
	for id := range ids {
		if inst, ok := m.instances[id]; ok {
			out = append(out, inst)
		}
	}
	sortByID(out)
	return out
}

// All returns every instance sorted by ID.
func (m *Manager) All() []*Instance {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Instance, 0, len(m.instances))
	for _, inst := range m.instances {
		out = append(out, inst)
	}
	sortByID(out)
	return out
}

// Move relocates an instance from its current room to newRoomID.
//
// Precondition: id must identify an existing instance; newRoomID must be non-empty.
// Postcondition: instance.RoomID equals newRoomID; room index is updated accordingly.
func (m *Manager) Move(id, newRoomID string) error {
	if newRoomID == "" {
		return fmt.Errorf("npc.Manager.Move: newRoomID must not be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	inst, ok := m.instances[id]
	if !ok {
		return fmt.Errorf("npc.Manager.Move: instance %q not found", id)
	}
	m.unindex(inst.RoomID, id)
	inst.RoomID = newRoomID
	m.index(newRoomID, id)
	return nil
}

// RecordDamage adds threat against attackerID on the NPC npcID.
//
// Postcondition: Returns false when npcID is unknown or dead.
func (m *Manager) RecordDamage(npcID, attackerID string, amount float64, now int64) bool {
	inst, ok := m.Get(npcID)
	if !ok || inst.IsDead() {
		return false
	}
	inst.Threat.RecordDamage(attackerID, amount, now)
	return true
}

// ForgetAttacker drops attackerID from every NPC threat table, as when a
// player leaves the world.
func (m *Manager) ForgetAttacker(attackerID string) {
	for _, inst := range m.All() {
		inst.Threat.Remove(attackerID)
	}
}

// Threat returns a read-only view of npcID's threat table.
func (m *Manager) Threat(npcID string) (threat.DebugView, bool) {
	inst, ok := m.Get(npcID)
	if !ok {
		return threat.DebugView{}, false
	}
	return threat.Debug(inst.Threat), true
}

// index and unindex must be called with m.mu held.
func (m *Manager) index(roomID, id string) {
	if m.roomSets[roomID] == nil {
		m.roomSets[roomID] = make(map[string]bool)
	}
	m.roomSets[roomID][id] = true
}

func (m *Manager) unindex(roomID, id string) {
	if rs, ok := m.roomSets[roomID]; ok {
		delete(rs, id)
		if len(rs) == 0 {
			delete(m.roomSets, roomID)
		}
	}
}

func sortByID(insts []*Instance) {
	sort.Slice(insts, func(i, j int) bool { return insts[i].ID < insts[j].ID })
}
