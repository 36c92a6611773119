package npc

import (
	"sort"
	"sync"
)

// RoomSpawn is the spawn rule for one NPC template in one room.
//
// Invariant: Max >= 1; RespawnDelayMs == 0 defers to the template's delay.
type RoomSpawn struct {
	TemplateID     string
	Max            int
	RespawnDelayMs int64
}

type pendingSpawn struct {
	templateID string
	roomID     string
	readyAt    int64
}

// RespawnManager keeps rooms populated and brings dead NPCs back after
// their respawn delay. Respawned instances start with fresh HP, effects and
// threat.
//
// Schedule may be called from any goroutine; Populate and Tick are driven by
// the simulation tick.
type RespawnManager struct {
	mu        sync.Mutex
	spawns    map[string][]RoomSpawn
	templates map[string]*Template
	pending   []pendingSpawn
}

// NewRespawnManager creates a RespawnManager from room spawn rules and templates.
//
// Postcondition: Returns a non-nil RespawnManager; nil inputs yield a no-op manager.
func NewRespawnManager(spawns map[string][]RoomSpawn, templates map[string]*Template) *RespawnManager {
	if spawns == nil {
		spawns = make(map[string][]RoomSpawn)
	}
	if templates == nil {
		templates = make(map[string]*Template)
	}
	return &RespawnManager{spawns: spawns, templates: templates}
}

// Populate fills every configured room up to its caps and returns the spawned instances.
func (r *RespawnManager) Populate(mgr *Manager) []*Instance {
	rooms := make([]string, 0, len(r.spawns))
	for roomID := range r.spawns {
		rooms = append(rooms, roomID)
	}
	sort.Strings(rooms)

	var out []*Instance
	for _, roomID := range rooms {
		for _, rule := range r.spawns[roomID] {
			tmpl, ok := r.templates[rule.TemplateID]
			if !ok {
				continue
			}
			for n := r.count(mgr, roomID, rule.TemplateID); n < rule.Max; n++ {
				inst, err := mgr.Spawn(tmpl, roomID)
				if err != nil {
					break
				}
				out = append(out, inst)
			}
		}
	}
	return out
}

// Schedule queues a respawn of templateID in roomID. A zero delay (no room
// override and no template delay) means the NPC stays dead.
//
// Postcondition: Returns the time the respawn becomes due, or 0 when none was queued.
func (r *RespawnManager) Schedule(templateID, roomID string, now int64) int64 {
	delay := r.DelayMs(templateID, roomID)
	if delay <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	at := now + delay
	r.pending = append(r.pending, pendingSpawn{templateID: templateID, roomID: roomID, readyAt: at})
	return at
}

// Tick spawns every due respawn whose room is below its cap.
//
// Postcondition: due entries are consumed whether or not they spawned.
func (r *RespawnManager) Tick(now int64, mgr *Manager) []*Instance {
	r.mu.Lock()
	var ready, later []pendingSpawn
	for _, p := range r.pending {
		if p.readyAt <= now {
			ready = append(ready, p)
		} else {
			later = append(later, p)
		}
	}
	r.pending = later
	r.mu.Unlock()

	var out []*Instance
	for _, p := range ready {
		tmpl, ok := r.templates[p.templateID]
		if !ok {
			continue
		}
		rule, ok := r.rule(p.roomID, p.templateID)
		if !ok || r.count(mgr, p.roomID, p.templateID) >= rule.Max {
			continue
		}
		if inst, err := mgr.Spawn(tmpl, p.roomID); err == nil {
			out = append(out, inst)
		}
	}
	return out
}

// Pending returns the number of queued respawns.
func (r *RespawnManager) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// DelayMs returns the room override when set, otherwise the template's delay.
//
// Postcondition: Returns >= 0.
func (r *RespawnManager) DelayMs(templateID, roomID string) int64 {
	if rule, ok := r.rule(roomID, templateID); ok && rule.RespawnDelayMs > 0 {
		return rule.RespawnDelayMs
	}
	if tmpl, ok := r.templates[templateID]; ok {
		return tmpl.RespawnDelayMs()
	}
	return 0
}

func (r *RespawnManager) rule(roomID, templateID string) (RoomSpawn, bool) {
	for _, rule := range r.spawns[roomID] {
		if rule.TemplateID == templateID {
			return rule, true
		}
	}
	return RoomSpawn{}, false
}

// count returns the living instances of templateID in roomID.
func (r *RespawnManager) count(mgr *Manager, roomID, templateID string) int {
	n := 0
	for _, inst := range mgr.InstancesInRoom(roomID) {
		if inst.TemplateID == templateID && !inst.IsDead() {
			n++
		}
	}
	return n
}
