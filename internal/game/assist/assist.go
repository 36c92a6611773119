// Package assist propagates "NPC took damage" events to nearby NPCs: pack
// members and social helpers join the fight immediately, and gate keepers
// cast a slower call for help whose radius widens while nobody answers.
//
// This package is the one place where handling damage on one NPC writes
// another NPC's threat table.
package assist

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/combatcore/internal/game/npc"
)

// NPCDirectory resolves live NPC instances.
type NPCDirectory interface {
	Get(id string) (*npc.Instance, bool)
	InstancesInRoom(roomID string) []*npc.Instance
}

// Topology answers locality queries over the room graph.
type Topology interface {
	// RoomsWithin returns roomID and every room within radius exits of it,
	// nearest first.
	RoomsWithin(roomID string, radius int) []string
}

// Config tunes immediate assists.
type Config struct {
	// RadiusRooms is how many exits away helpers are searched; 0 = same room.
	RadiusRooms int
	// ThrottleWindowMs suppresses repeat scans for the same group.
	ThrottleWindowMs int64
	// SocialTag marks opportunistic helpers; empty disables social assists.
	SocialTag string
}

// Assister seeds threat on nearby NPCs when one of them is damaged.
type Assister struct {
	npcs   NPCDirectory
	rooms  Topology
	cfg    Config
	logger *zap.Logger

	mu       sync.Mutex
	lastScan map[string]int64 // throttle key → time of last scan
}

// NewAssister creates an Assister.
//
// Precondition: npcs and rooms must be non-nil; logger may be nil.
func NewAssister(npcs NPCDirectory, rooms Topology, cfg Config, logger *zap.Logger) *Assister {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assister{
		npcs:     npcs,
		rooms:    rooms,
		cfg:      cfg,
		logger:   logger,
		lastScan: make(map[string]int64),
	}
}

// TryAssistNearbyNPCs seeds threat against attackerID on every eligible NPC
// near damagedNPCID and returns how many were seeded.
//
// Only the first call per group inside the throttle window scans; later
// calls for any pack-mate return 0 until the window passes. Eligible helpers
// are alive, not already engaged, and either share the damaged NPC's group
// or carry the social tag. Social helpers stay out of fights whose attacker
// is itself an NPC.
//
// Postcondition: Returns 0 when damagedNPCID is unknown, when throttled, or
// when ctx is done.
func (a *Assister) TryAssistNearbyNPCs(ctx context.Context, damagedNPCID, attackerID string, now int64, seed float64) int {
	if ctx.Err() != nil || attackerID == "" {
		return 0
	}
	damaged, ok := a.npcs.Get(damagedNPCID)
	if !ok {
		return 0
	}
	if !a.admit(throttleKey(damaged), now) {
		return 0
	}

	_, attackerIsNPC := a.npcs.Get(attackerID)
	seeded := 0
	for _, roomID := range a.rooms.RoomsWithin(damaged.RoomID, a.cfg.RadiusRooms) {
		for _, cand := range a.npcs.InstancesInRoom(roomID) {
			if ctx.Err() != nil {
				return seeded
			}
			if cand.ID == attackerID || !eligible(damaged, cand, a.cfg.SocialTag, attackerIsNPC) {
				continue
			}
			cand.Threat.RecordDamage(attackerID, seed, now)
			seeded++
			a.logger.Debug("npc assists",
				zap.String("helper", cand.ID),
				zap.String("ally", damaged.ID),
				zap.String("attacker", attackerID),
			)
		}
	}
	return seeded
}

// admit applies the throttle and records the scan when allowed.
func (a *Assister) admit(key string, now int64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for k, at := range a.lastScan {
		if now-at >= a.cfg.ThrottleWindowMs {
			delete(a.lastScan, k)
		}
	}
	if at, ok := a.lastScan[key]; ok && now-at < a.cfg.ThrottleWindowMs {
		return false
	}
	a.lastScan[key] = now
	return true
}

func throttleKey(inst *npc.Instance) string {
	if inst.GroupID != "" {
		return "group:" + inst.GroupID
	}
	return "npc:" + inst.ID
}

// eligible reports whether cand should come to ally's aid.
func eligible(ally, cand *npc.Instance, socialTag string, attackerIsNPC bool) bool {
	if cand.ID == ally.ID || cand.IsDead() || cand.IsEngaged() {
		return false
	}
	if ally.GroupID != "" && cand.GroupID == ally.GroupID {
		return true
	}
	return socialTag != "" && !attackerIsNPC && cand.HasTag(socialTag)
}
