package assist

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/combatcore/internal/game/npc"
)

// GateConfig tunes the call-for-help alert cast by gate keepers.
type GateConfig struct {
	// Tag marks NPCs that cast the alert; empty disables alerts.
	Tag string
	// HPThreshold is the health fraction at or below which the cast starts.
	HPThreshold float64
	CastTimeMs  int64
	// Wave radius is BaseRadius + escalation*RadiusStep rooms.
	BaseRadius    int
	RadiusStep    int
	MaxEscalation int
	// MaxWaves bounds how many waves one alert may run; < 1 means one.
	MaxWaves int
	// MaxAssistsPerWave caps helpers per wave; 0 means no cap.
	MaxAssistsPerWave int
	WaveIntervalMs    int64
}

// AlertStatus is a read-only view of one live alert.
type AlertStatus struct {
	CasterID   string `json:"caster_id"`
	AttackerID string `json:"attacker_id"`
	DueAt      int64  `json:"due_at"`
	Wave       int    `json:"wave"`
	Escalation int    `json:"escalation"`
	Radius     int    `json:"radius"`
}

type alert struct {
	attackerID string
	dueAt      int64
	wave       int
	escalation int
}

// Alerts runs call-for-help casts and their escalating waves.
type Alerts struct {
	npcs      NPCDirectory
	rooms     Topology
	cfg       GateConfig
	socialTag string
	seed      float64
	logger    *zap.Logger

	mu     sync.Mutex
	active map[string]*alert // caster id → alert
}

// NewAlerts creates an alert runner. seed is the threat each answering NPC
// receives against the attacker.
//
// Precondition: npcs and rooms must be non-nil; logger may be nil.
func NewAlerts(npcs NPCDirectory, rooms Topology, cfg GateConfig, socialTag string, seed float64, logger *zap.Logger) *Alerts {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Alerts{
		npcs:      npcs,
		rooms:     rooms,
		cfg:       cfg,
		socialTag: socialTag,
		seed:      seed,
		logger:    logger,
		active:    make(map[string]*alert),
	}
}

// NotifyDamaged starts a cast when npcID is a living gate keeper at or
// below the health threshold with no alert already running.
//
// Postcondition: Returns true iff a new cast was started.
func (a *Alerts) NotifyDamaged(npcID, attackerID string, now int64) bool {
	if a.cfg.Tag == "" || attackerID == "" {
		return false
	}
	inst, ok := a.npcs.Get(npcID)
	if !ok || inst.IsDead() || !inst.HasTag(a.cfg.Tag) || inst.HealthFraction() > a.cfg.HPThreshold {
		return false
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if _, busy := a.active[npcID]; busy {
		return false
	}
	a.active[npcID] = &alert{attackerID: attackerID, dueAt: now + a.cfg.CastTimeMs}
	a.logger.Info("npc calls for help",
		zap.String("npc", npcID),
		zap.String("attacker", attackerID),
		zap.Int64("due_at", now+a.cfg.CastTimeMs),
	)
	return true
}

// Tick resolves every cast or wave due at now and returns the total number
// of NPCs seeded. A wave that finds helpers ends the alert; an unanswered
// wave widens the radius and schedules the next wave until MaxWaves is
// reached. An alert whose caster died or despawned is dropped.
func (a *Alerts) Tick(ctx context.Context, now int64) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	casters := make([]string, 0, len(a.active))
	for id := range a.active {
		casters = append(casters, id)
	}
	sort.Strings(casters)

	total := 0
	for _, id := range casters {
		if ctx.Err() != nil {
			break
		}
		al := a.active[id]
		if al.dueAt > now {
			continue
		}
		caster, ok := a.npcs.Get(id)
		if !ok || caster.IsDead() {
			delete(a.active, id)
			continue
		}

		n := a.wave(caster, al, now)
		total += n
		if n > 0 {
			delete(a.active, id)
			continue
		}
		al.escalation = min(al.escalation+1, max(a.cfg.MaxEscalation, 0))
		al.wave++
		if al.wave >= max(a.cfg.MaxWaves, 1) {
			a.logger.Info("call for help unanswered", zap.String("npc", id), zap.Int("waves", al.wave))
			delete(a.active, id)
			continue
		}
		al.dueAt = now + a.cfg.WaveIntervalMs
	}
	return total
}

// wave seeds threat on up to MaxAssistsPerWave helpers within the current radius.
func (a *Alerts) wave(caster *npc.Instance, al *alert, now int64) int {
	_, attackerIsNPC := a.npcs.Get(al.attackerID)
	seeded := 0
	for _, roomID := range a.rooms.RoomsWithin(caster.RoomID, a.radius(al)) {
		for _, cand := range a.npcs.InstancesInRoom(roomID) {
			if a.cfg.MaxAssistsPerWave > 0 && seeded >= a.cfg.MaxAssistsPerWave {
				return seeded
			}
			if cand.ID == al.attackerID || !eligible(caster, cand, a.socialTag, attackerIsNPC) {
				continue
			}
			cand.Threat.RecordDamage(al.attackerID, a.seed, now)
			seeded++
		}
	}
	if seeded > 0 {
		a.logger.Info("call for help answered",
			zap.String("npc", caster.ID),
			zap.Int("helpers", seeded),
			zap.Int("wave", al.wave),
		)
	}
	return seeded
}

func (a *Alerts) radius(al *alert) int {
	return max(a.cfg.BaseRadius+al.escalation*a.cfg.RadiusStep, 0)
}

// Pending lists live alerts sorted by caster id.
func (a *Alerts) Pending() []AlertStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]AlertStatus, 0, len(a.active))
	for id, al := range a.active {
		out = append(out, AlertStatus{
			CasterID:   id,
			AttackerID: al.attackerID,
			DueAt:      al.dueAt,
			Wave:       al.wave,
			Escalation: al.escalation,
			Radius:     a.radius(al),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CasterID < out[j].CasterID })
	return out
}

// Cancel drops any alert cast by npcID.
func (a *Alerts) Cancel(npcID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.active, npcID)
}
