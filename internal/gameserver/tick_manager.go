package gameserver

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/combatcore/internal/game/combat"
	"github.com/cory-johannsen/combatcore/internal/game/effect"
	"github.com/cory-johannsen/combatcore/internal/game/session"
	"github.com/cory-johannsen/combatcore/internal/game/threat"
)

// TickReport summarises one simulation tick.
type TickReport struct {
	DotTicks  int
	Assists   int
	Respawned int
	Strikes   int
	Killed    []string
}

// TickManager advances time-driven combat state: DOTs, call-for-help waves,
// respawns, NPC target selection and NPC auto-attacks.
//
// Invariant: Tick runs under the handler's lock, so ticks never interleave
// with Attack or ApplyEffect.
type TickManager struct {
	h        *CombatHandler
	clock    Clock
	interval time.Duration
}

// NewTickManager returns a manager that ticks every interval.
//
// Precondition: h and clock must be non-nil; interval must be > 0.
func NewTickManager(h *CombatHandler, clock Clock, interval time.Duration) *TickManager {
	if interval <= 0 {
		panic("gameserver.NewTickManager: interval must be > 0")
	}
	return &TickManager{h: h, clock: clock, interval: interval}
}

// Tick advances every subsystem to now.
//
// Postcondition: every DOT tick due at or before now has been applied and
// every living NPC has a freshly selected target.
func (t *TickManager) Tick(ctx context.Context, now int64) TickReport {
	h := t.h
	h.mu.Lock()
	defer h.mu.Unlock()

	var report TickReport
	t.tickDotsLocked(ctx, now, &report)
	report.Assists += h.alerts.Tick(ctx, now)
	if h.respawn != nil {
		for _, inst := range h.respawn.Tick(now, h.entities.npcs) {
			report.Respawned++
			h.logger.Info("npc respawned",
				zap.String("npc", inst.ID),
				zap.String("room", inst.RoomID),
			)
		}
	}
	t.selectTargetsLocked(now)
	t.npcSwingsLocked(ctx, now, &report)
	return report
}

func (t *TickManager) tickDotsLocked(ctx context.Context, now int64, report *TickReport) {
	h := t.h
	for _, p := range h.entities.Participants() {
		if p.IsDead() {
			continue
		}
		var attack AttackReport
		report.DotTicks += combat.TickDots(p, now, combat.DamageOptions{Mitigate: h.opts.Mitigation}, func(tick effect.DotTick, dmg combat.DamageResult) {
			if p.IsDead() && !dmg.Killed {
				return
			}
			h.logger.Debug("dot tick",
				zap.String("target", p.ID),
				zap.String("effect", tick.EffectID),
				zap.String("source", tick.Source.ID),
				zap.Int("amount", dmg.Amount),
				zap.Int("absorbed", dmg.Absorbed),
			)
			if sess, ok := h.entities.sessions.GetPlayer(p.ID); ok {
				h.push(sess, dotEvent(tick, p.ID, dmg, now))
			}
			attacker := tick.Source.ID
			if attacker == p.ID {
				attacker = ""
			}
			h.afterDamageLocked(ctx, p, attacker, dmg, now, &attack)
		})
		report.Assists += attack.Assists
		report.Killed = append(report.Killed, attack.Killed...)
	}
}

func dotEvent(tick effect.DotTick, target string, dmg combat.DamageResult, now int64) session.Event {
	return session.Event{
		At:     now,
		Kind:   "dot",
		Source: tick.Source.ID,
		Target: target,
		Amount: dmg.HPLoss,
		Text:   tick.EffectID,
	}
}

// selectTargetsLocked runs target selection for every living NPC and logs
// forced-target clears.
func (t *TickManager) selectTargetsLocked(now int64) {
	h := t.h
	for _, inst := range h.entities.npcs.All() {
		if inst.IsDead() {
			continue
		}
		before := inst.Threat.ForcedClearedAt
		target, st := threat.SelectTarget(*inst.Threat, now, RoomValidator(h.entities, inst.RoomID, now))
		*inst.Threat = st
		if st.ForcedClearedAt != before && st.ForcedClearedAt == now {
			h.logger.Info("forced target cleared",
				zap.String("npc", inst.ID),
				zap.String("target", st.ForcedClearedTargetEntityID),
				zap.String("reason", st.ForcedClearedReason),
				zap.Int64("at", now),
			)
		}
		if target == "" {
			delete(h.targets, inst.ID)
			continue
		}
		h.targets[inst.ID] = target
	}
}

// npcSwingsLocked lets each NPC with a target attack once its swing timer allows.
func (t *TickManager) npcSwingsLocked(ctx context.Context, now int64, report *TickReport) {
	h := t.h
	if h.opts.NPCSwingIntervalMs <= 0 {
		return
	}
	for _, inst := range h.entities.npcs.All() {
		target, ok := h.targets[inst.ID]
		if !ok || inst.IsDead() || now < h.nextSwing[inst.ID] {
			continue
		}
		if inst.Combat.Effects.HasTag(effect.TagSleep, now) ||
			inst.Combat.Effects.HasTag(effect.TagMez, now) ||
			inst.Combat.Effects.HasTag(effect.TagIncapacitate, now) {
			continue
		}
		h.nextSwing[inst.ID] = now + h.opts.NPCSwingIntervalMs
		attack, err := h.attackLocked(ctx, inst.ID, target, now)
		if err != nil {
			h.logger.Debug("npc swing skipped", zap.String("npc", inst.ID), zap.String("target", target), zap.Error(err))
			continue
		}
		report.Strikes += len(attack.Strikes)
		report.Assists += attack.Assists
		report.Killed = append(report.Killed, attack.Killed...)
	}
}

// Run ticks on the configured interval until ctx is cancelled.
//
// Postcondition: Returns ctx.Err() once ctx is done.
func (t *TickManager) Run(ctx context.Context) error {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r := t.Tick(ctx, t.clock.NowMs())
			if len(r.Killed) > 0 || r.Respawned > 0 {
				t.h.logger.Debug("tick",
					zap.Int("dot_ticks", r.DotTicks),
					zap.Int("assists", r.Assists),
					zap.Int("respawned", r.Respawned),
					zap.Strings("killed", r.Killed),
				)
			}
		}
	}
}
