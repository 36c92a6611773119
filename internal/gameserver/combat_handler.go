package gameserver

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/combatcore/internal/game/assist"
	"github.com/cory-johannsen/combatcore/internal/game/combat"
	"github.com/cory-johannsen/combatcore/internal/game/dice"
	"github.com/cory-johannsen/combatcore/internal/game/effect"
	"github.com/cory-johannsen/combatcore/internal/game/npc"
	"github.com/cory-johannsen/combatcore/internal/game/session"
	"github.com/cory-johannsen/combatcore/internal/game/threat"
)

// CombatOptions holds the tunables the handler applies on every strike.
type CombatOptions struct {
	// Mitigation reduces damage after damage-taken modifiers; nil means none.
	Mitigation combat.Mitigation
	// ThreatMultiplier converts damage dealt into threat.
	ThreatMultiplier float64
	// AssistSeed is the threat a helper receives when it joins a fight.
	AssistSeed float64
	// NPCSwingIntervalMs is the delay between NPC auto-attacks; 0 disables them.
	NPCSwingIntervalMs int64
}

// Strike is one resolved swing.
type Strike struct {
	AttackerID string
	DefenderID string
	Outcome    combat.Outcome
	Damage     combat.DamageResult
	// Counter is true for a riposte counter-strike.
	Counter bool
	Text    string
}

// AttackReport describes everything one Attack call caused.
type AttackReport struct {
	Strikes      []Strike
	Assists      int
	AlertStarted bool
	Killed       []string
}

// CombatHandler drives the one-way data flow of a strike: hit resolution,
// damage, threat, assists and death handling.
//
// mu serialises every mutation of participant, effect and threat state so
// that the tick loop and callers cannot race.
type CombatHandler struct {
	entities *Entities
	resolver *combat.Resolver
	roller   *dice.Roller
	rand     combat.Rand
	effects  *effect.Registry
	assister *assist.Assister
	alerts   *assist.Alerts
	respawn  *npc.RespawnManager
	policy   DamagePolicy
	opts     CombatOptions
	logger   *zap.Logger

	mu sync.Mutex
	// targets is each NPC's most recently selected target.
	targets map[string]string
	// nextSwing is the earliest time each NPC may auto-attack again.
	nextSwing map[string]int64
}

// NewCombatHandler creates a CombatHandler.
//
// Precondition: all pointer arguments except respawn must be non-nil; respawn
// may be nil (dead NPCs are then removed without being rescheduled); a nil
// policy allows every attack.
// Postcondition: Returns a non-nil CombatHandler.
func NewCombatHandler(
	entities *Entities,
	resolver *combat.Resolver,
	roller *dice.Roller,
	effects *effect.Registry,
	assister *assist.Assister,
	alerts *assist.Alerts,
	respawn *npc.RespawnManager,
	policy DamagePolicy,
	opts CombatOptions,
	logger *zap.Logger,
) *CombatHandler {
	if policy == nil {
		policy = AllowAll
	}
	if opts.Mitigation == nil {
		opts.Mitigation = combat.NoMitigation
	}
	return &CombatHandler{
		entities:  entities,
		resolver:  resolver,
		roller:    roller,
		rand:      dice.Float64Func(roller.Source()),
		effects:   effects,
		assister:  assister,
		alerts:    alerts,
		respawn:   respawn,
		policy:    policy,
		opts:      opts,
		logger:    logger,
		targets:   make(map[string]string),
		nextSwing: make(map[string]int64),
	}
}

// Attack resolves attackerID striking defenderID at now, including any
// riposte and extra strikes the swing earns.
//
// Precondition: now is epoch milliseconds.
// Postcondition: Returns an error when either id is unknown or dead, when
// the two are in different rooms, or when the damage policy refuses
// (wrapping ErrAttackRefused).
func (h *CombatHandler) Attack(ctx context.Context, attackerID, defenderID string, now int64) (AttackReport, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.attackLocked(ctx, attackerID, defenderID, now)
}

func (h *CombatHandler) attackLocked(ctx context.Context, attackerID, defenderID string, now int64) (AttackReport, error) {
	var report AttackReport
	att, attRoom, ok := h.entities.Lookup(attackerID)
	if !ok {
		return report, fmt.Errorf("attacker %q not found", attackerID)
	}
	def, defRoom, ok := h.entities.Lookup(defenderID)
	if !ok {
		return report, fmt.Errorf("defender %q not found", defenderID)
	}
	if attackerID == defenderID {
		return report, fmt.Errorf("%s cannot attack itself", att.Name)
	}
	if att.IsDead() {
		return report, fmt.Errorf("%s is dead", att.Name)
	}
	if def.IsDead() {
		return report, fmt.Errorf("%s is already dead", def.Name)
	}
	if attRoom != defRoom {
		return report, fmt.Errorf("%s is not in the same room as %s", def.Name, att.Name)
	}
	if err := h.policy.AllowAttack(attRoom, att, def); err != nil {
		return report, fmt.Errorf("attacking %s: %w", def.Name, err)
	}

	primary := h.swingLocked(ctx, att, def, now, true, &report)
	if primary.Riposte && !def.IsDead() && !att.IsDead() {
		// A riposte never earns its own riposte or extra strikes.
		h.counterLocked(ctx, def, att, now, &report)
	}
	for i := 0; i < primary.ExtraStrikes && !def.IsDead() && !att.IsDead(); i++ {
		h.swingLocked(ctx, att, def, now, false, &report)
	}
	return report, nil
}

// swingLocked resolves one swing and applies its consequences. Only the
// primary swing may trigger a riposte or extra strikes.
func (h *CombatHandler) swingLocked(ctx context.Context, att, def *combat.Participant, now int64, primary bool, report *AttackReport) combat.HitResult {
	req := combat.NewHitRequest(att, def, h.rand)
	if !primary {
		req.RiposteEnabled = false
		req.MultiStrikeEnabled = false
	}
	res := h.resolver.Resolve(req)
	report.Strikes = append(report.Strikes, h.strikeLocked(ctx, att, def, res, now, report))
	return res
}

func (h *CombatHandler) counterLocked(ctx context.Context, att, def *combat.Participant, now int64, report *AttackReport) {
	req := combat.NewHitRequest(att, def, h.rand)
	req.RiposteEnabled = false
	req.MultiStrikeEnabled = false
	strike := h.strikeLocked(ctx, att, def, h.resolver.Resolve(req), now, report)
	strike.Counter = true
	report.Strikes = append(report.Strikes, strike)
}

// strikeLocked rolls and applies the damage of res, publishes it, then feeds
// threat, alerts and assists on an NPC defender.
func (h *CombatHandler) strikeLocked(ctx context.Context, att, def *combat.Participant, res combat.HitResult, now int64, report *AttackReport) Strike {
	var dmg combat.DamageResult
	if res.Outcome.Lands() {
		base := h.roller.RollTotal(att.DamageDice)
		out := combat.OutgoingDamage(att, base, att.DamageSchool, res, now)
		dmg = combat.ApplyDamage(def, out, att.DamageSchool, combat.DamageOptions{
			Now:      now,
			Mitigate: h.opts.Mitigation,
			SourceID: att.ID,
		})
	}
	strike := Strike{
		AttackerID: att.ID,
		DefenderID: def.ID,
		Outcome:    res.Outcome,
		Damage:     dmg,
		Text:       Narrate(att.Name, def.Name, res.Outcome, dmg),
	}
	h.logger.Debug("strike",
		zap.String("attacker", att.ID),
		zap.String("defender", def.ID),
		zap.String("outcome", res.Outcome.String()),
		zap.Int("amount", dmg.Amount),
		zap.Int("absorbed", dmg.Absorbed),
		zap.Int("hp", def.HP),
	)
	h.publishLocked(strike, now)
	h.afterDamageLocked(ctx, def, att.ID, dmg, now, report)
	return strike
}

// afterDamageLocked runs the NPC side of a strike or DOT tick: threat,
// call-for-help, nearby assists, and death.
func (h *CombatHandler) afterDamageLocked(ctx context.Context, def *combat.Participant, attackerID string, dmg combat.DamageResult, now int64, report *AttackReport) {
	inst, isNPC := h.entities.npcs.Get(def.ID)
	if dmg.Killed {
		report.Killed = append(report.Killed, def.ID)
		h.handleDeathLocked(def, attackerID, now)
		return
	}
	if !isNPC || attackerID == "" {
		return
	}
	inst.Threat.RecordDamage(attackerID, threat.DamageToThreat(dmg.Amount, h.opts.ThreatMultiplier), now)
	if h.alerts.NotifyDamaged(inst.ID, attackerID, now) {
		report.AlertStarted = true
	}
	report.Assists += h.assister.TryAssistNearbyNPCs(ctx, inst.ID, attackerID, now, h.opts.AssistSeed)
}

// handleDeathLocked clears a dead participant's combat state. A dead NPC is
// removed and its respawn scheduled; a dead player stays registered.
func (h *CombatHandler) handleDeathLocked(p *combat.Participant, killerID string, now int64) {
	p.Effects.Clear()
	h.logger.Info("participant died",
		zap.String("id", p.ID),
		zap.String("kind", p.Kind.String()),
		zap.String("killer", killerID),
	)
	inst, ok := h.entities.npcs.Get(p.ID)
	if !ok {
		return
	}
	inst.ResetThreat()
	h.alerts.Cancel(inst.ID)
	delete(h.targets, inst.ID)
	delete(h.nextSwing, inst.ID)
	h.entities.npcs.ForgetAttacker(inst.ID)
	// Remove cannot fail: Get confirmed existence above and mu prevents concurrent removal.
	_ = h.entities.npcs.Remove(inst.ID)
	if h.respawn != nil {
		at := h.respawn.Schedule(inst.TemplateID, inst.RoomID, now)
		h.logger.Debug("respawn scheduled",
			zap.String("template", inst.TemplateID),
			zap.String("room", inst.RoomID),
			zap.Int64("at", at),
		)
	}
}

// publishLocked pushes a strike onto the feeds of any player involved.
func (h *CombatHandler) publishLocked(strike Strike, now int64) {
	ev := session.Event{
		At:      now,
		Source:  strike.AttackerID,
		Target:  strike.DefenderID,
		Outcome: strike.Outcome.String(),
		Amount:  strike.Damage.HPLoss,
		Text:    strike.Text,
	}
	if sess, ok := h.entities.sessions.GetPlayer(strike.AttackerID); ok {
		ev.Kind = "attack"
		h.push(sess, ev)
	}
	if sess, ok := h.entities.sessions.GetPlayer(strike.DefenderID); ok {
		ev.Kind = "defend"
		h.push(sess, ev)
	}
}

func (h *CombatHandler) push(sess *session.PlayerSession, ev session.Event) {
	if err := sess.Feed.Push(ev); err != nil {
		h.logger.Debug("feed event dropped", zap.String("uid", sess.UID), zap.Error(err))
	}
}

// ApplyEffect applies the registered effect effectID to targetID.
//
// Postcondition: Returns the live instance, or an error when the effect or
// target is unknown or the target is dead.
func (h *CombatHandler) ApplyEffect(ctx context.Context, targetID, effectID string, src effect.Source, now int64) (*effect.Instance, error) {
	def, ok := h.effects.Get(effectID)
	if !ok {
		return nil, fmt.Errorf("effect %q not found", effectID)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	p, _, ok := h.entities.Lookup(targetID)
	if !ok {
		return nil, fmt.Errorf("target %q not found", targetID)
	}
	if p.IsDead() {
		return nil, fmt.Errorf("%s is dead", p.Name)
	}
	inst := p.Effects.Apply(def, src, now, h.roller.RollTotal)
	h.logger.Debug("effect applied",
		zap.String("target", targetID),
		zap.String("effect", effectID),
		zap.String("source", src.ID),
		zap.Int("stacks", inst.Stacks),
		zap.Int64("expires_at", inst.ExpiresAt),
	)
	if sess, ok := h.entities.sessions.GetPlayer(targetID); ok {
		h.push(sess, session.Event{At: now, Kind: "effect", Source: src.ID, Target: targetID, Text: def.Name})
	}
	if _, ok := h.entities.npcs.Get(targetID); ok && src.ID != "" && src.ID != targetID && isHostile(def) {
		var report AttackReport
		h.afterDamageLocked(ctx, p, src.ID, combat.DamageResult{}, now, &report)
	}
	return inst, nil
}

func isHostile(def *effect.Definition) bool {
	for _, tag := range def.Tags {
		switch tag {
		case effect.TagDebuff, effect.TagDot, effect.TagSleep, effect.TagMez, effect.TagIncapacitate:
			return true
		}
	}
	return def.Dot != nil
}

// RemoveEffect removes every instance of effectID from targetID.
//
// Postcondition: Returns the number of instances removed.
func (h *CombatHandler) RemoveEffect(targetID, effectID string) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, _, ok := h.entities.Lookup(targetID)
	if !ok {
		return 0, fmt.Errorf("target %q not found", targetID)
	}
	return p.Effects.Remove(effectID), nil
}

// Heal restores up to amount hit points to targetID.
//
// Postcondition: Returns the hit points actually restored.
func (h *CombatHandler) Heal(targetID string, amount int) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, _, ok := h.entities.Lookup(targetID)
	if !ok {
		return 0, fmt.Errorf("target %q not found", targetID)
	}
	return combat.Heal(p, amount), nil
}

// Target returns npcID's most recently selected target.
func (h *CombatHandler) Target(npcID string) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.targets[npcID]
}
