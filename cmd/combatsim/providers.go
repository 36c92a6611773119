package main

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/combatcore/internal/config"
	"github.com/cory-johannsen/combatcore/internal/game/assist"
	"github.com/cory-johannsen/combatcore/internal/game/combat"
	"github.com/cory-johannsen/combatcore/internal/game/dice"
	"github.com/cory-johannsen/combatcore/internal/game/effect"
	"github.com/cory-johannsen/combatcore/internal/game/npc"
	"github.com/cory-johannsen/combatcore/internal/game/world"
	"github.com/cory-johannsen/combatcore/internal/gameserver"
	"github.com/cory-johannsen/combatcore/internal/scripting"
)

func provideContent(cfg config.Config) (*gameserver.Content, error) {
	s := cfg.Simulation
	return gameserver.LoadContent(s.ZonesDir, s.NPCsDir, s.EffectsDir)
}

func provideWorld(c *gameserver.Content) *world.Manager { return c.World }

func provideEffects(c *gameserver.Content) *effect.Registry { return c.Effects }

func provideRespawn(c *gameserver.Content) *npc.RespawnManager {
	return npc.NewRespawnManager(c.SpawnTable(), c.Templates)
}

func provideRoller(cfg config.Config, logger *zap.Logger) *dice.Roller {
	src := dice.NewCryptoSource()
	if seed := cfg.Simulation.Seed; seed != 0 {
		src = dice.NewSeededSource(seed, seed^0x9e3779b97f4a7c15)
	}
	return dice.NewLoggedRoller(src, logger.Named("dice"))
}

// provideCurve returns the scripted curve when one is configured, falling
// back to the linear curve for any function the script leaves out.
func provideCurve(cfg config.Config, logger *zap.Logger) (combat.Curve, func(), error) {
	linear := cfg.Hit.Curve()
	if cfg.Hit.CurveScript == "" {
		return linear, func() {}, nil
	}
	c, err := scripting.LoadCurveFile(cfg.Hit.CurveScript, cfg.Hit.ScriptInstructionLimit, linear, logger.Named("curve"))
	if err != nil {
		return nil, nil, err
	}
	return c, c.Close, nil
}

func provideResolver(curve combat.Curve, cfg config.Config) *combat.Resolver {
	return combat.NewResolver(curve, cfg.Hit.Bounds())
}

func provideAssister(npcs *npc.Manager, wm *world.Manager, cfg config.Config, logger *zap.Logger) *assist.Assister {
	return assist.NewAssister(npcs, wm, cfg.Assist.AssisterConfig(), logger.Named("assist"))
}

func provideAlerts(npcs *npc.Manager, wm *world.Manager, cfg config.Config, logger *zap.Logger) *assist.Alerts {
	return assist.NewAlerts(npcs, wm, cfg.Assist.Gate.AlertConfig(), cfg.Assist.SocialTag, cfg.Assist.SeedThreat, logger.Named("alerts"))
}

func providePolicy(wm *world.Manager) gameserver.DamagePolicy {
	return gameserver.SafeRoomPolicy{Rooms: wm}
}

func provideOptions(cfg config.Config) gameserver.CombatOptions {
	return gameserver.CombatOptions{
		Mitigation:         cfg.Hit.Mitigation(),
		ThreatMultiplier:   cfg.Threat.DamageMultiplier,
		AssistSeed:         cfg.Assist.SeedThreat,
		NPCSwingIntervalMs: cfg.Simulation.NPCSwingInterval.Milliseconds(),
	}
}

func provideClock() gameserver.Clock { return gameserver.SystemClock{} }

func provideTickManager(h *gameserver.CombatHandler, clock gameserver.Clock, cfg config.Config) *gameserver.TickManager {
	return gameserver.NewTickManager(h, clock, cfg.Simulation.TickInterval)
}

// Simulator bundles the wired components the binary drives.
type Simulator struct {
	Content  *gameserver.Content
	NPCs     *npc.Manager
	Respawn  *npc.RespawnManager
	Combat   *gameserver.CombatHandler
	World    *gameserver.WorldHandler
	Ticks    *gameserver.TickManager
	Clock    gameserver.Clock
	Entities *gameserver.Entities
}

func newSimulator(
	content *gameserver.Content,
	npcs *npc.Manager,
	respawn *npc.RespawnManager,
	h *gameserver.CombatHandler,
	wh *gameserver.WorldHandler,
	ticks *gameserver.TickManager,
	clock gameserver.Clock,
	entities *gameserver.Entities,
) *Simulator {
	return &Simulator{
		Content:  content,
		NPCs:     npcs,
		Respawn:  respawn,
		Combat:   h,
		World:    wh,
		Ticks:    ticks,
		Clock:    clock,
		Entities: entities,
	}
}
