//go:build wireinject

package main

import (
	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/cory-johannsen/combatcore/internal/config"
	"github.com/cory-johannsen/combatcore/internal/game/npc"
	"github.com/cory-johannsen/combatcore/internal/game/session"
	"github.com/cory-johannsen/combatcore/internal/gameserver"
)

func initializeSimulator(cfg config.Config, logger *zap.Logger) (*Simulator, func(), error) {
	wire.Build(
		provideContent,
		provideWorld,
		provideEffects,
		provideRespawn,
		provideRoller,
		provideCurve,
		provideResolver,
		provideAssister,
		provideAlerts,
		providePolicy,
		provideOptions,
		provideClock,
		provideTickManager,
		npc.NewManager,
		session.NewManager,
		gameserver.NewEntities,
		gameserver.NewCombatHandler,
		gameserver.NewWorldHandler,
		newSimulator,
	)
	return nil, nil, nil
}
