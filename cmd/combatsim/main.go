// Package main runs the combat simulator: it loads configuration and content,
// populates the world with NPCs and drives the tick loop until interrupted.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/combatcore/internal/config"
	"github.com/cory-johannsen/combatcore/internal/observability"
	"github.com/cory-johannsen/combatcore/internal/server"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	botCount := flag.Int("bots", 0, "number of scripted players to run")
	botInterval := flag.Duration("bot-interval", time.Second, "delay between bot actions")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	sim, cleanup, err := initializeSimulator(cfg, logger)
	if err != nil {
		logger.Fatal("initializing simulator", zap.Error(err))
	}
	defer cleanup()

	spawned := sim.Respawn.Populate(sim.NPCs)
	logger.Info("world populated",
		zap.Int("rooms", sim.Content.World.RoomCount()),
		zap.Int("templates", len(sim.Content.Templates)),
		zap.Int("effects", len(sim.Content.Effects.All())),
		zap.Int("npcs", len(spawned)),
		zap.Duration("elapsed", time.Since(start)),
	)

	lc := server.NewLifecycle(logger)
	lc.Add("tick", sim.Ticks)
	if *botCount > 0 {
		lc.Add("bots", &bots{sim: sim, count: *botCount, interval: *botInterval, logger: logger.Named("bots")})
	}
	if err := lc.Run(context.Background()); err != nil {
		logger.Error("simulator stopped with error", zap.Error(err))
	}
}
