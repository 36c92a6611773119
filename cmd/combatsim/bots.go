package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/combatcore/internal/game/combat"
	"github.com/cory-johannsen/combatcore/internal/game/session"
)

// bots are scripted players that wander the world and attack whatever NPC
// shares their room.
type bots struct {
	sim      *Simulator
	count    int
	interval time.Duration
	logger   *zap.Logger
	turn     int
}

func (b *bots) spec(i int) session.PlayerSpec {
	return session.PlayerSpec{
		UID:          fmt.Sprintf("bot-%d", i),
		CharName:     fmt.Sprintf("Bot %d", i),
		RoomID:       b.sim.Content.StartRoom,
		Level:        6,
		MaxHP:        150,
		Armor:        30,
		WeaponSkill:  5,
		DefenseSkill: 4,
		Avoidance:    combat.AvoidanceOf(combat.Dodge),
		Damage:       "1d10+3",
	}
}

// Run joins the bots and drives them until ctx is done.
func (b *bots) Run(ctx context.Context) error {
	if b.sim.Content.StartRoom == "" {
		return fmt.Errorf("bots need a zone with a start_room")
	}
	for i := 1; i <= b.count; i++ {
		if _, err := b.sim.World.Join(b.spec(i)); err != nil {
			return fmt.Errorf("joining bot %d: %w", i, err)
		}
	}
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			b.turn++
			for i := 1; i <= b.count; i++ {
				b.act(ctx, i)
			}
		}
	}
}

func (b *bots) act(ctx context.Context, i int) {
	uid := fmt.Sprintf("bot-%d", i)
	status, err := b.sim.World.Status(uid)
	if err != nil {
		return
	}
	if status.Dead {
		b.logger.Info("bot died, rejoining", zap.String("bot", uid))
		_ = b.sim.World.Leave(uid)
		if _, err := b.sim.World.Join(b.spec(i)); err != nil {
			b.logger.Warn("bot rejoin failed", zap.String("bot", uid), zap.Error(err))
		}
		return
	}

	view, err := b.sim.World.Look(uid)
	if err != nil {
		return
	}
	for _, target := range view.NPCs {
		report, err := b.sim.Combat.Attack(ctx, uid, target.ID, b.sim.Clock.NowMs())
		if err != nil {
			b.logger.Debug("bot attack refused", zap.String("bot", uid), zap.Error(err))
			break
		}
		for _, s := range report.Strikes {
			b.logger.Info(s.Text, zap.String("bot", uid))
		}
		return
	}
	b.wander(uid, view.RoomID)
}

// wander takes the next unlocked exit in rotation.
func (b *bots) wander(uid, roomID string) {
	room, ok := b.sim.Content.World.GetRoom(roomID)
	if !ok || len(room.Exits) == 0 {
		return
	}
	for k := range room.Exits {
		exit := room.Exits[(b.turn+k)%len(room.Exits)]
		if exit.Locked {
			continue
		}
		res, err := b.sim.World.Move(uid, exit.Direction)
		if err == nil {
			b.logger.Debug("bot moved", zap.String("bot", uid), zap.String("from", res.OldRoomID), zap.String("to", res.View.RoomID))
			return
		}
	}
}
