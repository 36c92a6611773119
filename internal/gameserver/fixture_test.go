package gameserver

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/combatcore/internal/game/assist"
	"github.com/cory-johannsen/combatcore/internal/game/combat"
	"github.com/cory-johannsen/combatcore/internal/game/dice"
	"github.com/cory-johannsen/combatcore/internal/game/effect"
	"github.com/cory-johannsen/combatcore/internal/game/npc"
	"github.com/cory-johannsen/combatcore/internal/game/session"
	"github.com/cory-johannsen/combatcore/internal/game/world"
)

// fixedSource draws a constant float and always rolls the highest face.
type fixedSource struct{ f float64 }

func (s fixedSource) Intn(n int) int   { return n - 1 }
func (s fixedSource) Float64() float64 { return s.f }

type fixture struct {
	h        *CombatHandler
	ticks    *TickManager
	npcs     *npc.Manager
	sessions *session.Manager
	world    *world.Manager
	effects  *effect.Registry
	tmpls    map[string]*npc.Template
}

func testTemplates() map[string]*npc.Template {
	return map[string]*npc.Template{
		"wolf": {ID: "wolf", Name: "Grey Wolf", Level: 5, MaxHP: 50, Damage: "5", GroupID: "pack"},
		"duelist": {
			ID: "duelist", Name: "Duelist", Level: 5, MaxHP: 100, Damage: "3",
			Avoidance: []string{"parry"}, Riposte: true,
		},
		"gatekeeper": {ID: "gatekeeper", Name: "Gatekeeper", Level: 5, MaxHP: 100, Damage: "4", GroupID: "watch", Tags: []string{"gate"}},
		"guard":      {ID: "guard", Name: "Guard", Level: 5, MaxHP: 80, Damage: "4", GroupID: "watch"},
	}
}

func testWorld(t *testing.T) *world.Manager {
	t.Helper()
	zone := &world.Zone{
		ID:   "keep",
		Name: "The Keep",
		Rooms: map[string]*world.Room{
			"hall": {ID: "hall", ZoneID: "keep", Title: "Great Hall", Exits: []world.Exit{{Direction: "east", TargetRoom: "yard"}}},
			"yard": {ID: "yard", ZoneID: "keep", Title: "Courtyard", Exits: []world.Exit{{Direction: "west", TargetRoom: "hall"}}},
			"chapel": {
				ID: "chapel", ZoneID: "keep", Title: "Chapel",
				Properties: map[string]string{world.PropertySafe: "true"},
			},
		},
	}
	require.NoError(t, zone.Validate())
	mgr, err := world.NewManager([]*world.Zone{zone})
	require.NoError(t, err)
	require.NoError(t, mgr.ValidateExits())
	return mgr
}

func testEffects() *effect.Registry {
	reg := effect.NewRegistry()
	reg.Register(&effect.Definition{
		ID: "poison", Name: "Poison", DurationMs: 3000, Tags: []string{effect.TagDot},
		Dot: &effect.DotDef{IntervalMs: 1000, Damage: "5", School: effect.SchoolPoison},
	})
	reg.Register(&effect.Definition{
		ID: "vanish", Name: "Vanish", DurationMs: 10000, Tags: []string{effect.TagStealth},
	})
	reg.Register(&effect.Definition{
		ID: "ward", Name: "Ward", DurationMs: 10000, Tags: []string{effect.TagShield},
		Absorb: &effect.AbsorbDef{Amount: 20},
	})
	reg.Register(&effect.Definition{
		ID: "sleep", Name: "Sleep", DurationMs: 10000, Tags: []string{effect.TagSleep}, BreakOnDamage: true,
	})
	return reg
}

type fixtureOption func(*fixtureConfig)

type fixtureConfig struct {
	draw   float64
	opts   CombatOptions
	gate   assist.GateConfig
	spawns map[string][]npc.RoomSpawn
}

func withDraw(f float64) fixtureOption { return func(c *fixtureConfig) { c.draw = f } }
func withSwing(ms int64) fixtureOption {
	return func(c *fixtureConfig) { c.opts.NPCSwingIntervalMs = ms }
}
func withSpawns(s map[string][]npc.RoomSpawn) fixtureOption {
	return func(c *fixtureConfig) { c.spawns = s }
}

func newFixture(t *testing.T, options ...fixtureOption) *fixture {
	t.Helper()
	cfg := fixtureConfig{
		draw: 0.5,
		opts: CombatOptions{ThreatMultiplier: 1, AssistSeed: 1},
		gate: assist.GateConfig{
			Tag: "gate", HPThreshold: 0.5, CastTimeMs: 1000,
			BaseRadius: 1, RadiusStep: 1, MaxEscalation: 1, MaxWaves: 1, WaveIntervalMs: 1000,
		},
	}
	for _, o := range options {
		o(&cfg)
	}

	logger := zaptest.NewLogger(t)
	wm := testWorld(t)
	npcs := npc.NewManager()
	sessions := session.NewManager()
	tmpls := testTemplates()
	effects := testEffects()
	roller := dice.NewLoggedRoller(fixedSource{f: cfg.draw}, logger)
	resolver := combat.NewResolver(combat.DefaultCurve(), combat.DefaultBounds())
	assister := assist.NewAssister(npcs, wm, assist.Config{ThrottleWindowMs: 1000, SocialTag: npc.TagSocial}, logger)
	alerts := assist.NewAlerts(npcs, wm, cfg.gate, npc.TagSocial, 1, logger)
	respawn := npc.NewRespawnManager(cfg.spawns, tmpls)

	h := NewCombatHandler(NewEntities(npcs, sessions), resolver, roller, effects, assister, alerts, respawn, nil, cfg.opts, logger)
	return &fixture{
		h:        h,
		ticks:    NewTickManager(h, NewManualClock(0), 10_000_000),
		npcs:     npcs,
		sessions: sessions,
		world:    wm,
		effects:  effects,
		tmpls:    tmpls,
	}
}

func (f *fixture) spawn(t *testing.T, templateID, roomID string) *npc.Instance {
	t.Helper()
	inst, err := f.npcs.Spawn(f.tmpls[templateID], roomID)
	require.NoError(t, err)
	return inst
}

func (f *fixture) player(t *testing.T, uid, roomID, damage string) *session.PlayerSession {
	t.Helper()
	sess, err := f.sessions.AddPlayer(session.PlayerSpec{
		UID: uid, CharName: uid, RoomID: roomID, Level: 5, MaxHP: 100, Damage: damage,
	})
	require.NoError(t, err)
	return sess
}

func drainFeed(sess *session.PlayerSession) []session.Event {
	var out []session.Event
	for {
		select {
		case ev := <-sess.Feed.Events():
			out = append(out, ev)
		default:
			return out
		}
	}
}
