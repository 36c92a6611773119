package npc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/combatcore/internal/game/npc"
)

func respawner(capacity int, roomDelayMs int64, tmplDelay string) (*npc.RespawnManager, *npc.Template) {
	tmpl := makeTemplate("ganger")
	tmpl.RespawnDelay = tmplDelay
	rm := npc.NewRespawnManager(
		map[string][]npc.RoomSpawn{"alley": {{TemplateID: "ganger", Max: capacity, RespawnDelayMs: roomDelayMs}}},
		map[string]*npc.Template{"ganger": tmpl},
	)
	return rm, tmpl
}

func TestRespawnManager_PopulateFillsToCap(t *testing.T) {
	rm, tmpl := respawner(2, 0, "30s")
	mgr := npc.NewManager()
	_, err := mgr.Spawn(tmpl, "alley")
	require.NoError(t, err)

	spawned := rm.Populate(mgr)
	assert.Len(t, spawned, 1)
	assert.Len(t, mgr.InstancesInRoom("alley"), 2)
	assert.Empty(t, rm.Populate(mgr))
}

func TestRespawnManager_NilConfigIsNoOp(t *testing.T) {
	rm := npc.NewRespawnManager(nil, nil)
	mgr := npc.NewManager()
	assert.Empty(t, rm.Populate(mgr))
	assert.Equal(t, int64(0), rm.Schedule("ganger", "alley", 0))
	assert.Empty(t, rm.Tick(1_000_000, mgr))
}

func TestRespawnManager_ScheduleAndTick(t *testing.T) {
	rm, _ := respawner(1, 0, "30s")
	mgr := npc.NewManager()

	at := rm.Schedule("ganger", "alley", 1_000)
	assert.Equal(t, int64(31_000), at)
	assert.Equal(t, 1, rm.Pending())

	assert.Empty(t, rm.Tick(30_999, mgr))
	spawned := rm.Tick(31_000, mgr)
	require.Len(t, spawned, 1)
	assert.Equal(t, "alley", spawned[0].RoomID)
	assert.False(t, spawned[0].IsEngaged())
	assert.Equal(t, 0, rm.Pending())
}

func TestRespawnManager_TickRespectsCap(t *testing.T) {
	rm, _ := respawner(1, 0, "1s")
	mgr := npc.NewManager()
	rm.Populate(mgr)
	rm.Schedule("ganger", "alley", 0)
	assert.Empty(t, rm.Tick(5_000, mgr))
	assert.Len(t, mgr.InstancesInRoom("alley"), 1)
}

func TestRespawnManager_DeadDoNotCountTowardCap(t *testing.T) {
	rm, _ := respawner(1, 0, "1s")
	mgr := npc.NewManager()
	spawned := rm.Populate(mgr)
	require.Len(t, spawned, 1)
	spawned[0].Combat.HP = 0
	spawned[0].Combat.Alive = false

	rm.Schedule("ganger", "alley", 0)
	assert.Len(t, rm.Tick(1_000, mgr), 1)
}

func TestRespawnManager_RoomDelayOverridesTemplate(t *testing.T) {
	rm, _ := respawner(1, 5_000, "30s")
	assert.Equal(t, int64(5_000), rm.DelayMs("ganger", "alley"))
	assert.Equal(t, int64(30_000), rm.DelayMs("ganger", "elsewhere"))
	assert.Equal(t, int64(0), rm.DelayMs("unknown", "alley"))

	noDelay, _ := respawner(1, 0, "")
	assert.Equal(t, int64(0), noDelay.Schedule("ganger", "alley", 0))
}
