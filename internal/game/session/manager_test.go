package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/combatcore/internal/game/combat"
)

func alice(room string) PlayerSpec {
	return PlayerSpec{UID: "u1", CharName: "Alice", RoomID: room, Level: 5, MaxHP: 40}
}

func TestFeed_Push(t *testing.T) {
	f := NewFeed("test", 4)
	require.NoError(t, f.Push(Event{Kind: "attack", Amount: 7}))
	ev := <-f.Events()
	assert.Equal(t, 7, ev.Amount)
}

func TestFeed_PushClosed(t *testing.T) {
	f := NewFeed("test", 4)
	require.NoError(t, f.Close())
	require.NoError(t, f.Close())
	assert.True(t, f.IsClosed())
	assert.Error(t, f.Push(Event{}))
}

func TestFeed_PushFull(t *testing.T) {
	f := NewFeed("test", 1)
	require.NoError(t, f.Push(Event{}))
	err := f.Push(Event{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "buffer full")
}

func TestManager_AddPlayer(t *testing.T) {
	m := NewManager()
	sess, err := m.AddPlayer(alice("room_a"))
	require.NoError(t, err)
	assert.Equal(t, "room_a", sess.RoomID)
	assert.Equal(t, 1, m.PlayerCount())
	require.NotNil(t, sess.Combat)
	assert.Equal(t, combat.KindPlayer, sess.Combat.Kind)
	assert.Equal(t, 40, sess.Combat.HP)
	assert.Equal(t, "u1", sess.Combat.ID)
}

func TestManager_AddPlayerRejects(t *testing.T) {
	m := NewManager()
	_, err := m.AddPlayer(alice("room_a"))
	require.NoError(t, err)
	_, err = m.AddPlayer(alice("room_b"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already connected")

	_, err = m.AddPlayer(PlayerSpec{UID: "u2", RoomID: "room_a"})
	assert.Error(t, err)
	_, err = m.AddPlayer(PlayerSpec{UID: "u3", MaxHP: 5})
	assert.Error(t, err)
}

func TestManager_RemovePlayerClosesFeed(t *testing.T) {
	m := NewManager()
	sess, err := m.AddPlayer(alice("room_a"))
	require.NoError(t, err)
	require.NoError(t, m.RemovePlayer("u1"))
	assert.True(t, sess.Feed.IsClosed())
	assert.Empty(t, m.PlayerUIDsInRoom("room_a"))
	assert.Error(t, m.RemovePlayer("u1"))
}

func TestManager_MovePlayer(t *testing.T) {
	m := NewManager()
	_, err := m.AddPlayer(alice("room_a"))
	require.NoError(t, err)
	old, err := m.MovePlayer("u1", "room_b")
	require.NoError(t, err)
	assert.Equal(t, "room_a", old)
	assert.Empty(t, m.PlayerUIDsInRoom("room_a"))
	assert.Equal(t, []string{"u1"}, m.PlayerUIDsInRoom("room_b"))
	_, err = m.MovePlayer("nobody", "room_b")
	assert.Error(t, err)
}

func TestManager_ConcurrentAdds(t *testing.T) {
	m := NewManager()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = m.AddPlayer(PlayerSpec{UID: fmt.Sprintf("u%d", i), RoomID: "hub", MaxHP: 10})
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, m.PlayerCount())
	assert.Len(t, m.PlayerUIDsInRoom("hub"), 50)
	assert.Len(t, m.All(), 50)
}

func TestPropertyManager_RoomOccupancyMatchesPlayers(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		m := NewManager()
		rooms := []string{"a", "b", "c"}
		n := rapid.IntRange(1, 10).Draw(rt, "players")
		for i := 0; i < n; i++ {
			_, err := m.AddPlayer(PlayerSpec{UID: fmt.Sprintf("u%d", i), RoomID: rapid.SampledFrom(rooms).Draw(rt, "room"), MaxHP: 1})
			require.NoError(rt, err)
		}
		moves := rapid.IntRange(0, 10).Draw(rt, "moves")
		for i := 0; i < moves; i++ {
			uid := fmt.Sprintf("u%d", rapid.IntRange(0, n-1).Draw(rt, "who"))
			_, err := m.MovePlayer(uid, rapid.SampledFrom(rooms).Draw(rt, "to"))
			require.NoError(rt, err)
		}
		total := 0
		for _, r := range rooms {
			for _, uid := range m.PlayerUIDsInRoom(r) {
				sess, ok := m.GetPlayer(uid)
				require.True(rt, ok)
				assert.Equal(rt, r, sess.RoomID)
				total++
			}
		}
		assert.Equal(rt, n, total)
	})
}
