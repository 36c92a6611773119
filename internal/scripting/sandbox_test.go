package scripting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/combatcore/internal/scripting"
)

func TestNewSandboxedState_UnsafeLibsNil(t *testing.T) {
	L := scripting.NewSandboxedState()
	defer L.Close()
	for _, name := range []string{"os", "io", "debug", "dofile", "loadfile", "load", "collectgarbage", "require"} {
		assert.Equal(t, lua.LNil, L.GetGlobal(name), "expected %s to be nil", name)
	}
}

func TestNewSandboxedState_SafeLibsAvailable(t *testing.T) {
	L := scripting.NewSandboxedState()
	defer L.Close()
	err := scripting.DoStringLimited(L, `
		local x = math.sqrt(4)
		assert(x == 2.0, "math.sqrt failed")
		assert(string.upper("hello") == "HELLO", "string.upper failed")
	`, 0)
	assert.NoError(t, err)
}

func TestDoStringLimited_StopsRunaway(t *testing.T) {
	L := scripting.NewSandboxedState()
	defer L.Close()
	assert.Error(t, scripting.DoStringLimited(L, `while true do end`, 10))
}

func TestDoStringLimited_BudgetIsPerCall(t *testing.T) {
	L := scripting.NewSandboxedState()
	defer L.Close()
	for i := 0; i < 50; i++ {
		require.NoError(t, scripting.DoStringLimited(L, `local s = 0 for i = 1, 10 do s = s + i end`, 200))
	}
}

func TestPropertyDoStringLimited_RunawayAlwaysErrors(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		limit := rapid.IntRange(1, 50).Draw(rt, "limit")
		L := scripting.NewSandboxedState()
		defer L.Close()
		if err := scripting.DoStringLimited(L, `while true do end`, limit); err == nil {
			rt.Fatalf("expected error with limit=%d but got nil", limit)
		}
	})
}
