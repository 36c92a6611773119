// Package scripting runs operator-supplied Lua inside a sandboxed GopherLua
// VM. It hosts the scripted hit curve: Lua functions that replace the
// default probability formulas of the hit resolver.
package scripting

import (
	"context"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit is the maximum number of Lua opcodes allowed per
// call when no override is configured.
const DefaultInstructionLimit = 100_000

// countingContext cancels itself after Done() has been called limit times.
// GopherLua's context-aware main loop calls Done() once per opcode, making
// this an exact instruction budget.
type countingContext struct {
	context.Context
	cancel    context.CancelFunc
	remaining atomic.Int64
}

func (c *countingContext) Done() <-chan struct{} {
	if c.remaining.Add(-1) <= 0 {
		c.cancel()
	}
	return c.Context.Done()
}

func newCountingContext(limit int) (*countingContext, context.CancelFunc) {
	base, cancel := context.WithCancel(context.Background())
	c := &countingContext{Context: base, cancel: cancel}
	c.remaining.Store(int64(limit))
	return c, cancel
}

// NewSandboxedState creates a GopherLua LState with only the base, table,
// string and math libraries, and with dofile, loadfile, load,
// collectgarbage and require removed.
//
// Postcondition: The caller owns the LState and must call L.Close().
func NewSandboxedState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	for _, name := range []string{"dofile", "loadfile", "load", "collectgarbage", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}

// limit returns limit, or DefaultInstructionLimit when limit <= 0.
func limitOrDefault(limit int) int {
	if limit <= 0 {
		return DefaultInstructionLimit
	}
	return limit
}

// runLimited executes fn against L with a fresh budget of limit opcodes.
// The budget is per call: a long-lived VM is never starved by earlier calls.
func runLimited(L *lua.LState, limit int, fn func() error) error {
	ctx, cancel := newCountingContext(limitOrDefault(limit))
	defer cancel()
	L.SetContext(ctx)
	defer L.RemoveContext()
	return fn()
}

// DoStringLimited runs src in L under a fresh instruction budget.
func DoStringLimited(L *lua.LState, src string, limit int) error {
	return runLimited(L, limit, func() error { return L.DoString(src) })
}
