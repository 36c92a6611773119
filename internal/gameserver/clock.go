package gameserver

import (
	"sync"
	"time"
)

// Clock supplies the simulation time in epoch milliseconds.
type Clock interface {
	NowMs() int64
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// NowMs implements Clock.
func (SystemClock) NowMs() int64 { return time.Now().UnixMilli() }

// ManualClock is advanced explicitly; used by tests and replays.
type ManualClock struct {
	mu  sync.Mutex
	now int64
}

// NewManualClock creates a ManualClock reading start.
func NewManualClock(start int64) *ManualClock {
	return &ManualClock{now: start}
}

// NowMs implements Clock.
func (c *ManualClock) NowMs() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by ms and returns the new time.
//
// Precondition: ms >= 0.
func (c *ManualClock) Advance(ms int64) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += ms
	return c.now
}
