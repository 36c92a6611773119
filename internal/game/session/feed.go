// Package session tracks connected players, their combat participants and
// room presence, and carries combat notifications out to them.
package session

import (
	"fmt"
	"sync"
)

// Event is one combat notification addressed to a player.
type Event struct {
	At      int64  `json:"at"`
	Kind    string `json:"kind"` // attack, defend, dot, effect, death
	Source  string `json:"source,omitempty"`
	Target  string `json:"target,omitempty"`
	Outcome string `json:"outcome,omitempty"`
	Amount  int    `json:"amount,omitempty"`
	Text    string `json:"text,omitempty"`
}

// Feed is a bounded, non-blocking queue of events for one player. The
// simulation never waits on a slow reader: a full feed drops the event.
type Feed struct {
	uid    string
	events chan Event
	mu     sync.Mutex
	closed bool
}

// NewFeed creates a Feed for the given player UID.
//
// Postcondition: Returns a Feed with an open events channel; bufferSize <= 0 uses 64.
func NewFeed(uid string, bufferSize int) *Feed {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	return &Feed{uid: uid, events: make(chan Event, bufferSize)}
}

// UID returns the player's unique identifier.
func (f *Feed) UID() string { return f.uid }

// Push enqueues ev.
//
// Postcondition: Returns an error if the feed is closed or full.
func (f *Feed) Push(ev Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return fmt.Errorf("feed %s is closed", f.uid)
	}
	select {
	case f.events <- ev:
		return nil
	default:
		return fmt.Errorf("feed %s event buffer full", f.uid)
	}
}

// Events returns the read-only events channel.
func (f *Feed) Events() <-chan Event { return f.events }

// Close closes the events channel. Further Push calls return an error.
func (f *Feed) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.events)
	}
	return nil
}

// IsClosed reports whether the feed has been closed.
func (f *Feed) IsClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
