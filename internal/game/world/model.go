// Package world provides the room graph the combat core consults for
// locality: which rooms exist, how they connect, what spawns in them, and
// which rooms lie within a given number of exits of each other.
package world

import (
	"fmt"
	"time"
)

// Direction names an exit ("north", "stairs").
type Direction string

// Exit represents a passage from one room to another.
type Exit struct {
	Direction  Direction
	TargetRoom string
	// Locked exits block movement but not sound: alerts still propagate through them.
	Locked bool
}

// RoomSpawnConfig defines how many instances of an NPC template should exist
// in a room and how long to wait before respawning a dead one.
type RoomSpawnConfig struct {
	Template string
	Count    int
	// RespawnAfter overrides the template's respawn delay. Empty means use the template's.
	RespawnAfter string
}

// RespawnAfterMs returns the parsed override in milliseconds, or 0.
func (c RoomSpawnConfig) RespawnAfterMs() int64 {
	if c.RespawnAfter == "" {
		return 0
	}
	d, err := time.ParseDuration(c.RespawnAfter)
	if err != nil {
		return 0
	}
	return d.Milliseconds()
}

// Room flags read from Properties.
const (
	// PropertySafe marks rooms where no attack is authorised.
	PropertySafe = "safe"
)

// Room represents a location in the game world.
type Room struct {
	ID          string
	ZoneID      string
	Title       string
	Description string
	Exits       []Exit
	// Properties holds environment flags such as "safe".
	Properties map[string]string
	Spawns     []RoomSpawnConfig
}

// IsSafe reports whether the room forbids combat.
func (r *Room) IsSafe() bool {
	return r.Properties[PropertySafe] == "true"
}

// Zone groups related rooms into a themed area.
type Zone struct {
	ID          string
	Name        string
	Description string
	StartRoom   string
	// Rooms contains all rooms in this zone, keyed by room ID.
	Rooms map[string]*Room
}

// Validate checks zone invariants.
//
// Postcondition: Returns nil if valid, or an error describing the first violation.
// Exit targets are checked across zones by Manager.ValidateExits.
func (z *Zone) Validate() error {
	if z.ID == "" {
		return fmt.Errorf("zone ID must not be empty")
	}
	if z.Name == "" {
		return fmt.Errorf("zone %q: name must not be empty", z.ID)
	}
	if len(z.Rooms) == 0 {
		return fmt.Errorf("zone %q: must contain at least one room", z.ID)
	}
	if z.StartRoom != "" {
		if _, ok := z.Rooms[z.StartRoom]; !ok {
			return fmt.Errorf("zone %q: start_room %q not found in rooms", z.ID, z.StartRoom)
		}
	}
	for id, room := range z.Rooms {
		if room.ID != id {
			return fmt.Errorf("zone %q: room key %q does not match room ID %q", z.ID, id, room.ID)
		}
		if room.Title == "" {
			return fmt.Errorf("zone %q: room %q: title must not be empty", z.ID, id)
		}
		for _, exit := range room.Exits {
			if exit.TargetRoom == "" {
				return fmt.Errorf("zone %q: room %q: exit %q has empty target", z.ID, id, exit.Direction)
			}
		}
		for _, sp := range room.Spawns {
			if sp.Template == "" || sp.Count < 1 {
				return fmt.Errorf("zone %q: room %q: spawn needs a template and count >= 1", z.ID, id)
			}
			if sp.RespawnAfter != "" {
				if _, err := time.ParseDuration(sp.RespawnAfter); err != nil {
					return fmt.Errorf("zone %q: room %q: respawn_after %q: %w", z.ID, id, sp.RespawnAfter, err)
				}
			}
		}
	}
	return nil
}
