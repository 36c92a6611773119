package gameserver

import (
	"fmt"
	"sort"

	"github.com/cory-johannsen/combatcore/internal/game/effect"
	"github.com/cory-johannsen/combatcore/internal/game/npc"
	"github.com/cory-johannsen/combatcore/internal/game/world"
)

// Content is the static data the simulation runs on.
type Content struct {
	World     *world.Manager
	Effects   *effect.Registry
	Templates map[string]*npc.Template
	// StartRoom is the first zone's start room, or "" when none declares one.
	StartRoom string
}

// LoadContent reads zones, NPC templates and effect definitions.
//
// Postcondition: Returns an error when any directory fails to load, an exit
// dangles, or a room spawns an unknown template.
func LoadContent(zonesDir, npcsDir, effectsDir string) (*Content, error) {
	zones, err := world.LoadZonesFromDir(zonesDir)
	if err != nil {
		return nil, fmt.Errorf("loading zones: %w", err)
	}
	wm, err := world.NewManager(zones)
	if err != nil {
		return nil, fmt.Errorf("creating world manager: %w", err)
	}
	if err := wm.ValidateExits(); err != nil {
		return nil, fmt.Errorf("validating exits: %w", err)
	}

	tmpls, err := npc.LoadTemplates(npcsDir)
	if err != nil {
		return nil, fmt.Errorf("loading npc templates: %w", err)
	}
	byID := make(map[string]*npc.Template, len(tmpls))
	for _, t := range tmpls {
		byID[t.ID] = t
	}
	for roomID, rules := range wm.SpawnRules() {
		for _, r := range rules {
			if _, ok := byID[r.Template]; !ok {
				return nil, fmt.Errorf("room %q spawns unknown npc template %q", roomID, r.Template)
			}
		}
	}

	effects, err := effect.LoadDirectory(effectsDir)
	if err != nil {
		return nil, fmt.Errorf("loading effects: %w", err)
	}

	sort.Slice(zones, func(i, j int) bool { return zones[i].ID < zones[j].ID })
	start := ""
	for _, z := range zones {
		if z.StartRoom != "" {
			start = z.StartRoom
			break
		}
	}
	return &Content{World: wm, Effects: effects, Templates: byID, StartRoom: start}, nil
}

// SpawnTable converts the world's room spawn configs into respawn rules.
func (c *Content) SpawnTable() map[string][]npc.RoomSpawn {
	out := make(map[string][]npc.RoomSpawn)
	for roomID, rules := range c.World.SpawnRules() {
		for _, r := range rules {
			out[roomID] = append(out[roomID], npc.RoomSpawn{
				TemplateID:     r.Template,
				Max:            r.Count,
				RespawnDelayMs: r.RespawnAfterMs(),
			})
		}
	}
	return out
}
