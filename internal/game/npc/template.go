// Package npc provides NPC templates and the live, room-indexed NPC registry.
// Every live instance carries its combat participant and threat table.
package npc

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/combatcore/internal/game/combat"
	"github.com/cory-johannsen/combatcore/internal/game/dice"
	"github.com/cory-johannsen/combatcore/internal/game/effect"
)

// Template defines a reusable NPC archetype loaded from YAML.
type Template struct {
	ID           string                `yaml:"id"`
	Name         string                `yaml:"name"`
	Description  string                `yaml:"description"`
	Level        int                   `yaml:"level"`
	MaxHP        int                   `yaml:"max_hp"`
	Armor        int                   `yaml:"armor"`
	WeaponSkill  int                   `yaml:"weapon_skill"`
	DefenseSkill int                   `yaml:"defense_skill"`
	Avoidance    []string              `yaml:"avoidance"` // dodge, parry, block
	Damage       string                `yaml:"damage"`    // dice expression; empty = 1d4
	DamageSchool effect.School         `yaml:"damage_school"`
	Resists      map[effect.School]int `yaml:"resists"`
	// GroupID links pack-mates that come to each other's aid.
	GroupID     string   `yaml:"group_id"`
	Tags        []string `yaml:"tags"`
	Riposte     bool     `yaml:"riposte"`
	Crit        bool     `yaml:"crit"`
	MultiStrike bool     `yaml:"multi_strike"`
	// RespawnDelay is a duration string ("30s", "5m"). Empty means no respawn.
	RespawnDelay string `yaml:"respawn_delay"`
}

// Validate checks that the template satisfies basic invariants.
//
// Precondition: t must not be nil.
// Postcondition: Returns nil iff the template can be spawned; returns an
// error on the first violation otherwise.
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("npc template: id must not be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("npc template %q: name must not be empty", t.ID)
	}
	if t.Level < 1 {
		return fmt.Errorf("npc template %q: level must be >= 1", t.ID)
	}
	if t.MaxHP < 1 {
		return fmt.Errorf("npc template %q: max_hp must be >= 1", t.ID)
	}
	if t.Armor < 0 {
		return fmt.Errorf("npc template %q: armor must be >= 0", t.ID)
	}
	if _, err := combat.ParseAvoidance(t.Avoidance); err != nil {
		return fmt.Errorf("npc template %q: %w", t.ID, err)
	}
	if t.Damage != "" {
		if _, err := dice.Parse(t.Damage); err != nil {
			return fmt.Errorf("npc template %q: damage: %w", t.ID, err)
		}
	}
	if t.RespawnDelay != "" {
		if _, err := time.ParseDuration(t.RespawnDelay); err != nil {
			return fmt.Errorf("npc template %q: respawn_delay %q is not a valid duration: %w", t.ID, t.RespawnDelay, err)
		}
	}
	return nil
}

// RespawnDelayMs returns the parsed respawn delay in milliseconds, or 0.
func (t *Template) RespawnDelayMs() int64 {
	if t.RespawnDelay == "" {
		return 0
	}
	d, err := time.ParseDuration(t.RespawnDelay)
	if err != nil {
		return 0
	}
	return d.Milliseconds()
}

// LoadTemplateFromBytes parses a single NPC template from raw YAML bytes.
//
// Postcondition: Returns a validated *Template, or an error.
func LoadTemplateFromBytes(data []byte) (*Template, error) {
	var tmpl Template
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&tmpl); err != nil {
		return nil, fmt.Errorf("parsing template YAML: %w", err)
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// LoadTemplates reads all *.yaml files in dir and returns the parsed templates.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all templates or an error on the first parse or validate
// failure; on error, the partial result is discarded.
func LoadTemplates(dir string) ([]*Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading npc dir %q: %w", dir, err)
	}

	var templates []*Template
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		tmpl, err := LoadTemplateFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		templates = append(templates, tmpl)
	}
	return templates, nil
}
