// Package effect implements the status effect engine: timed buffs, debuffs,
// damage-over-time payloads and damage shields attached to one combat
// participant, with stacking, lazy expiry and modifier aggregation.
//
// A Set is owned by exactly one participant and is not safe for concurrent
// use; the simulation mutates it only from the tick goroutine.
package effect

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/combatcore/internal/game/dice"
)

// DotDef is the damage-over-time payload of a Definition.
type DotDef struct {
	IntervalMs int64  `yaml:"interval_ms"`
	Damage     string `yaml:"damage"` // dice expression or integer, rolled once at apply time
	School     School `yaml:"school"`
}

// AbsorbDef is the damage-shield payload of a Definition.
type AbsorbDef struct {
	Amount int `yaml:"amount"`
}

// Definition is the static template of an effect, supplied by the spell and
// ability definition source and loaded from YAML.
type Definition struct {
	ID            string     `yaml:"id"`
	Name          string     `yaml:"name"`
	Description   string     `yaml:"description"`
	SourceKind    SourceKind `yaml:"source_kind"`
	DurationMs    int64      `yaml:"duration_ms"` // 0 = permanent
	MaxStacks     int        `yaml:"max_stacks"`  // < 1 treated as 1
	Stacking      Policy     `yaml:"stacking"`
	StackingGroup string     `yaml:"stacking_group"`
	Tags          []string   `yaml:"tags"`
	BreakOnDamage bool       `yaml:"break_on_damage"`
	Modifiers     Modifiers  `yaml:"modifiers"`
	Dot           *DotDef    `yaml:"dot"`
	Absorb        *AbsorbDef `yaml:"absorb"`
}

// GroupKey returns the stacking group, falling back to the effect's own id.
func (d *Definition) GroupKey() string {
	if d.StackingGroup != "" {
		return d.StackingGroup
	}
	return d.ID
}

// Validate checks the definition invariants.
//
// Postcondition: Returns nil iff the definition can be instantiated.
func (d *Definition) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("effect: id must not be empty")
	}
	if d.DurationMs < 0 {
		return fmt.Errorf("effect %q: duration_ms must be >= 0", d.ID)
	}
	switch d.Stacking {
	case "", PolicyRefresh, PolicyOverwrite, PolicyStack:
	default:
		return fmt.Errorf("effect %q: unknown stacking policy %q", d.ID, d.Stacking)
	}
	if d.Dot != nil {
		if d.Dot.IntervalMs <= 0 {
			return fmt.Errorf("effect %q: dot.interval_ms must be > 0", d.ID)
		}
		if _, err := dice.Parse(d.Dot.Damage); err != nil {
			return fmt.Errorf("effect %q: dot.damage: %w", d.ID, err)
		}
	}
	if d.Absorb != nil && d.Absorb.Amount <= 0 {
		return fmt.Errorf("effect %q: absorb.amount must be > 0", d.ID)
	}
	return nil
}

// Registry holds all known Definitions keyed by ID.
type Registry struct {
	defs map[string]*Definition
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Definition)}
}

// Register adds def to the registry, overwriting any existing entry with the same ID.
//
// Precondition: def must not be nil and def.ID must not be empty.
func (r *Registry) Register(def *Definition) {
	r.defs[def.ID] = def
}

// Get returns the Definition for id, or (nil, false) if not found.
func (r *Registry) Get(id string) (*Definition, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// All returns the registered definitions sorted by ID.
func (r *Registry) All() []*Definition {
	out := make([]*Definition, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LoadDirectory reads every *.yaml file in dir, parses each as a Definition,
// and returns a populated Registry.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Registry, or an error if any file fails to parse or validate.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading effect dir %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		def, err := LoadDefinitionFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		reg.Register(def)
	}
	return reg, nil
}

// LoadDefinitionFromBytes parses and validates a single Definition.
//
// Postcondition: Returns a validated Definition or a non-nil error.
func LoadDefinitionFromBytes(data []byte) (*Definition, error) {
	var def Definition
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		return nil, fmt.Errorf("parsing effect YAML: %w", err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}
