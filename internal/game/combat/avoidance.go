package combat

import (
	"fmt"
	"strings"
)

// AvoidanceKind is one defensive avoidance type.
type AvoidanceKind int

const (
	Dodge AvoidanceKind = iota
	Parry
	Block
)

// avoidanceOrder is the band priority order inside [0,1).
var avoidanceOrder = []AvoidanceKind{Dodge, Parry, Block}

// String returns the lower-case kind name.
func (k AvoidanceKind) String() string {
	switch k {
	case Dodge:
		return "dodge"
	case Parry:
		return "parry"
	case Block:
		return "block"
	default:
		return "unknown"
	}
}

// Avoidance is the set of avoidance kinds a defender has enabled.
type Avoidance uint8

// AvoidAll enables dodge, parry and block.
const AvoidAll = Avoidance(1<<Dodge | 1<<Parry | 1<<Block)

// AvoidanceOf builds a set from kinds.
func AvoidanceOf(kinds ...AvoidanceKind) Avoidance {
	var a Avoidance
	for _, k := range kinds {
		a |= 1 << k
	}
	return a
}

// Has reports whether kind is enabled.
func (a Avoidance) Has(kind AvoidanceKind) bool { return a&(1<<kind) != 0 }

// ParseAvoidance converts names ("dodge", "parry", "block") into a set.
//
// Postcondition: Returns an error naming the first unknown entry.
func ParseAvoidance(names []string) (Avoidance, error) {
	var a Avoidance
	for _, n := range names {
		switch strings.ToLower(strings.TrimSpace(n)) {
		case "dodge":
			a |= 1 << Dodge
		case "parry":
			a |= 1 << Parry
		case "block":
			a |= 1 << Block
		default:
			return 0, fmt.Errorf("unknown avoidance type %q", n)
		}
	}
	return a, nil
}
