// Package dice provides the randomness abstraction shared by the combat core:
// an injectable Source, float adapters for hit resolution, and dice
// expressions used to roll effect payloads at cast time.
package dice

import "fmt"

// RollResult holds the full audit trail for a single dice roll evaluation.
//
// Postcondition: Total() == sum(Dice) + Modifier.
type RollResult struct {
	Expression string // original expression string, e.g. "2d6+3"
	Dice       []int  // individual die results before modifier
	Modifier   int    // flat modifier (may be negative)
}

// Total returns the sum of all die results plus the modifier.
//
// Postcondition: return value == sum(r.Dice) + r.Modifier.
func (r RollResult) Total() int {
	total := r.Modifier
	for _, d := range r.Dice {
		total += d
	}
	return total
}

// String returns a human-readable audit string in the format:
//
//	"2d6+3 → [4 5] +3 = 12"
func (r RollResult) String() string {
	return fmt.Sprintf("%s → %v %+d = %d", r.Expression, r.Dice, r.Modifier, r.Total())
}

// Source is the randomness provider for dice rolls and hit resolution.
//
// Implementations are not required to be safe for concurrent use; the
// simulation drives every roll from a single goroutine.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
	// Float64 returns a uniform random float in [0, 1).
	Float64() float64
}

// Float64Func adapts src into the plain callable the hit resolver consumes.
//
// Precondition: src must be non-nil.
func Float64Func(src Source) func() float64 {
	return src.Float64
}

// Sequence returns a callable yielding vals in order, then repeating the last
// value. It exists for deterministic replay of recorded draws.
//
// Precondition: len(vals) >= 1.
func Sequence(vals ...float64) func() float64 {
	i := 0
	return func() float64 {
		v := vals[i]
		if i < len(vals)-1 {
			i++
		}
		return v
	}
}
