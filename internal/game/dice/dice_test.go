package dice_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/combatcore/internal/game/dice"
)

// fixedSrc returns val for every Intn call and f for every Float64 call.
type fixedSrc struct {
	val int
	f   float64
}

func (s fixedSrc) Intn(_ int) int   { return s.val }
func (s fixedSrc) Float64() float64 { return s.f }

func TestRollResult_Total(t *testing.T) {
	r := dice.RollResult{Expression: "2d6+3", Dice: []int{4, 5}, Modifier: 3}
	assert.Equal(t, 12, r.Total())
}

func TestRollResult_String(t *testing.T) {
	r := dice.RollResult{Expression: "2d6+3", Dice: []int{4, 5}, Modifier: 3}
	assert.Equal(t, "2d6+3 → [4 5] +3 = 12", r.String())
}

func TestParse_Forms(t *testing.T) {
	e, err := dice.Parse("d20")
	require.NoError(t, err)
	assert.Equal(t, 1, e.Count)
	assert.Equal(t, 20, e.Sides)

	e, err = dice.Parse("4d8-2")
	require.NoError(t, err)
	assert.Equal(t, 4, e.Count)
	assert.Equal(t, 8, e.Sides)
	assert.Equal(t, -2, e.Modifier)

	e, err = dice.Parse("10")
	require.NoError(t, err)
	assert.True(t, e.IsConstant())
	assert.Equal(t, 10, e.Modifier)
}

func TestParse_Rejects(t *testing.T) {
	for _, bad := range []string{"", "x", "0d6", "2d1", "2d", "d6+", "2d6*3"} {
		_, err := dice.Parse(bad)
		assert.Error(t, err, "expression %q should be rejected", bad)
	}
}

func TestRoll_UsesSource(t *testing.T) {
	r := dice.Roll(dice.MustParse("3d6+1"), fixedSrc{val: 2})
	assert.Equal(t, []int{3, 3, 3}, r.Dice)
	assert.Equal(t, 10, r.Total())
}

func TestRoll_ConstantNeedsNoSource(t *testing.T) {
	r := dice.Roll(dice.MustParse("7"), nil)
	assert.Equal(t, 7, r.Total())
}

func TestRoller_RollTotal_MalformedYieldsZero(t *testing.T) {
	roller := dice.NewLoggedRoller(fixedSrc{val: 0}, zap.NewNop())
	assert.Equal(t, 0, roller.RollTotal("not-dice"))
	assert.Equal(t, 2, roller.RollTotal("2d4"))
}

func TestSequence_RepeatsLast(t *testing.T) {
	next := dice.Sequence(0.1, 0.5)
	assert.Equal(t, 0.1, next())
	assert.Equal(t, 0.5, next())
	assert.Equal(t, 0.5, next())
}

func TestSeededSource_Reproducible(t *testing.T) {
	a := dice.NewSeededSource(7, 11)
	b := dice.NewSeededSource(7, 11)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Float64(), b.Float64())
		assert.Equal(t, a.Intn(20), b.Intn(20))
	}
}

func TestCryptoSource_InRange(t *testing.T) {
	src := dice.NewCryptoSource()
	for i := 0; i < 1000; i++ {
		v := src.Intn(6)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 6)
		f := src.Float64()
		assert.GreaterOrEqual(t, f, 0.0)
		assert.Less(t, f, 1.0)
	}
	assert.Panics(t, func() { src.Intn(0) })
}

func TestPropertyRoll_TotalWithinBounds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		count := rapid.IntRange(1, 10).Draw(rt, "count")
		sides := rapid.IntRange(2, 20).Draw(rt, "sides")
		mod := rapid.IntRange(-10, 10).Draw(rt, "mod")
		expr := fmt.Sprintf("%dd%d%+d", count, sides, mod)
		res, err := dice.RollExpr(expr, dice.NewSeededSource(uint64(count), uint64(sides)))
		require.NoError(rt, err)
		assert.GreaterOrEqual(rt, res.Total(), count+mod)
		assert.LessOrEqual(rt, res.Total(), count*sides+mod)
		assert.True(rt, strings.HasPrefix(res.String(), expr))
	})
}
