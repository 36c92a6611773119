package combat

// Curve maps request inputs to raw probabilities. The Resolver clamps every
// value it reads from a Curve, so implementations need not.
type Curve interface {
	// HitChance returns the probability that the swing connects.
	HitChance(req HitRequest) float64
	// AvoidBand returns the width of kind's band inside [0,1).
	AvoidBand(kind AvoidanceKind, req HitRequest) float64
	// CritChance returns the probability that a connecting swing crits.
	CritChance(req HitRequest) float64
	// MultiStrikeChance returns the probability of one follow-on strike.
	MultiStrikeChance(req HitRequest) float64
	// BlockMultiplier returns the damage fraction that gets through a block.
	BlockMultiplier(req HitRequest) float64
}

// LinearCurve is the default configurable curve: every probability is an
// affine function of level delta and skill investment.
type LinearCurve struct {
	BaseHit              float64
	HitPerLevel          float64
	HitPerWeaponSkill    float64
	BaseAvoid            float64
	AvoidPerDefenseSkill float64
	BaseCrit             float64
	CritPerLevel         float64
	MultiStrike          float64
	Block                float64
}

// DefaultCurve returns the stock LinearCurve.
func DefaultCurve() LinearCurve {
	return LinearCurve{
		BaseHit:              0.90,
		HitPerLevel:          0.02,
		HitPerWeaponSkill:    0.005,
		BaseAvoid:            0.05,
		AvoidPerDefenseSkill: 0.05,
		BaseCrit:             0.05,
		CritPerLevel:         0.01,
		MultiStrike:          0.10,
		Block:                0.5,
	}
}

// HitChance grows with the attacker's level lead and weapon skill.
func (c LinearCurve) HitChance(req HitRequest) float64 {
	delta := float64(req.AttackerLevel - req.DefenderLevel)
	return c.BaseHit + delta*c.HitPerLevel + float64(req.WeaponSkill)*c.HitPerWeaponSkill
}

// AvoidBand grows with defense skill relative to the attacker's level.
// Every enabled kind shares the same width.
func (c LinearCurve) AvoidBand(_ AvoidanceKind, req HitRequest) float64 {
	return c.BaseAvoid + c.AvoidPerDefenseSkill*float64(req.DefenseSkill)/float64(max(req.AttackerLevel, 1))
}

// CritChance grows with the attacker's level lead.
func (c LinearCurve) CritChance(req HitRequest) float64 {
	return c.BaseCrit + float64(req.AttackerLevel-req.DefenderLevel)*c.CritPerLevel
}

// MultiStrikeChance is flat.
func (c LinearCurve) MultiStrikeChance(HitRequest) float64 { return c.MultiStrike }

// BlockMultiplier is flat.
func (c LinearCurve) BlockMultiplier(HitRequest) float64 { return c.Block }

// Bounds are the floor and ceiling clamps the Resolver applies to any Curve.
//
// Invariant: 0 <= MinHitChance <= MaxHitChance <= 1; MaxTotalAvoidance < 1.
type Bounds struct {
	MinHitChance      float64
	MaxHitChance      float64
	MaxBand           float64
	MaxTotalAvoidance float64
	MaxCritChance     float64
}

// DefaultBounds returns the stock clamps.
func DefaultBounds() Bounds {
	return Bounds{
		MinHitChance:      0.05,
		MaxHitChance:      0.99,
		MaxBand:           0.30,
		MaxTotalAvoidance: 0.75,
		MaxCritChance:     0.50,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v != v { // NaN
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
