package combat

import "math"

// Rand is the injected uniform source. Each call yields one draw in [0,1).
type Rand func() float64

// Outcome is the result tag of one swing.
type Outcome int

const (
	Miss Outcome = iota
	Hit
	Crit
	Dodged
	Parried
	Blocked
)

// String returns a human-readable outcome label.
func (o Outcome) String() string {
	switch o {
	case Miss:
		return "miss"
	case Hit:
		return "hit"
	case Crit:
		return "crit"
	case Dodged:
		return "dodge"
	case Parried:
		return "parry"
	case Blocked:
		return "block"
	default:
		return "unknown"
	}
}

// Lands reports whether the outcome deals damage.
func (o Outcome) Lands() bool { return o == Hit || o == Crit || o == Blocked }

// HitRequest is the input to one resolution. It is a value type and is never stored.
type HitRequest struct {
	AttackerLevel      int
	DefenderLevel      int
	WeaponSkill        int
	DefenseSkill       int
	Avoidance          Avoidance
	CritEnabled        bool
	RiposteEnabled     bool
	MultiStrikeEnabled bool
	Rand               Rand
}

// NewHitRequest builds a request from two participants.
//
// Precondition: attacker, defender and rnd must be non-nil.
func NewHitRequest(attacker, defender *Participant, rnd Rand) HitRequest {
	return HitRequest{
		AttackerLevel:      attacker.Level,
		DefenderLevel:      defender.Level,
		WeaponSkill:        attacker.WeaponSkill,
		DefenseSkill:       defender.DefenseSkill,
		Avoidance:          defender.Avoidance,
		CritEnabled:        attacker.CanCrit,
		RiposteEnabled:     defender.CanRiposte,
		MultiStrikeEnabled: attacker.CanMultiStrike,
		Rand:               rnd,
	}
}

// HitResult is the outcome of one resolution.
//
// Invariant: BlockMultiplier is 1.0 unless Outcome == Blocked, where it is in (0,1).
type HitResult struct {
	Outcome         Outcome
	BlockMultiplier float64
	Riposte         bool
	ExtraStrikes    int
}

// Resolver resolves swings against a Curve under fixed Bounds.
type Resolver struct {
	curve  Curve
	bounds Bounds
}

// NewResolver creates a Resolver.
//
// Precondition: curve must be non-nil.
func NewResolver(curve Curve, bounds Bounds) *Resolver {
	return &Resolver{curve: curve, bounds: bounds}
}

// ResolveHit resolves req with the default curve and bounds.
func ResolveHit(req HitRequest) HitResult {
	return NewResolver(DefaultCurve(), DefaultBounds()).Resolve(req)
}

// Resolve computes the outcome of one swing.
//
// Draws are consumed in a fixed order: rHit; then rAvoid unless the swing
// missed; then rCrit (crit enabled) and rMulti (multi-strike enabled) only
// when the swing connects without being avoided.
//
// Precondition: req.Rand must be non-nil.
// Postcondition: identical requests and draws yield identical results.
func (r *Resolver) Resolve(req HitRequest) HitResult {
	req = sanitize(req)
	result := HitResult{Outcome: Miss, BlockMultiplier: 1.0}

	rHit := draw(req.Rand)
	if rHit >= clamp(r.curve.HitChance(req), r.bounds.MinHitChance, r.bounds.MaxHitChance) {
		return result
	}

	rAvoid := draw(req.Rand)
	lo := 0.0
	for _, kind := range avoidanceOrder {
		if !req.Avoidance.Has(kind) {
			continue
		}
		width := clamp(r.curve.AvoidBand(kind, req), 0, r.bounds.MaxBand)
		hi := math.Min(lo+width, r.bounds.MaxTotalAvoidance)
		if rAvoid >= lo && rAvoid < hi {
			switch kind {
			case Dodge:
				result.Outcome = Dodged
			case Parry:
				result.Outcome = Parried
				result.Riposte = req.RiposteEnabled
			case Block:
				result.Outcome = Blocked
				result.BlockMultiplier = clamp(r.curve.BlockMultiplier(req), 0.01, 0.99)
			}
			return result
		}
		lo = hi
	}

	result.Outcome = Hit
	if req.CritEnabled {
		if draw(req.Rand) < clamp(r.curve.CritChance(req), 0, r.bounds.MaxCritChance) {
			result.Outcome = Crit
		}
	}
	if req.MultiStrikeEnabled {
		if draw(req.Rand) < clamp(r.curve.MultiStrikeChance(req), 0, 1) {
			result.ExtraStrikes = 1
		}
	}
	return result
}

// sanitize clamps malformed inputs to safe floors.
func sanitize(req HitRequest) HitRequest {
	req.AttackerLevel = max(req.AttackerLevel, 1)
	req.DefenderLevel = max(req.DefenderLevel, 1)
	req.WeaponSkill = max(req.WeaponSkill, 0)
	req.DefenseSkill = max(req.DefenseSkill, 0)
	return req
}

func draw(rnd Rand) float64 {
	return clamp(rnd(), 0, math.Nextafter(1, 0))
}
