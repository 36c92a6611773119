package effect

// AttrDelta is a flat and percent adjustment to one attribute.
type AttrDelta struct {
	Flat int     `yaml:"flat"`
	Pct  float64 `yaml:"pct"`
}

// Modifiers is the modifier bundle carried by one effect stack.
// Percent values are in percent units: 100 means +100%.
type Modifiers struct {
	Attributes             map[string]AttrDelta `yaml:"attributes"`
	DamageDealtPct         float64              `yaml:"damage_dealt_pct"`
	DamageTakenPct         float64              `yaml:"damage_taken_pct"`
	DamageDealtPctBySchool map[School]float64   `yaml:"damage_dealt_pct_by_school"`
	DamageTakenPctBySchool map[School]float64   `yaml:"damage_taken_pct_by_school"`
	Armor                  int                  `yaml:"armor"`
	Resists                map[School]int       `yaml:"resists"`
}

// Snapshot is the aggregate of every live modifier on a participant.
type Snapshot struct {
	Attributes             map[string]AttrDelta
	DamageDealtPct         float64
	DamageTakenPct         float64
	DamageDealtPctBySchool map[School]float64
	DamageTakenPctBySchool map[School]float64
	Armor                  int
	Resists                map[School]int
}

func newSnapshot() Snapshot {
	return Snapshot{
		Attributes:             make(map[string]AttrDelta),
		DamageDealtPctBySchool: make(map[School]float64),
		DamageTakenPctBySchool: make(map[School]float64),
		Resists:                make(map[School]int),
	}
}

// add folds m into s, scaled by stacks.
func (s *Snapshot) add(m Modifiers, stacks int) {
	n := float64(stacks)
	for k, d := range m.Attributes {
		cur := s.Attributes[k]
		cur.Flat += d.Flat * stacks
		cur.Pct += d.Pct * n
		s.Attributes[k] = cur
	}
	s.DamageDealtPct += m.DamageDealtPct * n
	s.DamageTakenPct += m.DamageTakenPct * n
	for k, v := range m.DamageDealtPctBySchool {
		s.DamageDealtPctBySchool[k] += v * n
	}
	for k, v := range m.DamageTakenPctBySchool {
		s.DamageTakenPctBySchool[k] += v * n
	}
	s.Armor += m.Armor * stacks
	for k, v := range m.Resists {
		s.Resists[k] += v * stacks
	}
}

// TakenMultiplier returns the incoming damage factor for school: the global
// percent and then the school percent, applied multiplicatively.
//
// Postcondition: Returns >= 0.
func (s Snapshot) TakenMultiplier(school School) float64 {
	return pctFactor(s.DamageTakenPct) * pctFactor(s.DamageTakenPctBySchool[school])
}

// DealtMultiplier returns the outgoing damage factor for school.
//
// Postcondition: Returns >= 0.
func (s Snapshot) DealtMultiplier(school School) float64 {
	return pctFactor(s.DamageDealtPct) * pctFactor(s.DamageDealtPctBySchool[school])
}

// Attribute applies the aggregated delta for name to base.
func (s Snapshot) Attribute(name string, base int) int {
	d, ok := s.Attributes[name]
	if !ok {
		return base
	}
	v := float64(base+d.Flat) * pctFactor(d.Pct)
	return int(v)
}

func pctFactor(pct float64) float64 {
	f := 1 + pct/100
	if f < 0 {
		return 0
	}
	return f
}
