package physics

import "math/rand"

// DustParams configures the particulate accumulation model. Values come
// from the active environmental profile.
type DustParams struct {
	Initial     float64 // μg/m³ at start
	Equilibrium float64 // μg/m³ long-term concentration
	BaseRate    float64 // μg/m³ accumulated per tick at full distance
}

// DustEngine integrates dust concentration. Accumulation is unidirectional:
// dust never decreases on its own, only through explicit cleaning. High fan
// activity stirs settled dust and accelerates buildup.
type DustEngine struct {
	params DustParams
	rng    *rand.Rand

	dust         float64
	fanInfluence float64
}

// NewDustEngine creates an engine at the profile's initial concentration.
func NewDustEngine(params DustParams, rng *rand.Rand) *DustEngine {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &DustEngine{params: params, rng: rng, dust: params.Initial, fanInfluence: 1.0}
}

// Dust returns the current true concentration.
func (e *DustEngine) Dust() float64 { return e.dust }

// Update advances the concentration by one tick. avgFanPWM (0-100) drives
// the stirring influence: above 80% duty the multiplier grows to 1.2,
// above 50% to 1.15. Approach to equilibrium is asymptotic — the rate
// scales with remaining distance — and continues as a slow trickle once
// the equilibrium is reached.
func (e *DustEngine) Update(avgFanPWM float64) float64 {
	switch {
	case avgFanPWM > 80:
		e.fanInfluence = 1.0 + (avgFanPWM-80)/100.0
	case avgFanPWM > 50:
		e.fanInfluence = 1.0 + (avgFanPWM-50)/200.0
	default:
		e.fanInfluence = 1.0
	}

	if e.dust < e.params.Equilibrium {
		distance := e.params.Equilibrium - e.dust
		rateFactor := distance / e.params.Equilibrium
		if rateFactor > 1.0 {
			rateFactor = 1.0
		}
		e.dust += e.params.BaseRate * e.fanInfluence * rateFactor
	} else {
		e.dust += e.params.BaseRate * 0.1 * e.fanInfluence
	}

	return e.dust
}

// ApplyCleaning simulates a physical cleaning intervention removing the
// given percentage of accumulated dust.
func (e *DustEngine) ApplyCleaning(reductionPercent float64) {
	e.dust *= 1.0 - clamp(reductionPercent, 0, 100)/100.0
}

// Reset reinitializes the engine for a new profile.
func (e *DustEngine) Reset(params DustParams) {
	e.params = params
	e.dust = params.Initial
	e.fanInfluence = 1.0
}
