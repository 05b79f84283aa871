package physics

import "math/rand"

// HumidityParams configures the relative-humidity model. Initial,
// equilibrium and base rate come from the active environmental profile.
type HumidityParams struct {
	Initial        float64 // %RH at start
	Equilibrium    float64 // %RH the room drifts toward
	BaseRate       float64 // fraction of the gap closed per tick
	NoiseAmplitude float64 // %RH, uniform fluctuation per tick
}

// HumidityEngine integrates relative humidity from ventilation drift,
// actuator activity and random fluctuation.
type HumidityEngine struct {
	params HumidityParams
	rng    *rand.Rand

	humidity    float64
	controlRate float64 // %RH per tick from dehumidifier/humidifier
	ventilation float64 // rate multiplier, 1.0 = nominal airflow
}

// NewHumidityEngine creates an engine at the profile's initial humidity.
func NewHumidityEngine(params HumidityParams, rng *rand.Rand) *HumidityEngine {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	if params.NoiseAmplitude == 0 {
		params.NoiseAmplitude = 0.1
	}
	return &HumidityEngine{
		params:      params,
		rng:         rng,
		humidity:    params.Initial,
		ventilation: 1.0,
	}
}

// Humidity returns the current true relative humidity.
func (e *HumidityEngine) Humidity() float64 { return e.humidity }

// Equilibrium returns the profile's asymptotic humidity target.
func (e *HumidityEngine) Equilibrium() float64 { return e.params.Equilibrium }

// ApplyControl converts actuator state into a control rate. A device at
// 100% power moves humidity by 5% per hour; with the 5-minute reference
// tick that is 5/12 per tick, scaled linearly by the power level.
func (e *HumidityEngine) ApplyControl(dehumidifierActive bool, dehumidifierPower int, humidifierActive bool, humidifierPower int) {
	const fullPowerRate = 5.0 / 12.0

	e.controlRate = 0
	if dehumidifierActive && dehumidifierPower > 0 {
		e.controlRate -= fullPowerRate * float64(dehumidifierPower) / 100.0
	}
	if humidifierActive && humidifierPower > 0 {
		e.controlRate += fullPowerRate * float64(humidifierPower) / 100.0
	}
}

// Update advances the humidity by one tick: proportional drift toward the
// equilibrium (faster when further away), actuator influence, then noise.
func (e *HumidityEngine) Update() float64 {
	diff := e.params.Equilibrium - e.humidity
	natural := diff * e.params.BaseRate * e.ventilation

	noise := (e.rng.Float64()*2 - 1) * e.params.NoiseAmplitude

	e.humidity += natural + e.controlRate + noise
	e.humidity = clamp(e.humidity, 0.0, 100.0)
	return e.humidity
}

// Reset reinitializes the engine for a new profile.
func (e *HumidityEngine) Reset(params HumidityParams) {
	if params.NoiseAmplitude == 0 {
		params.NoiseAmplitude = e.params.NoiseAmplitude
	}
	e.params = params
	e.humidity = params.Initial
	e.controlRate = 0
}
