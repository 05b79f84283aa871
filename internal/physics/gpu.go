// Package physics models the true physical state of the simulated
// datacenter: per-GPU die temperature, room temperature, humidity and dust.
// Engines own their state exclusively and know nothing about sensors or
// transport — they return true physical values.
package physics

import "math/rand"

// GPUParams configures the thermal model of a single GPU.
type GPUParams struct {
	IdleTempMin float64 // °C, idle band lower bound
	IdleTempMax float64 // °C, idle band upper bound
	LoadTempMin float64 // °C, full-load band lower bound
	LoadTempMax float64 // °C, full-load band upper bound
	HeatingRate float64 // °C per second toward target
	CoolingRate float64 // °C per second, base cooling coefficient
}

// DefaultGPUParams returns the thermal constants used by the emulator.
func DefaultGPUParams() GPUParams {
	return GPUParams{
		IdleTempMin: 35.0,
		IdleTempMax: 45.0,
		LoadTempMin: 70.0,
		LoadTempMax: 90.0,
		HeatingRate: 0.5,
		CoolingRate: 0.4,
	}
}

const (
	// MaxGPUTemp is the safety ceiling of the thermal model.
	MaxGPUTemp = 130.0
	// MinAboveAmbient keeps a powered GPU warmer than the room.
	MinAboveAmbient = 5.0
)

// GPUEngine integrates the true temperature of one GPU from workload,
// fan cooling and ambient temperature.
type GPUEngine struct {
	id     int
	params GPUParams
	rng    *rand.Rand

	temperature float64
	target      float64
	workload    float64
}

// NewGPUEngine creates an engine with a random idle-band initial
// temperature. rng may be nil, in which case a time-seeded source is used.
func NewGPUEngine(id int, params GPUParams, rng *rand.Rand) *GPUEngine {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	e := &GPUEngine{id: id, params: params, rng: rng}
	e.temperature = params.IdleTempMin + rng.Float64()*(params.IdleTempMax-params.IdleTempMin)
	e.target = e.temperature
	return e
}

// ID returns the GPU slot number.
func (e *GPUEngine) ID() int { return e.id }

// Temperature returns the current true temperature.
func (e *GPUEngine) Temperature() float64 { return e.temperature }

// Workload returns the current workload fraction (0.0-1.0).
func (e *GPUEngine) Workload() float64 { return e.workload }

// TargetTemperature returns the temperature the die drifts toward.
func (e *GPUEngine) TargetTemperature() float64 { return e.target }

// SetWorkload clamps w to [0,1] and recomputes the target temperature:
// below 10% load the GPU settles into a randomized idle band, above it the
// target interpolates linearly from the idle maximum into a randomized
// load band scaled by the workload.
func (e *GPUEngine) SetWorkload(w float64) {
	e.workload = clamp(w, 0.0, 1.0)
	if e.workload < 0.1 {
		e.target = e.params.IdleTempMin + e.rng.Float64()*(e.params.IdleTempMax-e.params.IdleTempMin)
		return
	}
	loadTemp := e.params.LoadTempMin + e.rng.Float64()*(e.params.LoadTempMax-e.params.LoadTempMin)
	e.target = e.params.IdleTempMax + (loadTemp-e.params.IdleTempMax)*e.workload
}

// Update advances the thermal state by dt seconds. coolingEffect is the
// fan contribution in [0,1], ambient the current room temperature.
//
// The ordering is fixed: natural drift toward the target first, forced fan
// cooling second. Forced cooling scales with both fan strength and the
// temperature delta above ambient, which yields the characteristic
// slow-rise / fast-forced-fall curve.
func (e *GPUEngine) Update(dt, coolingEffect, ambient float64) float64 {
	if e.temperature < e.target {
		e.temperature += e.params.HeatingRate * dt
		if e.temperature > e.target {
			e.temperature = e.target
		}
	} else if e.temperature > e.target {
		// Passive cooling only, much slower than forced.
		e.temperature -= e.params.CoolingRate * dt * 0.3
	}

	if coolingEffect > 0 {
		tempDiff := e.temperature - ambient
		if tempDiff > 0 {
			e.temperature -= e.params.CoolingRate * coolingEffect * dt * (tempDiff / 50.0)
		}
	}

	if min := ambient + MinAboveAmbient; e.temperature < min {
		e.temperature = min
	}
	if e.temperature > MaxGPUTemp {
		e.temperature = MaxGPUTemp
	}

	return e.temperature
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
