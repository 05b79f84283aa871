package physics

import "math"

// RoomParams configures the ambient temperature model.
type RoomParams struct {
	BaseTemp     float64 // °C with no GPU heat contribution
	VariationCap float64 // °C, maximum rise above base from GPU heat
}

// DefaultRoomParams returns the room constants used by the emulator.
func DefaultRoomParams() RoomParams {
	return RoomParams{BaseTemp: 22.0, VariationCap: 4.0}
}

// RoomEngine integrates the ambient room temperature from the aggregate
// GPU heat contribution. The room heats slower than it cools, modelling
// passive HVAC working against the equipment. The integrator is
// continuous; readings are reported at 0.1 °C resolution.
type RoomEngine struct {
	params      RoomParams
	temperature float64
}

// NewRoomEngine starts the room at its base temperature.
func NewRoomEngine(params RoomParams) *RoomEngine {
	return &RoomEngine{params: params, temperature: params.BaseTemp}
}

// Temperature returns the current room temperature rounded to 0.1 °C.
func (e *RoomEngine) Temperature() float64 {
	return math.Round(e.temperature*10) / 10
}

// Update moves the room temperature one tick toward the target implied by
// the aggregate GPU heat contribution: +0.02 °C/tick below target,
// -0.05 °C/tick above it. heatContribution is the sum of per-GPU weights
// (see emulator.heatContribution).
func (e *RoomEngine) Update(heatContribution float64) {
	rise := heatContribution * 0.25
	if rise > e.params.VariationCap {
		rise = e.params.VariationCap
	}
	target := e.params.BaseTemp + rise

	switch {
	case e.temperature < target:
		e.temperature += 0.02
		if e.temperature > target {
			e.temperature = target
		}
	case e.temperature > target:
		e.temperature -= 0.05
		if e.temperature < target {
			e.temperature = target
		}
	}
}
