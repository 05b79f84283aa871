// Package sensor applies measurement noise and quantization on top of true
// physical values. Readings are pure functions of the input — all state
// lives in the physics engines.
package sensor

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// TemperatureSensor emulates a DS18B20-class digital thermometer:
// Gaussian measurement noise plus 0.1 °C quantization.
type TemperatureSensor struct {
	noise      distuv.Normal
	resolution float64
}

// NewTemperatureSensor creates a sensor with the given noise standard
// deviation (°C).
func NewTemperatureSensor(noiseStd float64) *TemperatureSensor {
	return &TemperatureSensor{
		noise:      distuv.Normal{Mu: 0, Sigma: noiseStd},
		resolution: 0.1,
	}
}

// Read returns the measured temperature for a true value.
func (s *TemperatureSensor) Read(trueValue float64) float64 {
	noisy := trueValue + s.noise.Rand()
	return math.Round(noisy/s.resolution) * s.resolution
}

// RoomSensor measures the ambient temperature with a smaller noise floor.
type RoomSensor struct {
	noise distuv.Normal
}

// NewRoomSensor creates a room temperature sensor.
func NewRoomSensor() *RoomSensor {
	return &RoomSensor{noise: distuv.Normal{Mu: 0, Sigma: 0.2}}
}

// Read returns the measured room temperature at 0.1 °C resolution.
func (s *RoomSensor) Read(trueValue float64) float64 {
	return math.Round((trueValue+s.noise.Rand())*10) / 10
}

// HumiditySensor emulates a DHT22: uniform noise, clamped to [0,100]%.
type HumiditySensor struct {
	amplitude float64
	rng       *rand.Rand
}

// NewHumiditySensor creates a sensor with the given uniform noise
// amplitude (%RH).
func NewHumiditySensor(amplitude float64, rng *rand.Rand) *HumiditySensor {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &HumiditySensor{amplitude: amplitude, rng: rng}
}

// Read returns the measured relative humidity.
func (s *HumiditySensor) Read(trueValue float64) float64 {
	noisy := trueValue + (s.rng.Float64()*2-1)*s.amplitude
	if noisy < 0 {
		return 0
	}
	if noisy > 100 {
		return 100
	}
	return noisy
}

// DustSensor emulates a GP2Y1010 optical dust sensor: uniform noise,
// floored at zero.
type DustSensor struct {
	amplitude float64
	rng       *rand.Rand
}

// NewDustSensor creates a sensor with the given uniform noise amplitude
// (μg/m³).
func NewDustSensor(amplitude float64, rng *rand.Rand) *DustSensor {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &DustSensor{amplitude: amplitude, rng: rng}
}

// Read returns the measured dust concentration.
func (s *DustSensor) Read(trueValue float64) float64 {
	noisy := trueValue + (s.rng.Float64()*2-1)*s.amplitude
	if noisy < 0 {
		return 0
	}
	return noisy
}
