package domain

import (
	"fmt"
	"time"
)

// ThermalState classifies the temperature trend of a GPU between two
// consecutive readings.
type ThermalState string

const (
	ThermalHeating ThermalState = "heating"
	ThermalSteady  ThermalState = "steady"
	ThermalCooling ThermalState = "cooling"
)

// GPUTemperature is a single GPU reading inside a telemetry payload.
// Workload is a percentage (0-100) on the wire; the emulator's physics
// works with the 0.0-1.0 fraction and converts when building the payload.
type GPUTemperature struct {
	GPUID       int     `json:"gpu_id"`
	Temperature float64 `json:"temperature"`
	Workload    float64 `json:"workload"`
}

// FanState is the reported state of one PWM fan.
type FanState struct {
	FanID   int `json:"fan_id"`
	RPM     int `json:"rpm"`
	PWMDuty int `json:"pwm_duty"`
}

// SensorData groups the thermal sensor readings of one device.
type SensorData struct {
	GPUTemps []GPUTemperature `json:"gpu_temps"`
	RoomTemp float64          `json:"room_temp"`
}

// FanData groups the fan states of one device.
type FanData struct {
	FanStates []FanState `json:"fan_states"`
}

// TelemetryPayload is the full telemetry packet a device sends per cycle.
// Timestamp is ISO-8601 (RFC 3339).
type TelemetryPayload struct {
	DeviceID  string     `json:"device_id"`
	Timestamp string     `json:"timestamp"`
	Sensors   SensorData `json:"sensors"`
	Fans      FanData    `json:"fans"`
}

// ActuatorState is a snapshot of the environmental actuators on a device.
type ActuatorState struct {
	DehumidifierActive bool `json:"dehumidifier_active"`
	DehumidifierPower  int  `json:"dehumidifier_power"`
	HumidifierActive   bool `json:"humidifier_active"`
	HumidifierPower    int  `json:"humidifier_power"`
}

// EnvironmentalPayload carries humidity/dust telemetry plus the current
// actuator snapshot.
type EnvironmentalPayload struct {
	DeviceID  string        `json:"device_id"`
	Timestamp string        `json:"timestamp"`
	Humidity  float64       `json:"humidity"`
	Dust      float64       `json:"dust"`
	Actuators ActuatorState `json:"actuators"`
}

// Validate checks range constraints at the boundary so the control core
// can assume well-formed inputs.
func (p *TelemetryPayload) Validate() error {
	if p.DeviceID == "" {
		return fmt.Errorf("%w: device_id is required", ErrValidationFailed)
	}
	if _, err := time.Parse(time.RFC3339, p.Timestamp); err != nil {
		return fmt.Errorf("%w: timestamp must be RFC 3339: %v", ErrValidationFailed, err)
	}
	if len(p.Sensors.GPUTemps) == 0 {
		return fmt.Errorf("%w: at least one GPU reading is required", ErrValidationFailed)
	}
	for _, g := range p.Sensors.GPUTemps {
		if g.GPUID < 1 || g.GPUID > 16 {
			return fmt.Errorf("%w: gpu_id %d out of range [1,16]", ErrValidationFailed, g.GPUID)
		}
		if g.Temperature < -10 || g.Temperature > 150 {
			return fmt.Errorf("%w: gpu %d temperature %.1f out of range [-10,150]", ErrValidationFailed, g.GPUID, g.Temperature)
		}
		if g.Workload < 0 || g.Workload > 100 {
			return fmt.Errorf("%w: gpu %d workload %.1f out of range [0,100]", ErrValidationFailed, g.GPUID, g.Workload)
		}
	}
	if p.Sensors.RoomTemp < -10 || p.Sensors.RoomTemp > 60 {
		return fmt.Errorf("%w: room_temp %.1f out of range [-10,60]", ErrValidationFailed, p.Sensors.RoomTemp)
	}
	for _, f := range p.Fans.FanStates {
		if f.FanID < 1 || f.FanID > 16 {
			return fmt.Errorf("%w: fan_id %d out of range [1,16]", ErrValidationFailed, f.FanID)
		}
		if f.RPM < 0 || f.RPM > 6000 {
			return fmt.Errorf("%w: fan %d rpm %d out of range [0,6000]", ErrValidationFailed, f.FanID, f.RPM)
		}
		if f.PWMDuty < 0 || f.PWMDuty > 100 {
			return fmt.Errorf("%w: fan %d pwm_duty %d out of range [0,100]", ErrValidationFailed, f.FanID, f.PWMDuty)
		}
	}
	return nil
}

// Validate checks range constraints on environmental telemetry.
func (p *EnvironmentalPayload) Validate() error {
	if p.DeviceID == "" {
		return fmt.Errorf("%w: device_id is required", ErrValidationFailed)
	}
	if _, err := time.Parse(time.RFC3339, p.Timestamp); err != nil {
		return fmt.Errorf("%w: timestamp must be RFC 3339: %v", ErrValidationFailed, err)
	}
	if p.Humidity < 0 || p.Humidity > 100 {
		return fmt.Errorf("%w: humidity %.1f out of range [0,100]", ErrValidationFailed, p.Humidity)
	}
	if p.Dust < 0 {
		return fmt.Errorf("%w: dust %.1f must be non-negative", ErrValidationFailed, p.Dust)
	}
	for name, power := range map[string]int{
		"dehumidifier_power": p.Actuators.DehumidifierPower,
		"humidifier_power":   p.Actuators.HumidifierPower,
	} {
		if power < 0 || power > 100 {
			return fmt.Errorf("%w: %s %d out of range [0,100]", ErrValidationFailed, name, power)
		}
	}
	return nil
}

// AvgFanRPM returns the mean RPM across the reported fans, 0 if none.
func (p *TelemetryPayload) AvgFanRPM() float64 {
	if len(p.Fans.FanStates) == 0 {
		return 0
	}
	total := 0
	for _, f := range p.Fans.FanStates {
		total += f.RPM
	}
	return float64(total) / float64(len(p.Fans.FanStates))
}

// AvgGPUTemp returns the mean GPU temperature, 0 if no readings.
func (p *TelemetryPayload) AvgGPUTemp() float64 {
	if len(p.Sensors.GPUTemps) == 0 {
		return 0
	}
	total := 0.0
	for _, g := range p.Sensors.GPUTemps {
		total += g.Temperature
	}
	return total / float64(len(p.Sensors.GPUTemps))
}
