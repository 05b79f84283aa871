// Package control holds the fog server's control algorithms: cooling
// setpoint computation, environmental actuator control, trend analysis
// and cumulative degradation tracking. Each controller owns its keyed
// state behind a mutex and takes its environmental inputs as explicit
// per-call values.
package control

import (
	"log/slog"
	"sync"
	"time"

	"github.com/Alekperov-Vitalii/Diplom/internal/domain"
)

const (
	// MinFanPWM is the idle floor of the fan curve.
	MinFanPWM = 20
	// MaxFanPWM caps every computed setpoint.
	MaxFanPWM = 100

	// thermalHysteresis is the dead zone of the thermal state machine.
	thermalHysteresis = 0.5

	// pwmHoldTime is the minimum time between downward PWM changes.
	pwmHoldTime = 60 * time.Second
	// pwmMaxDrop bounds a single downward step.
	pwmMaxDrop = 10
)

type gpuControlState struct {
	lastTemp   float64
	hasPrev    bool
	currentPWM int
	lastChange time.Time
	thermal    domain.ThermalState
}

// CoolingController computes per-fan PWM setpoints from GPU telemetry.
// State is keyed by device id then GPU id so concurrently reporting
// devices never interfere.
type CoolingController struct {
	mu      sync.Mutex
	devices map[string]map[int]*gpuControlState
	logger  *slog.Logger
	now     func() time.Time
}

func NewCoolingController(logger *slog.Logger) *CoolingController {
	return &CoolingController{
		devices: make(map[string]map[int]*gpuControlState),
		logger:  logger.With("component", "cooling_controller"),
		now:     time.Now,
	}
}

// Plan computes the fan command batch for one telemetry payload.
// efficiencyModifier is the combined cooling-efficiency value (environment
// times corrosion degradation), injected by the caller each cycle.
func (c *CoolingController) Plan(payload *domain.TelemetryPayload, efficiencyModifier float64) *domain.FanControlBatch {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	gpus, ok := c.devices[payload.DeviceID]
	if !ok {
		gpus = make(map[int]*gpuControlState)
		c.devices[payload.DeviceID] = gpus
	}

	batch := &domain.FanControlBatch{DeviceID: payload.DeviceID}
	for _, reading := range payload.Sensors.GPUTemps {
		st, ok := gpus[reading.GPUID]
		if !ok {
			st = &gpuControlState{currentPWM: MinFanPWM, thermal: domain.ThermalSteady}
			gpus[reading.GPUID] = st
		}

		st.thermal = classify(st, reading.Temperature)
		st.lastTemp = reading.Temperature
		st.hasPrev = true

		target := targetPWM(reading.Temperature, reading.Workload, efficiencyModifier)
		c.react(st, target, now)

		batch.Commands = append(batch.Commands, domain.FanControlCommand{
			FanID:   reading.GPUID,
			PWMDuty: st.currentPWM,
		})
	}
	return batch
}

// react applies the asymmetric reaction policy: increases are immediate,
// decreases wait out the hold time and step down gradually.
func (c *CoolingController) react(st *gpuControlState, target int, now time.Time) {
	switch {
	case target > st.currentPWM:
		st.currentPWM = target
		st.lastChange = now
	case target < st.currentPWM:
		if !st.lastChange.IsZero() && now.Sub(st.lastChange) < pwmHoldTime {
			return
		}
		step := st.currentPWM - target
		if step > pwmMaxDrop {
			step = pwmMaxDrop
		}
		st.currentPWM -= step
		st.lastChange = now
	}
}

func classify(st *gpuControlState, temp float64) domain.ThermalState {
	if !st.hasPrev {
		return domain.ThermalSteady
	}
	delta := temp - st.lastTemp
	switch {
	case delta > thermalHysteresis:
		return domain.ThermalHeating
	case delta < -thermalHysteresis:
		return domain.ThermalCooling
	default:
		return domain.ThermalSteady
	}
}

// targetPWM evaluates the base temperature curve, applies the workload
// feed-forward floor and compensates for degraded cooling efficiency.
// workload is a percentage (0-100).
func targetPWM(temp, workload, modifier float64) int {
	pwm := basePWM(temp)

	if workload > 80 && pwm < 50 {
		pwm = 50
	} else if workload > 50 && pwm < 40 {
		pwm = 40
	}

	// Degraded heat transfer means more airflow for the same effect.
	// A modifier at 1 needs no compensation; near 0.1 the divisor is
	// floored so the target cannot blow up.
	if modifier > 0.1 && modifier < 0.99 {
		pwm = pwm / modifier
	}

	out := int(pwm + 0.5)
	if out < MinFanPWM {
		out = MinFanPWM
	}
	if out > MaxFanPWM {
		out = MaxFanPWM
	}
	return out
}

// basePWM is the piecewise-linear temperature curve.
func basePWM(temp float64) float64 {
	switch {
	case temp < 30:
		return MinFanPWM
	case temp < 50:
		return 20 + (temp-30)/20*20
	case temp < 70:
		return 40 + (temp-50)/20*30
	case temp < 85:
		return 70 + (temp-70)/15*30
	default:
		return MaxFanPWM
	}
}

// ThermalStates reports the last classified state per GPU for a device.
func (c *CoolingController) ThermalStates(deviceID string) map[int]domain.ThermalState {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[int]domain.ThermalState)
	for id, st := range c.devices[deviceID] {
		out[id] = st.thermal
	}
	return out
}

// CurrentPWM reports the held setpoints per GPU for a device.
func (c *CoolingController) CurrentPWM(deviceID string) map[int]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[int]int)
	for id, st := range c.devices[deviceID] {
		out[id] = st.currentPWM
	}
	return out
}

// ResetDevice drops all control state of one device.
func (c *CoolingController) ResetDevice(deviceID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.devices, deviceID)
}
