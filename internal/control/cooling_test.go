package control

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alekperov-Vitalii/Diplom/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func telemetryWith(deviceID string, temps ...domain.GPUTemperature) *domain.TelemetryPayload {
	return &domain.TelemetryPayload{
		DeviceID:  deviceID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Sensors:   domain.SensorData{GPUTemps: temps, RoomTemp: 22.0},
	}
}

func TestThermalStateSequence(t *testing.T) {
	clock := newFakeClock()
	c := NewCoolingController(testLogger())
	c.now = clock.Now

	steps := []struct {
		temp float64
		want domain.ThermalState
	}{
		{60.0, domain.ThermalSteady}, // first observation
		{61.0, domain.ThermalHeating},
		{60.0, domain.ThermalCooling},
		{60.2, domain.ThermalSteady}, // inside hysteresis band
	}
	for _, step := range steps {
		c.Plan(telemetryWith("dev", domain.GPUTemperature{GPUID: 1, Temperature: step.temp}), 1.0)
		assert.Equal(t, step.want, c.ThermalStates("dev")[1], "temp %.1f", step.temp)
		clock.Advance(30 * time.Second)
	}
}

func TestBasePWMCurve(t *testing.T) {
	cases := []struct {
		temp float64
		want int
	}{
		{25, 20},  // below curve start
		{30, 20},
		{40, 30},
		{50, 40},
		{60, 55},
		{70, 70},
		{85, 100},
		{95, 100},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, targetPWM(tc.temp, 0, 1.0), "temp %.0f", tc.temp)
	}
}

func TestWorkloadFloor(t *testing.T) {
	// cool GPU under heavy load still gets the feed-forward floor
	assert.Equal(t, 50, targetPWM(25, 85, 1.0))
	assert.Equal(t, 40, targetPWM(25, 60, 1.0))
	// floor does not lower a higher curve value
	assert.Equal(t, 100, targetPWM(90, 85, 1.0))
}

func TestEfficiencyCompensation(t *testing.T) {
	// modifier 1.0: no compensation
	assert.Equal(t, 40, targetPWM(50, 0, 1.0))
	// degraded air: 40/0.96 = 41.67 -> 42
	assert.Equal(t, 42, targetPWM(50, 0, 0.96))
	// near-zero modifier skipped entirely, no blow-up
	assert.Equal(t, 40, targetPWM(50, 0, 0.05))
	// result still capped
	assert.Equal(t, 100, targetPWM(85, 0, 0.96))
}

func TestHeatingJumpsImmediately(t *testing.T) {
	clock := newFakeClock()
	c := NewCoolingController(testLogger())
	c.now = clock.Now

	batch := c.Plan(telemetryWith("dev", domain.GPUTemperature{GPUID: 1, Temperature: 40}), 1.0)
	require.Equal(t, 30, batch.Commands[0].PWMDuty)

	// one step to 95C: full target on the very next cycle
	clock.Advance(5 * time.Second)
	batch = c.Plan(telemetryWith("dev", domain.GPUTemperature{GPUID: 1, Temperature: 95}), 1.0)
	assert.Equal(t, 100, batch.Commands[0].PWMDuty)
}

func TestCoolingHoldAndMaxDrop(t *testing.T) {
	clock := newFakeClock()
	c := NewCoolingController(testLogger())
	c.now = clock.Now

	c.Plan(telemetryWith("dev", domain.GPUTemperature{GPUID: 1, Temperature: 95}), 1.0)
	require.Equal(t, 100, c.CurrentPWM("dev")[1])

	// drop to 40C: inside the hold window nothing may change
	clock.Advance(30 * time.Second)
	batch := c.Plan(telemetryWith("dev", domain.GPUTemperature{GPUID: 1, Temperature: 40}), 1.0)
	assert.Equal(t, 100, batch.Commands[0].PWMDuty)

	// after the hold expires, at most one max-drop step per cycle
	clock.Advance(31 * time.Second)
	batch = c.Plan(telemetryWith("dev", domain.GPUTemperature{GPUID: 1, Temperature: 40}), 1.0)
	assert.Equal(t, 90, batch.Commands[0].PWMDuty)

	// the step itself reset the hold timer
	clock.Advance(5 * time.Second)
	batch = c.Plan(telemetryWith("dev", domain.GPUTemperature{GPUID: 1, Temperature: 40}), 1.0)
	assert.Equal(t, 90, batch.Commands[0].PWMDuty)

	clock.Advance(60 * time.Second)
	batch = c.Plan(telemetryWith("dev", domain.GPUTemperature{GPUID: 1, Temperature: 40}), 1.0)
	assert.Equal(t, 80, batch.Commands[0].PWMDuty)
}

func TestSteadyHoldsPWM(t *testing.T) {
	clock := newFakeClock()
	c := NewCoolingController(testLogger())
	c.now = clock.Now

	c.Plan(telemetryWith("dev", domain.GPUTemperature{GPUID: 1, Temperature: 60}), 1.0)
	want := c.CurrentPWM("dev")[1]

	for i := 0; i < 5; i++ {
		clock.Advance(2 * time.Minute)
		batch := c.Plan(telemetryWith("dev", domain.GPUTemperature{GPUID: 1, Temperature: 60}), 1.0)
		assert.Equal(t, want, batch.Commands[0].PWMDuty)
	}
}

func TestDevicesAreIsolated(t *testing.T) {
	clock := newFakeClock()
	c := NewCoolingController(testLogger())
	c.now = clock.Now

	c.Plan(telemetryWith("dev-a", domain.GPUTemperature{GPUID: 1, Temperature: 95}), 1.0)
	c.Plan(telemetryWith("dev-b", domain.GPUTemperature{GPUID: 1, Temperature: 25}), 1.0)

	assert.Equal(t, 100, c.CurrentPWM("dev-a")[1])
	assert.Equal(t, MinFanPWM, c.CurrentPWM("dev-b")[1])
}

func TestResetDevice(t *testing.T) {
	c := NewCoolingController(testLogger())
	c.Plan(telemetryWith("dev", domain.GPUTemperature{GPUID: 1, Temperature: 95}), 1.0)
	c.ResetDevice("dev")
	assert.Empty(t, c.CurrentPWM("dev"))
}
