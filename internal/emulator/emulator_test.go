package emulator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alekperov-Vitalii/Diplom/internal/domain"
)

type fakeGateway struct {
	telemetry  []*domain.TelemetryPayload
	env        []*domain.EnvironmentalPayload
	fanBatch   *domain.FanControlBatch
	envCmd     *domain.EnvironmentalCommand
	profileID  int
	sendErr    error
	profileErr error
}

func (g *fakeGateway) SendTelemetry(_ context.Context, p *domain.TelemetryPayload) error {
	if g.sendErr != nil {
		return g.sendErr
	}
	g.telemetry = append(g.telemetry, p)
	return nil
}

func (g *fakeGateway) SendEnvironmental(_ context.Context, p *domain.EnvironmentalPayload) error {
	if g.sendErr != nil {
		return g.sendErr
	}
	g.env = append(g.env, p)
	return nil
}

func (g *fakeGateway) FetchFanCommands(_ context.Context, _ string) (*domain.FanControlBatch, error) {
	b := g.fanBatch
	g.fanBatch = nil
	return b, nil
}

func (g *fakeGateway) FetchEnvCommand(_ context.Context, _ string) (*domain.EnvironmentalCommand, error) {
	c := g.envCmd
	g.envCmd = nil
	return c, nil
}

func (g *fakeGateway) FetchProfile(_ context.Context) (int, error) {
	if g.profileErr != nil {
		return 0, g.profileErr
	}
	return g.profileID, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEmulator(gw *fakeGateway) *Emulator {
	return New(Options{
		DeviceID:     "edge-device-01",
		GPUCount:     4,
		ReadInterval: 5 * time.Second,
		SendInterval: 30 * time.Second,
		ProfileID:    5,
		Rand:         rand.New(rand.NewSource(7)),
	}, gw, testLogger())
}

func TestTickSendsOnSendInterval(t *testing.T) {
	gw := &fakeGateway{profileID: 5}
	e := newTestEmulator(gw)

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		e.Tick(context.Background(), now)
		now = now.Add(5 * time.Second)
	}

	// first tick sends immediately, then every 30s: ticks 0 and 6.
	require.Len(t, gw.telemetry, 2)
	require.Len(t, gw.env, 2)
	assert.Equal(t, int64(12), e.Stats.Reads.Load())
	assert.Equal(t, int64(2), e.Stats.Sends.Load())
}

func TestTelemetryPayloadIsValid(t *testing.T) {
	gw := &fakeGateway{profileID: 5}
	e := newTestEmulator(gw)

	e.Tick(context.Background(), time.Now())
	require.Len(t, gw.telemetry, 1)
	require.NoError(t, gw.telemetry[0].Validate())
	require.Len(t, gw.env, 1)
	require.NoError(t, gw.env[0].Validate())

	p := gw.telemetry[0]
	assert.Equal(t, "edge-device-01", p.DeviceID)
	assert.Len(t, p.Sensors.GPUTemps, 4)
	assert.Len(t, p.Fans.FanStates, 4)
	for _, g := range p.Sensors.GPUTemps {
		assert.GreaterOrEqual(t, g.Workload, 0.0)
		assert.LessOrEqual(t, g.Workload, 100.0)
	}
}

func TestFanCommandsApplied(t *testing.T) {
	gw := &fakeGateway{
		profileID: 5,
		fanBatch: &domain.FanControlBatch{
			DeviceID: "edge-device-01",
			Commands: []domain.FanControlCommand{
				{FanID: 1, PWMDuty: 85},
				{FanID: 2, PWMDuty: 85},
			},
		},
	}
	e := newTestEmulator(gw)

	e.Tick(context.Background(), time.Now())

	assert.InDelta(t, 0.85, e.fans.CoolingEffect(1), 1e-9)
	assert.Equal(t, int64(1), e.Stats.Commands.Load())

	states := e.fans.States()
	assert.Equal(t, 85, states[0].PWMDuty)
	assert.Equal(t, rpmMin+(rpmMax-rpmMin)*85/100, states[0].RPM)
}

func TestEnvCommandDrivesActuators(t *testing.T) {
	gw := &fakeGateway{
		profileID: 5,
		envCmd: &domain.EnvironmentalCommand{
			DeviceID:           "edge-device-01",
			DehumidifierActive: true,
			DehumidifierPower:  100,
		},
	}
	e := newTestEmulator(gw)

	e.Tick(context.Background(), time.Now())

	st := e.actuators.Snapshot()
	assert.True(t, st.DehumidifierActive)
	assert.Equal(t, 100, st.DehumidifierPower)
}

func TestProfileSwitchResetsEnvironment(t *testing.T) {
	gw := &fakeGateway{profileID: 5}
	e := newTestEmulator(gw)
	require.Equal(t, 5, e.ProfileID())

	gw.profileID = 9
	now := time.Now()
	for i := 0; i < profileCheckEvery; i++ {
		e.Tick(context.Background(), now)
		now = now.Add(5 * time.Second)
	}

	assert.Equal(t, 9, e.ProfileID())
	// profile 9 starts dust at 60, well above profile 5's band.
	assert.InDelta(t, 60, e.dust.Dust(), 2.0)
	assert.Equal(t, domain.ActuatorState{}, e.actuators.Snapshot())
}

func TestUnknownRemoteProfileIgnored(t *testing.T) {
	gw := &fakeGateway{profileID: 42}
	e := newTestEmulator(gw)

	now := time.Now()
	for i := 0; i < profileCheckEvery; i++ {
		e.Tick(context.Background(), now)
		now = now.Add(5 * time.Second)
	}

	assert.Equal(t, 5, e.ProfileID())
}

func TestSendFailureIsTolerated(t *testing.T) {
	gw := &fakeGateway{profileID: 5, sendErr: errors.New("connection refused")}
	e := newTestEmulator(gw)

	e.Tick(context.Background(), time.Now())
	e.Tick(context.Background(), time.Now().Add(30*time.Second))

	assert.Equal(t, int64(2), e.Stats.Reads.Load())
	assert.Zero(t, e.Stats.Sends.Load())
	assert.Equal(t, int64(4), e.Stats.SendFailures.Load())
}

func TestFanControllerClamps(t *testing.T) {
	c := NewFanController(2, 30)
	c.SetPWM(1, 150)
	c.SetPWM(2, -20)

	states := c.States()
	assert.Equal(t, 100, states[0].PWMDuty)
	assert.Equal(t, rpmMax, states[0].RPM)
	assert.Equal(t, 0, states[1].PWMDuty)
	assert.Equal(t, rpmMin, states[1].RPM)
	assert.InDelta(t, 50.0, c.AvgPWM(), 1e-9)
}
