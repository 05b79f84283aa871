// Package emulator implements the edge device: a virtual rack node with
// GPU thermal sensors, room/humidity/dust sensors and a PWM fan bank,
// driven by a single tick loop.
package emulator

import (
	"context"
	"log/slog"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/Alekperov-Vitalii/Diplom/internal/domain"
	"github.com/Alekperov-Vitalii/Diplom/internal/physics"
	"github.com/Alekperov-Vitalii/Diplom/internal/profile"
	"github.com/Alekperov-Vitalii/Diplom/internal/sensor"
	"github.com/Alekperov-Vitalii/Diplom/internal/workload"
)

// Gateway is the transport to the fog server. Every method tolerates
// transient failure; the emulator keeps running on errors.
type Gateway interface {
	SendTelemetry(ctx context.Context, payload *domain.TelemetryPayload) error
	SendEnvironmental(ctx context.Context, payload *domain.EnvironmentalPayload) error
	FetchFanCommands(ctx context.Context, deviceID string) (*domain.FanControlBatch, error)
	FetchEnvCommand(ctx context.Context, deviceID string) (*domain.EnvironmentalCommand, error)
	FetchProfile(ctx context.Context) (int, error)
}

// Options configures one emulated device.
type Options struct {
	DeviceID     string
	GPUCount     int
	ReadInterval time.Duration
	SendInterval time.Duration
	ProfileID    int
	Rand         *rand.Rand
}

// Stats counts loop activity for the shutdown summary.
type Stats struct {
	Reads        atomic.Int64
	Sends        atomic.Int64
	SendFailures atomic.Int64
	Commands     atomic.Int64
}

// Emulator drives the physics engines, samples the sensors and exchanges
// telemetry and commands with the fog server.
type Emulator struct {
	opts    Options
	gateway Gateway
	logger  *slog.Logger

	gpus         []*physics.GPUEngine
	room         *physics.RoomEngine
	humidity     *physics.HumidityEngine
	dust         *physics.DustEngine
	fans         *FanController
	actuators    *Actuators
	orchestrator *workload.Orchestrator

	gpuSensor  *sensor.TemperatureSensor
	roomSensor *sensor.RoomSensor
	humSensor  *sensor.HumiditySensor
	dustSensor *sensor.DustSensor

	profileID  int
	readsSince int
	lastSend   time.Time

	Stats Stats
}

// profileCheckEvery is how many sensor reads pass between remote
// profile polls.
const profileCheckEvery = 6

func New(opts Options, gw Gateway, logger *slog.Logger) *Emulator {
	if opts.GPUCount <= 0 {
		opts.GPUCount = 4
	}
	if opts.ReadInterval <= 0 {
		opts.ReadInterval = 5 * time.Second
	}
	if opts.SendInterval <= 0 {
		opts.SendInterval = 30 * time.Second
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	opts.Rand = rng

	prof, err := profile.Get(opts.ProfileID)
	if err != nil {
		prof, _ = profile.Get(profile.DefaultProfileID)
	}

	gpus := make([]*physics.GPUEngine, opts.GPUCount)
	for i := range gpus {
		gpus[i] = physics.NewGPUEngine(i+1, physics.DefaultGPUParams(), rng)
	}

	e := &Emulator{
		opts:         opts,
		gateway:      gw,
		logger:       logger.With("component", "emulator", "device_id", opts.DeviceID),
		gpus:         gpus,
		room:         physics.NewRoomEngine(physics.DefaultRoomParams()),
		fans:         NewFanController(opts.GPUCount, 30),
		actuators:    NewActuators(),
		orchestrator: workload.NewOrchestrator(workload.DefaultGroups(opts.GPUCount, rng), rng),
		gpuSensor:    sensor.NewTemperatureSensor(0.3),
		roomSensor:   sensor.NewRoomSensor(),
		humSensor:    sensor.NewHumiditySensor(0.5, rng),
		dustSensor:   sensor.NewDustSensor(1.0, rng),
		profileID:    prof.ID,
	}
	e.humidity = physics.NewHumidityEngine(humidityParams(prof), rng)
	e.dust = physics.NewDustEngine(dustParams(prof), rng)
	return e
}

func humidityParams(p profile.Profile) physics.HumidityParams {
	return physics.HumidityParams{
		Initial:        p.HumidityInitial,
		Equilibrium:    p.HumidityEquil,
		BaseRate:       p.HumidityRate,
		NoiseAmplitude: 0.3,
	}
}

func dustParams(p profile.Profile) physics.DustParams {
	return physics.DustParams{
		Initial:     p.DustInitial,
		Equilibrium: p.DustEquilibrium,
		BaseRate:    p.DustRate,
	}
}

// Run executes the tick loop until the context is cancelled.
func (e *Emulator) Run(ctx context.Context) error {
	e.logger.Info("emulator started",
		"gpus", e.opts.GPUCount,
		"read_interval", e.opts.ReadInterval.String(),
		"send_interval", e.opts.SendInterval.String(),
		"profile_id", e.profileID)

	ticker := time.NewTicker(e.opts.ReadInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("emulator stopped",
				"reads", e.Stats.Reads.Load(),
				"sends", e.Stats.Sends.Load(),
				"send_failures", e.Stats.SendFailures.Load(),
				"commands_applied", e.Stats.Commands.Load())
			return ctx.Err()
		case now := <-ticker.C:
			e.Tick(ctx, now)
		}
	}
}

// Tick performs one read cycle and, when the send interval has elapsed,
// one exchange with the server. Exported so tests can drive the loop
// with a synthetic clock.
func (e *Emulator) Tick(ctx context.Context, now time.Time) {
	e.Stats.Reads.Add(1)
	dt := e.opts.ReadInterval.Seconds()

	heat := 0.0
	for _, gpu := range e.gpus {
		load := e.orchestrator.LoadFor(gpu.ID(), now)
		gpu.SetWorkload(load)
		switch {
		case load > 0.5:
			heat += 1.0
		case load > 0.2:
			heat += 0.5
		}
	}
	e.room.Update(heat)

	ambient := e.room.Temperature()
	for _, gpu := range e.gpus {
		effect := e.fans.CoolingEffect(gpu.ID())
		gpu.Update(dt, effect, ambient)
	}

	st := e.actuators.Snapshot()
	e.humidity.ApplyControl(st.DehumidifierActive, st.DehumidifierPower,
		st.HumidifierActive, st.HumidifierPower)
	e.humidity.Update()
	e.dust.Update(e.fans.AvgPWM())

	e.readsSince++
	if e.readsSince >= profileCheckEvery {
		e.readsSince = 0
		e.checkProfile(ctx)
	}

	if e.lastSend.IsZero() || now.Sub(e.lastSend) >= e.opts.SendInterval {
		e.lastSend = now
		e.exchange(ctx, now)
	}
}

// exchange pushes both telemetry payloads and pulls pending commands.
func (e *Emulator) exchange(ctx context.Context, now time.Time) {
	telemetry := e.buildTelemetry(now)
	if err := e.gateway.SendTelemetry(ctx, telemetry); err != nil {
		e.Stats.SendFailures.Add(1)
		e.logger.Warn("telemetry send failed", "error", err)
	} else {
		e.Stats.Sends.Add(1)
	}

	env := e.buildEnvironmental(now)
	if err := e.gateway.SendEnvironmental(ctx, env); err != nil {
		e.Stats.SendFailures.Add(1)
		e.logger.Warn("environmental send failed", "error", err)
	}

	if batch, err := e.gateway.FetchFanCommands(ctx, e.opts.DeviceID); err != nil {
		e.logger.Warn("fan command fetch failed", "error", err)
	} else if batch != nil {
		e.fans.ApplyBatch(batch)
		e.Stats.Commands.Add(1)
		e.logger.Info("fan commands applied", "count", len(batch.Commands))
	}

	if cmd, err := e.gateway.FetchEnvCommand(ctx, e.opts.DeviceID); err != nil {
		e.logger.Warn("environmental command fetch failed", "error", err)
	} else if cmd != nil {
		e.actuators.Apply(cmd)
		e.Stats.Commands.Add(1)
		e.logger.Info("environmental command applied",
			"dehumidifier", cmd.DehumidifierActive, "humidifier", cmd.HumidifierActive)
	}
}

func (e *Emulator) checkProfile(ctx context.Context) {
	id, err := e.gateway.FetchProfile(ctx)
	if err != nil {
		e.logger.Warn("profile check failed", "error", err)
		return
	}
	if id == e.profileID {
		return
	}
	prof, err := profile.Get(id)
	if err != nil {
		e.logger.Warn("server reported unknown profile", "profile_id", id)
		return
	}
	e.logger.Info("switching environmental profile",
		"from", e.profileID, "to", prof.ID, "name", prof.Name)
	e.profileID = prof.ID
	e.humidity.Reset(humidityParams(prof))
	e.dust.Reset(dustParams(prof))
	e.actuators.Reset()
}

func (e *Emulator) buildTelemetry(now time.Time) *domain.TelemetryPayload {
	temps := make([]domain.GPUTemperature, len(e.gpus))
	for i, gpu := range e.gpus {
		temps[i] = domain.GPUTemperature{
			GPUID:       gpu.ID(),
			Temperature: e.gpuSensor.Read(gpu.Temperature()),
			Workload:    gpu.Workload() * 100,
		}
	}
	return &domain.TelemetryPayload{
		DeviceID:  e.opts.DeviceID,
		Timestamp: now.UTC().Format(time.RFC3339),
		Sensors: domain.SensorData{
			GPUTemps: temps,
			RoomTemp: e.roomSensor.Read(e.room.Temperature()),
		},
		Fans: domain.FanData{FanStates: e.fans.States()},
	}
}

func (e *Emulator) buildEnvironmental(now time.Time) *domain.EnvironmentalPayload {
	return &domain.EnvironmentalPayload{
		DeviceID:  e.opts.DeviceID,
		Timestamp: now.UTC().Format(time.RFC3339),
		Humidity:  e.humSensor.Read(e.humidity.Humidity()),
		Dust:      e.dustSensor.Read(e.dust.Dust()),
		Actuators: e.actuators.Snapshot(),
	}
}

// ProfileID reports the active environmental profile.
func (e *Emulator) ProfileID() int { return e.profileID }

// FanStates exposes the current fan bank state.
func (e *Emulator) FanStates() []domain.FanState { return e.fans.States() }
