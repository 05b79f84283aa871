package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Alekperov-Vitalii/Diplom/internal/bus"
	"github.com/Alekperov-Vitalii/Diplom/internal/commands"
	"github.com/Alekperov-Vitalii/Diplom/internal/control"
	"github.com/Alekperov-Vitalii/Diplom/internal/domain"
	"github.com/Alekperov-Vitalii/Diplom/internal/profile"
	"github.com/Alekperov-Vitalii/Diplom/internal/storage/inmemory"
)

// testEnv wires the handlers against in-memory backends, the same way
// the server does, and exposes the pieces tests need to poke at.
type testEnv struct {
	router      *gin.Engine
	repo        *inmemory.TelemetryRepository
	alertRepo   *inmemory.AlertRepository
	fanQueue    *commands.InMemoryFanQueue
	envQueue    *commands.InMemoryEnvQueue
	state       *SystemState
	cooling     *control.CoolingController
	degradation *control.DegradationTracker
	profiles    *profile.Manager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	env := &testEnv{
		repo:        inmemory.NewTelemetryRepository(),
		alertRepo:   inmemory.NewAlertRepository(),
		fanQueue:    commands.NewInMemoryFanQueue(),
		envQueue:    commands.NewInMemoryEnvQueue(),
		state:       NewSystemState(),
		cooling:     control.NewCoolingController(logger),
		degradation: control.NewDegradationTracker(logger),
		profiles:    profile.NewManager(profile.DefaultProfileID),
	}

	envCtrl := control.NewEnvironmentalController(logger)
	trends := control.NewTrendAnalyzer()
	alerts := control.NewAlertManager()

	telemetryHandler := NewTelemetryHandler(
		env.repo, env.alertRepo, env.cooling, envCtrl, trends,
		env.degradation, alerts, env.fanQueue, env.envQueue,
		env.state, bus.NoopPublisher{}, logger)
	commandHandler := NewCommandHandler(env.fanQueue, env.envQueue, env.cooling, env.state, logger)
	stateHandler := NewStateHandler(
		env.repo, env.alertRepo, env.cooling, trends,
		env.degradation, env.profiles, env.state, logger)

	env.router = gin.New()
	env.router.POST("/api/v1/telemetry", telemetryHandler.IngestTelemetry)
	env.router.POST("/api/v1/telemetry/environmental", telemetryHandler.IngestEnvironmental)
	env.router.GET("/api/v1/fan-control/:device_id", commandHandler.PopFanCommands)
	env.router.POST("/api/v1/fan-control/manual", commandHandler.ManualFanControl)
	env.router.GET("/api/v1/env-control/:device_id", commandHandler.PopEnvCommand)
	env.router.GET("/api/v1/system-mode", commandHandler.GetSystemMode)
	env.router.POST("/api/v1/system-mode", commandHandler.SetSystemMode)
	env.router.GET("/api/v1/current-state", stateHandler.GetCurrentState)
	env.router.GET("/api/v1/history", stateHandler.GetHistory)
	env.router.GET("/api/v1/fan-statistics", stateHandler.GetFanStatistics)
	env.router.GET("/api/v1/trends", stateHandler.GetTrends)
	env.router.GET("/api/v1/profile", stateHandler.GetProfile)
	env.router.POST("/api/v1/profile", stateHandler.SetProfile)
	env.router.GET("/api/v1/user-actions", stateHandler.GetUserActions)
	env.router.GET("/api/v1/alerts", stateHandler.GetRecentAlerts)

	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) setManualMode(t *testing.T) {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/v1/system-mode", map[string]string{"mode": "manual", "operator": "tester"})
	if w.Code != http.StatusOK {
		t.Fatalf("switch to manual failed: %d %s", w.Code, w.Body.String())
	}
}

func telemetryPayload(deviceID string, temps ...float64) *domain.TelemetryPayload {
	p := &domain.TelemetryPayload{
		DeviceID:  deviceID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	p.Sensors.RoomTemp = 24.5
	for i, temp := range temps {
		p.Sensors.GPUTemps = append(p.Sensors.GPUTemps, domain.GPUTemperature{
			GPUID:       i + 1,
			Temperature: temp,
			Workload:    40,
		})
		p.Fans.FanStates = append(p.Fans.FanStates, domain.FanState{
			FanID:   i + 1,
			RPM:     2060,
			PWMDuty: 30,
		})
	}
	return p
}

func environmentalPayload(deviceID string, humidity, dust float64) *domain.EnvironmentalPayload {
	return &domain.EnvironmentalPayload{
		DeviceID:  deviceID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Humidity:  humidity,
		Dust:      dust,
	}
}
