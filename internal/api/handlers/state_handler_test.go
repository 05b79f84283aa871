package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alekperov-Vitalii/Diplom/internal/api/dto"
	"github.com/Alekperov-Vitalii/Diplom/internal/domain"
)

func TestGetCurrentState_EmptySystem(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/current-state", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.CurrentStateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, domain.ModeAuto, resp.Mode)
	assert.Equal(t, 5, resp.ProfileID)
	assert.Equal(t, "Moderate Dust, Optimal Humidity", resp.ProfileName)
	assert.Empty(t, resp.Devices)
}

func TestGetCurrentState_ReflectsIngestedTelemetry(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/telemetry", telemetryPayload("edge-01", 60, 72))
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodPost, "/api/v1/telemetry/environmental",
		environmentalPayload("edge-01", 55, 20))
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/current-state", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.CurrentStateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Devices, 1)

	device := resp.Devices[0]
	assert.Equal(t, "edge-01", device.DeviceID)
	require.NotNil(t, device.RoomTemp)
	assert.InDelta(t, 24.5, *device.RoomTemp, 0.01)
	require.NotNil(t, device.Humidity)
	assert.InDelta(t, 55, *device.Humidity, 0.01)
	require.NotNil(t, device.Dust)
	assert.InDelta(t, 20, *device.Dust, 0.01)

	require.Len(t, device.GPUTemps, 2)
	assert.Equal(t, 1, device.GPUTemps[0].GPUID)
	assert.InDelta(t, 60, device.GPUTemps[0].Temperature, 0.01)
	assert.Equal(t, 55, device.GPUTemps[0].TargetPWM)
	assert.InDelta(t, 72, device.GPUTemps[1].Temperature, 0.01)

	require.Len(t, device.FanStates, 2)
	assert.Equal(t, 2060, device.FanStates[0].RPM)
	assert.Len(t, device.ThermalStates, 2)
}

func TestGetHistory_RequiresDeviceID(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/history", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetHistory_RejectsOutOfRangeHours(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/history?device_id=edge-01&hours=48", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/history?device_id=edge-01&hours=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetHistory_ReturnsStoredSeries(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/telemetry", telemetryPayload("edge-01", 60))
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodPost, "/api/v1/telemetry/environmental",
		environmentalPayload("edge-01", 55, 20))
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/history?device_id=edge-01&hours=2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.HistoryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "edge-01", resp.DeviceID)
	assert.Equal(t, 2, resp.Hours)
	assert.Len(t, resp.Series[domain.MeasurementGPUTemps], 1)
	assert.Len(t, resp.Series[domain.MeasurementRoomTemp], 1)
	assert.Len(t, resp.Series[domain.MeasurementFanStates], 1)
	assert.Len(t, resp.Series[domain.MeasurementEnvironment], 1)
	assert.Len(t, resp.Series[domain.MeasurementTrends], 1)
}

func TestGetFanStatistics_SummarizesLastHour(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/telemetry", telemetryPayload("edge-01", 60))
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/fan-statistics", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.FanStatisticsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Devices, 1)
	assert.Equal(t, "edge-01", resp.Devices[0].DeviceID)
	assert.Equal(t, 1, resp.Devices[0].SampleCount)
	assert.InDelta(t, 30, resp.Devices[0].AvgPWMLastHour, 0.01)
}

func TestGetTrends_RequiresDeviceID(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/trends", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetTrends_UnknownWithoutSamples(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/trends?device_id=edge-01", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.TrendsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "edge-01", resp.DeviceID)
	assert.Nil(t, resp.HumidityRatePerHour)
	assert.Nil(t, resp.DustRatePerHour)
	assert.Equal(t, "unknown", resp.VentilationLevel)
	assert.Equal(t, "unknown", resp.FiltrationQuality)
}

func TestGetTrends_TracksEachDeviceSeparately(t *testing.T) {
	env := newTestEnv(t)

	// two devices at different but steady humidity must not bleed into
	// each other's degradation state
	for i := 0; i < 3; i++ {
		w := env.do(t, http.MethodPost, "/api/v1/telemetry/environmental",
			environmentalPayload("edge-humid", 80, 10))
		require.Equal(t, http.StatusOK, w.Code)
		w = env.do(t, http.MethodPost, "/api/v1/telemetry/environmental",
			environmentalPayload("edge-dry", 30, 10))
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := env.do(t, http.MethodGet, "/api/v1/trends?device_id=edge-humid", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var humid dto.TrendsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &humid))
	assert.Equal(t, "edge-humid", humid.DeviceID)

	w = env.do(t, http.MethodGet, "/api/v1/trends?device_id=edge-dry", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var dry dto.TrendsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dry))

	assert.GreaterOrEqual(t, humid.Degradation.CI, dry.Degradation.CI)
	assert.Equal(t, env.degradation.Summary("edge-humid").CI, humid.Degradation.CI)
	assert.Equal(t, env.degradation.Summary("edge-dry").CI, dry.Degradation.CI)
}

func TestProfile_GetAndSwitch(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/profile", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.ProfileResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 5, resp.ProfileID)

	w = env.do(t, http.MethodPost, "/api/v1/profile",
		dto.ProfileRequest{ProfileID: 9, Operator: "tester"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 9, resp.ProfileID)
	assert.Equal(t, "High Dust, High Humidity", resp.Name)

	assert.Equal(t, 9, env.profiles.Current().ID)
}

func TestSetProfile_RejectsUnknownID(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/profile",
		dto.ProfileRequest{ProfileID: 42})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 5, env.profiles.Current().ID)
}

func TestSetProfile_ResetsDegradationIndices(t *testing.T) {
	env := newTestEnv(t)

	// accumulate some corrosion state first
	for i := 0; i < 3; i++ {
		w := env.do(t, http.MethodPost, "/api/v1/telemetry/environmental",
			environmentalPayload("edge-01", 75, 40))
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := env.do(t, http.MethodPost, "/api/v1/profile",
		dto.ProfileRequest{ProfileID: 2, Operator: "tester"})
	require.Equal(t, http.StatusOK, w.Code)

	summary := env.degradation.Summary("edge-01")
	assert.Zero(t, summary.CI)
	assert.Zero(t, summary.FWI)
}

func TestGetRecentAlerts_ReturnsStoredAlertsNewestFirst(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/telemetry/environmental",
		environmentalPayload("edge-01", 50, 80))
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodPost, "/api/v1/telemetry", telemetryPayload("edge-01", 125))
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/alerts", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.AlertsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Total)
	assert.Equal(t, domain.AlertGPUTemp, resp.Alerts[0].Type)
	assert.Equal(t, domain.AlertDustHigh, resp.Alerts[1].Type)

	w = env.do(t, http.MethodGet, "/api/v1/alerts?limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)

	w = env.do(t, http.MethodGet, "/api/v1/alerts?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetUserActions_RecordsAuditTrail(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/system-mode",
		map[string]string{"mode": "manual", "operator": "alice"})
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodPost, "/api/v1/profile",
		dto.ProfileRequest{ProfileID: 3, Operator: "bob"})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/user-actions", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Actions []dto.UserAction `json:"actions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Actions, 2)
	// newest first
	assert.Equal(t, "profile_change", resp.Actions[0].Action)
	assert.Equal(t, "bob", resp.Actions[0].Operator)
	assert.Equal(t, "system_mode_change", resp.Actions[1].Action)
	assert.Equal(t, "alice", resp.Actions[1].Operator)

	w = env.do(t, http.MethodGet, "/api/v1/user-actions?limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Actions, 1)
	assert.Equal(t, "profile_change", resp.Actions[0].Action)
}
