package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Alekperov-Vitalii/Diplom/internal/api/dto"
	"github.com/Alekperov-Vitalii/Diplom/internal/control"
	"github.com/Alekperov-Vitalii/Diplom/internal/domain"
	"github.com/Alekperov-Vitalii/Diplom/internal/profile"
	"github.com/Alekperov-Vitalii/Diplom/internal/storage"
)

// StateHandler serves the read-only monitoring endpoints plus the
// environmental profile switch.
type StateHandler struct {
	repo        storage.TelemetryRepository
	alertRepo   storage.AlertRepository
	cooling     *control.CoolingController
	trends      *control.TrendAnalyzer
	degradation *control.DegradationTracker
	profiles    *profile.Manager
	state       *SystemState
	logger      *slog.Logger
}

func NewStateHandler(
	repo storage.TelemetryRepository,
	alertRepo storage.AlertRepository,
	cooling *control.CoolingController,
	trends *control.TrendAnalyzer,
	degradation *control.DegradationTracker,
	profiles *profile.Manager,
	state *SystemState,
	logger *slog.Logger,
) *StateHandler {
	return &StateHandler{
		repo:        repo,
		alertRepo:   alertRepo,
		cooling:     cooling,
		trends:      trends,
		degradation: degradation,
		profiles:    profiles,
		state:       state,
		logger:      logger.With("component", "state_handler"),
	}
}

// GetCurrentState handles GET /api/v1/current-state.
func (h *StateHandler) GetCurrentState(c *gin.Context) {
	ctx := c.Request.Context()
	prof := h.profiles.Current()

	resp := dto.CurrentStateResponse{
		Mode:        h.state.Mode(),
		ProfileID:   prof.ID,
		ProfileName: prof.Name,
		Devices:     []dto.DeviceState{},
	}

	for _, deviceID := range h.state.DeviceIDs() {
		device := dto.DeviceState{
			DeviceID:      deviceID,
			ThermalStates: h.cooling.ThermalStates(deviceID),
			Degradation:   h.degradation.Summary(deviceID),
			LastSeen:      h.state.LastSeen(deviceID),
		}

		if p, err := h.repo.Latest(ctx, domain.MeasurementRoomTemp, deviceID); err == nil {
			temp := p.Fields["temperature"]
			device.RoomTemp = &temp
		}
		if p, err := h.repo.Latest(ctx, domain.MeasurementEnvironment, deviceID); err == nil {
			humidity, dust := p.Fields["humidity"], p.Fields["dust"]
			device.Humidity = &humidity
			device.Dust = &dust
		}

		pwm := h.cooling.CurrentPWM(deviceID)
		since := time.Now().Add(-5 * time.Minute)
		if points, err := h.repo.Range(ctx, domain.MeasurementGPUTemps, deviceID, since); err == nil {
			device.GPUTemps = latestGPUStates(points, pwm)
		}
		if points, err := h.repo.Range(ctx, domain.MeasurementFanStates, deviceID, since); err == nil {
			device.FanStates = latestFanStates(points)
		}

		resp.Devices = append(resp.Devices, device)
	}

	c.JSON(http.StatusOK, resp)
}

// latestGPUStates reduces a point range to the newest reading per GPU.
func latestGPUStates(points []*domain.Point, pwm map[int]int) []dto.GPUState {
	latest := make(map[int]*domain.Point)
	for _, p := range points {
		id, err := strconv.Atoi(p.Tags["gpu_id"])
		if err != nil {
			continue
		}
		if prev, ok := latest[id]; !ok || p.Timestamp.After(prev.Timestamp) {
			latest[id] = p
		}
	}
	out := make([]dto.GPUState, 0, len(latest))
	for id, p := range latest {
		out = append(out, dto.GPUState{
			GPUID:       id,
			Temperature: p.Fields["temperature"],
			Workload:    p.Fields["workload"],
			TargetPWM:   pwm[id],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GPUID < out[j].GPUID })
	return out
}

func latestFanStates(points []*domain.Point) []dto.FanSnapshot {
	latest := make(map[int]*domain.Point)
	for _, p := range points {
		id, err := strconv.Atoi(p.Tags["fan_id"])
		if err != nil {
			continue
		}
		if prev, ok := latest[id]; !ok || p.Timestamp.After(prev.Timestamp) {
			latest[id] = p
		}
	}
	out := make([]dto.FanSnapshot, 0, len(latest))
	for id, p := range latest {
		out = append(out, dto.FanSnapshot{
			FanID:   id,
			RPM:     int(p.Fields["rpm"]),
			PWMDuty: int(p.Fields["pwm_duty"]),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FanID < out[j].FanID })
	return out
}

// GetHistory handles GET /api/v1/history?device_id=&hours=.
func (h *StateHandler) GetHistory(c *gin.Context) {
	deviceID := c.Query("device_id")
	if deviceID == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:     "Invalid request",
			Message:   "device_id query parameter is required",
			Timestamp: time.Now(),
		})
		return
	}

	hours := 1
	if raw := c.Query("hours"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 24 {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error:     "Invalid request",
				Message:   "hours must be an integer between 1 and 24",
				Timestamp: time.Now(),
			})
			return
		}
		hours = parsed
	}

	ctx := c.Request.Context()
	since := time.Now().Add(-time.Duration(hours) * time.Hour)
	resp := dto.HistoryResponse{
		DeviceID: deviceID,
		Hours:    hours,
		Series:   make(map[string][]*domain.Point),
	}

	measurements := []string{
		domain.MeasurementGPUTemps,
		domain.MeasurementRoomTemp,
		domain.MeasurementFanStates,
		domain.MeasurementEnvironment,
		domain.MeasurementTrends,
	}
	for _, m := range measurements {
		points, err := h.repo.Range(ctx, m, deviceID, since)
		if err != nil && !errors.Is(err, domain.ErrDeviceNotFound) {
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
				Error:     "Storage error",
				Message:   "failed to query history",
				Timestamp: time.Now(),
			})
			return
		}
		resp.Series[m] = points
	}

	c.JSON(http.StatusOK, resp)
}

// GetFanStatistics handles GET /api/v1/fan-statistics.
func (h *StateHandler) GetFanStatistics(c *gin.Context) {
	ctx := c.Request.Context()
	since := time.Now().Add(-time.Hour)

	resp := dto.FanStatisticsResponse{Devices: []storage.FanStatistics{}}
	for _, deviceID := range h.state.DeviceIDs() {
		points, err := h.repo.Range(ctx, domain.MeasurementFanStates, deviceID, since)
		if err != nil {
			continue
		}
		resp.Devices = append(resp.Devices, storage.ComputeFanStatistics(deviceID, points))
	}

	c.JSON(http.StatusOK, resp)
}

// GetTrends handles GET /api/v1/trends?device_id=. Trends are kept per
// device, so the caller has to say which one it is asking about.
func (h *StateHandler) GetTrends(c *gin.Context) {
	deviceID := c.Query("device_id")
	if deviceID == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:     "Invalid request",
			Message:   "device_id query parameter is required",
			Timestamp: time.Now(),
		})
		return
	}

	humidityRate, humOK := h.trends.HumidityRate(deviceID)
	dustRate, dustOK := h.trends.DustRate(deviceID)

	resp := dto.TrendsResponse{
		DeviceID:          deviceID,
		VentilationLevel:  control.VentilationLevel(humidityRate, humOK),
		FiltrationQuality: control.FiltrationQuality(dustRate, dustOK),
		Degradation:       h.degradation.Summary(deviceID),
	}
	if humOK {
		resp.HumidityRatePerHour = &humidityRate
	}
	if dustOK {
		resp.DustRatePerHour = &dustRate
	}

	c.JSON(http.StatusOK, resp)
}

// GetProfile handles GET /api/v1/profile.
func (h *StateHandler) GetProfile(c *gin.Context) {
	prof := h.profiles.Current()
	c.JSON(http.StatusOK, dto.ProfileResponse{
		ProfileID:   prof.ID,
		Name:        prof.Name,
		Description: prof.Description,
	})
}

// SetProfile handles POST /api/v1/profile. A profile change resets the
// degradation accumulators: the simulated room starts a new regime.
func (h *StateHandler) SetProfile(c *gin.Context) {
	var req dto.ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:     "Invalid request body",
			Message:   err.Error(),
			Timestamp: time.Now(),
		})
		return
	}

	prof, err := h.profiles.Switch(req.ProfileID)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:     "Invalid profile",
			Message:   err.Error(),
			Timestamp: time.Now(),
		})
		return
	}

	h.degradation.Reset()
	h.state.RecordAction("profile_change", req.Operator, prof.Name)
	h.logger.Info("environmental profile switched",
		"profile_id", prof.ID, "name", prof.Name, "operator", req.Operator)

	c.JSON(http.StatusOK, dto.ProfileResponse{
		ProfileID:   prof.ID,
		Name:        prof.Name,
		Description: prof.Description,
	})
}

// GetUserActions handles GET /api/v1/user-actions?limit=.
func (h *StateHandler) GetUserActions(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error:     "Invalid request",
				Message:   "limit must be a non-negative integer",
				Timestamp: time.Now(),
			})
			return
		}
		limit = parsed
	}

	c.JSON(http.StatusOK, gin.H{"actions": h.state.Actions(limit)})
}

// GetRecentAlerts handles GET /api/v1/alerts?limit=. Newest first;
// limit 0 returns everything the store kept.
func (h *StateHandler) GetRecentAlerts(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error:     "Invalid request",
				Message:   "limit must be a non-negative integer",
				Timestamp: time.Now(),
			})
			return
		}
		limit = parsed
	}

	alerts, err := h.alertRepo.Recent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:     "Storage error",
			Message:   "failed to query alerts",
			Timestamp: time.Now(),
		})
		return
	}
	c.JSON(http.StatusOK, dto.AlertsResponse{Alerts: alerts, Total: len(alerts)})
}
