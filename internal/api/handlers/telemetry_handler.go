package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Alekperov-Vitalii/Diplom/internal/api/dto"
	"github.com/Alekperov-Vitalii/Diplom/internal/bus"
	"github.com/Alekperov-Vitalii/Diplom/internal/commands"
	"github.com/Alekperov-Vitalii/Diplom/internal/control"
	"github.com/Alekperov-Vitalii/Diplom/internal/domain"
	"github.com/Alekperov-Vitalii/Diplom/internal/storage"
)

// TelemetryHandler ingests device telemetry and runs the control cycle
// that answers it.
type TelemetryHandler struct {
	repo        storage.TelemetryRepository
	alertRepo   storage.AlertRepository
	cooling     *control.CoolingController
	env         *control.EnvironmentalController
	trends      *control.TrendAnalyzer
	degradation *control.DegradationTracker
	alerts      *control.AlertManager
	fanQueue    commands.FanQueue
	envQueue    commands.EnvQueue
	state       *SystemState
	publisher   bus.Publisher
	logger      *slog.Logger
}

func NewTelemetryHandler(
	repo storage.TelemetryRepository,
	alertRepo storage.AlertRepository,
	cooling *control.CoolingController,
	env *control.EnvironmentalController,
	trends *control.TrendAnalyzer,
	degradation *control.DegradationTracker,
	alerts *control.AlertManager,
	fanQueue commands.FanQueue,
	envQueue commands.EnvQueue,
	state *SystemState,
	publisher bus.Publisher,
	logger *slog.Logger,
) *TelemetryHandler {
	return &TelemetryHandler{
		repo:        repo,
		alertRepo:   alertRepo,
		cooling:     cooling,
		env:         env,
		trends:      trends,
		degradation: degradation,
		alerts:      alerts,
		fanQueue:    fanQueue,
		envQueue:    envQueue,
		state:       state,
		publisher:   publisher,
		logger:      logger.With("component", "telemetry_handler"),
	}
}

// IngestTelemetry handles POST /api/v1/telemetry: validates the payload,
// stores it, raises GPU temperature alerts, and in auto mode runs the
// cooling controller and queues the resulting fan batch.
func (h *TelemetryHandler) IngestTelemetry(c *gin.Context) {
	var payload domain.TelemetryPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:     "Invalid request body",
			Message:   err.Error(),
			Timestamp: time.Now(),
		})
		return
	}
	if err := payload.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:     "Validation failed",
			Message:   err.Error(),
			Timestamp: time.Now(),
		})
		return
	}

	ctx := c.Request.Context()
	points := domain.PointsFromTelemetry(&payload)
	if err := h.repo.WritePoints(ctx, points); err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:     "Storage error",
			Message:   "failed to store telemetry points",
			Timestamp: time.Now(),
		})
		return
	}
	h.state.ObserveTelemetry(&payload)

	alerts := h.alerts.Check(&payload)
	h.dispatchAlerts(ctx, alerts)

	queued := false
	if h.state.Mode() == domain.ModeAuto {
		humidity, dust := h.state.Environment(payload.DeviceID)
		modifier := control.EfficiencyModifier(humidity, dust) * h.degradation.CoolingEfficiency(payload.DeviceID)

		batch := h.cooling.Plan(&payload, modifier)
		if len(batch.Commands) > 0 {
			if err := h.fanQueue.Put(ctx, payload.DeviceID, batch); err != nil {
				h.logger.Error("failed to queue fan batch",
					"device_id", payload.DeviceID, "error", err)
			} else {
				queued = true
			}
		}
	}

	c.JSON(http.StatusOK, dto.AcceptedResponse{
		Status:        "ok",
		PointsStored:  len(points),
		AlertsRaised:  len(alerts),
		CommandQueued: queued,
	})
}

// IngestEnvironmental handles POST /api/v1/telemetry/environmental:
// stores the reading, runs the environmental controller, advances trend
// and degradation tracking and queues the actuator command.
func (h *TelemetryHandler) IngestEnvironmental(c *gin.Context) {
	var payload domain.EnvironmentalPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:     "Invalid request body",
			Message:   err.Error(),
			Timestamp: time.Now(),
		})
		return
	}
	if err := payload.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:     "Validation failed",
			Message:   err.Error(),
			Timestamp: time.Now(),
		})
		return
	}

	ctx := c.Request.Context()
	points := domain.PointsFromEnvironmental(&payload)
	if err := h.repo.WritePoints(ctx, points); err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:     "Storage error",
			Message:   "failed to store environmental points",
			Timestamp: time.Now(),
		})
		return
	}
	h.state.ObserveEnvironment(&payload)

	ts, err := time.Parse(time.RFC3339, payload.Timestamp)
	if err != nil {
		ts = time.Now().UTC()
	}
	h.trends.Add(payload.DeviceID, ts, payload.Humidity, payload.Dust)

	avgRPM, avgGPUTemp, roomTemp := h.state.Aggregates(payload.DeviceID)
	summary, degradationAlerts := h.degradation.Update(
		payload.DeviceID, payload.Humidity, payload.Dust, roomTemp, avgRPM, avgGPUTemp)

	trendPoint := domain.TrendPoint(payload.DeviceID, ts,
		summary.CI, summary.FWI, summary.CoolingEfficiency, summary.FanPower)
	if err := h.repo.WritePoints(ctx, []*domain.Point{trendPoint}); err != nil {
		h.logger.Error("failed to store trend point",
			"device_id", payload.DeviceID, "error", err)
	} else {
		points = append(points, trendPoint)
	}

	alerts := h.env.CheckAlerts(payload.DeviceID, payload.Humidity, payload.Dust, ts)
	alerts = append(alerts, degradationAlerts...)
	h.dispatchAlerts(ctx, alerts)

	queued := false
	if h.state.Mode() == domain.ModeAuto {
		cmd := h.env.Plan(payload.DeviceID, payload.Humidity, payload.Dust)
		if err := h.envQueue.Put(ctx, payload.DeviceID, &cmd); err != nil {
			h.logger.Error("failed to queue environmental command",
				"device_id", payload.DeviceID, "error", err)
		} else {
			queued = true
		}
	}

	h.logger.Debug("environmental cycle complete",
		"device_id", payload.DeviceID,
		"humidity", payload.Humidity,
		"dust", payload.Dust,
		"corrosion_index", summary.CI,
		"fan_wear_index", summary.FWI)

	c.JSON(http.StatusOK, dto.AcceptedResponse{
		Status:        "ok",
		PointsStored:  len(points),
		AlertsRaised:  len(alerts),
		CommandQueued: queued,
	})
}

// dispatchAlerts stores alerts durably and publishes them to the bus.
// Failures are logged; alert delivery never fails the telemetry request.
func (h *TelemetryHandler) dispatchAlerts(ctx context.Context, alerts []domain.Alert) {
	for i := range alerts {
		alert := &alerts[i]
		if err := h.alertRepo.Store(ctx, alert); err != nil &&
			!errors.Is(err, context.Canceled) {
			h.logger.Error("failed to store alert", "type", alert.Type, "error", err)
		}
		if err := h.publisher.PublishAlert(ctx, alert); err != nil {
			h.logger.Warn("failed to publish alert", "type", alert.Type, "error", err)
		}
		h.logger.Warn("alert raised",
			"type", alert.Type,
			"severity", alert.Severity,
			"value", alert.CurrentValue,
			"threshold", alert.Threshold)
	}
}
