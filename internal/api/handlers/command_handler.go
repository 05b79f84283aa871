package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Alekperov-Vitalii/Diplom/internal/api/dto"
	"github.com/Alekperov-Vitalii/Diplom/internal/commands"
	"github.com/Alekperov-Vitalii/Diplom/internal/control"
	"github.com/Alekperov-Vitalii/Diplom/internal/domain"
)

// CommandHandler serves the pop-once command endpoints and the manual
// control surface.
type CommandHandler struct {
	fanQueue commands.FanQueue
	envQueue commands.EnvQueue
	cooling  *control.CoolingController
	state    *SystemState
	logger   *slog.Logger
}

func NewCommandHandler(
	fanQueue commands.FanQueue,
	envQueue commands.EnvQueue,
	cooling *control.CoolingController,
	state *SystemState,
	logger *slog.Logger,
) *CommandHandler {
	return &CommandHandler{
		fanQueue: fanQueue,
		envQueue: envQueue,
		cooling:  cooling,
		state:    state,
		logger:   logger.With("component", "command_handler"),
	}
}

// PopFanCommands handles GET /api/v1/fan-control/:device_id; 204 when
// nothing is queued. The read consumes the batch.
func (h *CommandHandler) PopFanCommands(c *gin.Context) {
	deviceID := c.Param("device_id")

	batch, err := h.fanQueue.Pop(c.Request.Context(), deviceID)
	if errors.Is(err, domain.ErrNoCommand) {
		c.Status(http.StatusNoContent)
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:     "Queue error",
			Message:   "failed to pop fan commands",
			Timestamp: time.Now(),
		})
		return
	}
	c.JSON(http.StatusOK, batch)
}

// PopEnvCommand handles GET /api/v1/env-control/:device_id.
func (h *CommandHandler) PopEnvCommand(c *gin.Context) {
	deviceID := c.Param("device_id")

	cmd, err := h.envQueue.Pop(c.Request.Context(), deviceID)
	if errors.Is(err, domain.ErrNoCommand) {
		c.Status(http.StatusNoContent)
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:     "Queue error",
			Message:   "failed to pop environmental command",
			Timestamp: time.Now(),
		})
		return
	}
	c.JSON(http.StatusOK, cmd)
}

// GetSystemMode handles GET /api/v1/system-mode.
func (h *CommandHandler) GetSystemMode(c *gin.Context) {
	c.JSON(http.StatusOK, dto.SystemModeResponse{Mode: h.state.Mode()})
}

// SetSystemMode handles POST /api/v1/system-mode. Switching back to auto
// drops any pending manual commands so the next control cycle starts
// from a clean slate.
func (h *CommandHandler) SetSystemMode(c *gin.Context) {
	var req dto.SystemModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:     "Invalid request body",
			Message:   err.Error(),
			Timestamp: time.Now(),
		})
		return
	}

	mode, err := domain.ParseSystemMode(req.Mode)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:     "Invalid mode",
			Message:   err.Error(),
			Timestamp: time.Now(),
		})
		return
	}

	h.state.SetMode(mode, req.Operator)
	if mode == domain.ModeAuto {
		ctx := c.Request.Context()
		for _, deviceID := range h.state.DeviceIDs() {
			if err := h.fanQueue.Clear(ctx, deviceID); err != nil {
				h.logger.Warn("failed to clear fan queue", "device_id", deviceID, "error", err)
			}
			if err := h.envQueue.Clear(ctx, deviceID); err != nil {
				h.logger.Warn("failed to clear env queue", "device_id", deviceID, "error", err)
			}
		}
	}

	h.logger.Info("system mode changed", "mode", mode, "operator", req.Operator)
	c.JSON(http.StatusOK, dto.SystemModeResponse{Mode: mode})
}

// ManualFanControl handles POST /api/v1/fan-control/manual. Rejected
// unless the system is in manual mode; operator values are queued
// verbatim, bypassing the cooling controller.
func (h *CommandHandler) ManualFanControl(c *gin.Context) {
	var req dto.ManualFanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:     "Invalid request body",
			Message:   err.Error(),
			Timestamp: time.Now(),
		})
		return
	}

	if h.state.Mode() != domain.ModeManual {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:     "Not in manual mode",
			Message:   domain.ErrNotManualMode.Error(),
			Timestamp: time.Now(),
		})
		return
	}

	batch := &domain.FanControlBatch{DeviceID: req.DeviceID}
	for _, entry := range req.Commands {
		batch.Commands = append(batch.Commands, domain.FanControlCommand{
			FanID:   entry.FanID,
			PWMDuty: entry.PWMDuty,
		})
	}
	if err := batch.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:     "Validation failed",
			Message:   err.Error(),
			Timestamp: time.Now(),
		})
		return
	}

	if err := h.fanQueue.Put(c.Request.Context(), req.DeviceID, batch); err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:     "Queue error",
			Message:   "failed to queue manual commands",
			Timestamp: time.Now(),
		})
		return
	}

	h.state.RecordAction("manual_fan_control", req.Operator, req.DeviceID)
	h.logger.Info("manual fan commands queued",
		"device_id", req.DeviceID, "count", len(batch.Commands), "operator", req.Operator)
	c.JSON(http.StatusOK, gin.H{"status": "queued", "commands": len(batch.Commands)})
}
