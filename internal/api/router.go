// Package api wires the fog server's REST surface: telemetry ingestion,
// pop-once command delivery, monitoring and operator endpoints.
package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/Alekperov-Vitalii/Diplom/internal/api/handlers"
	"github.com/Alekperov-Vitalii/Diplom/internal/api/middleware"
	"github.com/Alekperov-Vitalii/Diplom/internal/bus"
	"github.com/Alekperov-Vitalii/Diplom/internal/commands"
	"github.com/Alekperov-Vitalii/Diplom/internal/control"
	"github.com/Alekperov-Vitalii/Diplom/internal/profile"
	"github.com/Alekperov-Vitalii/Diplom/internal/storage"
)

// Deps carries everything the router's handlers need.
type Deps struct {
	TelemetryRepo storage.TelemetryRepository
	AlertRepo     storage.AlertRepository
	FanQueue      commands.FanQueue
	EnvQueue      commands.EnvQueue
	Publisher     bus.Publisher
	Profiles      *profile.Manager
	Logger        *slog.Logger
}

// Router manages API routing and handlers
type Router struct {
	engine           *gin.Engine
	telemetryHandler *handlers.TelemetryHandler
	commandHandler   *handlers.CommandHandler
	stateHandler     *handlers.StateHandler
}

// NewRouter creates the router with fresh controller state. One router
// owns all server-side control state; requests from concurrently
// reporting devices are serialized per controller.
func NewRouter(deps Deps) *Router {
	logger := deps.Logger
	state := handlers.NewSystemState()

	cooling := control.NewCoolingController(logger)
	env := control.NewEnvironmentalController(logger)
	trends := control.NewTrendAnalyzer()
	degradation := control.NewDegradationTracker(logger)
	alerts := control.NewAlertManager()

	router := &Router{
		engine: gin.New(),
		telemetryHandler: handlers.NewTelemetryHandler(
			deps.TelemetryRepo, deps.AlertRepo,
			cooling, env, trends, degradation, alerts,
			deps.FanQueue, deps.EnvQueue, state, deps.Publisher, logger),
		commandHandler: handlers.NewCommandHandler(
			deps.FanQueue, deps.EnvQueue, cooling, state, logger),
		stateHandler: handlers.NewStateHandler(
			deps.TelemetryRepo, deps.AlertRepo,
			cooling, trends, degradation, deps.Profiles, state, logger),
	}

	router.setupMiddleware(logger)
	router.setupRoutes()

	return router
}

// setupMiddleware configures global middleware
func (r *Router) setupMiddleware(logger *slog.Logger) {
	r.engine.Use(middleware.LoggingMiddleware(logger))
	r.engine.Use(middleware.ErrorHandlerMiddleware(logger))
	r.engine.Use(gin.Recovery())
}

// setupRoutes configures all API routes
func (r *Router) setupRoutes() {
	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})

	v1 := r.engine.Group("/api/v1")
	{
		telemetry := v1.Group("/telemetry")
		{
			telemetry.POST("", r.telemetryHandler.IngestTelemetry)
			telemetry.POST("/environmental", r.telemetryHandler.IngestEnvironmental)
		}

		v1.GET("/fan-control/:device_id", r.commandHandler.PopFanCommands)
		v1.POST("/fan-control/manual", r.commandHandler.ManualFanControl)
		v1.GET("/env-control/:device_id", r.commandHandler.PopEnvCommand)

		v1.GET("/system-mode", r.commandHandler.GetSystemMode)
		v1.POST("/system-mode", r.commandHandler.SetSystemMode)

		v1.GET("/current-state", r.stateHandler.GetCurrentState)
		v1.GET("/history", r.stateHandler.GetHistory)
		v1.GET("/fan-statistics", r.stateHandler.GetFanStatistics)
		v1.GET("/trends", r.stateHandler.GetTrends)

		v1.GET("/profile", r.stateHandler.GetProfile)
		v1.POST("/profile", r.stateHandler.SetProfile)

		v1.GET("/user-actions", r.stateHandler.GetUserActions)
		v1.GET("/alerts", r.stateHandler.GetRecentAlerts)
	}
}

// Engine returns the underlying Gin engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// Run starts the HTTP server
func (r *Router) Run(addr string) error {
	return r.engine.Run(addr)
}
