package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Alekperov-Vitalii/Diplom/internal/api"
	"github.com/Alekperov-Vitalii/Diplom/internal/bus"
	"github.com/Alekperov-Vitalii/Diplom/internal/commands"
	"github.com/Alekperov-Vitalii/Diplom/internal/config"
	"github.com/Alekperov-Vitalii/Diplom/internal/profile"
	"github.com/Alekperov-Vitalii/Diplom/internal/storage"
	"github.com/Alekperov-Vitalii/Diplom/internal/storage/inmemory"
	"github.com/Alekperov-Vitalii/Diplom/internal/storage/mongodb"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger.Info("starting fog server",
		slog.String("service", "fog-server"),
		slog.String("storage", cfg.Storage.Type),
		slog.String("queue", cfg.Queue.Type),
	)

	var telemetryRepo storage.TelemetryRepository
	var alertRepo storage.AlertRepository
	switch cfg.Storage.Type {
	case "mongodb":
		mongoTelemetry, err := mongodb.NewTelemetryRepository(cfg.Storage.MongoURI, cfg.Storage.Database)
		if err != nil {
			logger.Error("failed to connect to MongoDB", "error", err)
			os.Exit(1)
		}
		defer mongoTelemetry.Close(context.Background())
		mongoAlerts, err := mongodb.NewAlertRepository(cfg.Storage.MongoURI, cfg.Storage.Database)
		if err != nil {
			logger.Error("failed to connect to MongoDB", "error", err)
			os.Exit(1)
		}
		defer mongoAlerts.Close(context.Background())
		telemetryRepo, alertRepo = mongoTelemetry, mongoAlerts
		logger.Info("using MongoDB storage", "database", cfg.Storage.Database)
	default:
		telemetryRepo = inmemory.NewTelemetryRepository()
		alertRepo = inmemory.NewAlertRepository()
		logger.Info("using in-memory storage")
	}

	var fanQueue commands.FanQueue
	var envQueue commands.EnvQueue
	switch cfg.Queue.Type {
	case "redis":
		opts, err := redis.ParseURL(cfg.Queue.RedisURL)
		if err != nil {
			logger.Error("invalid Redis URL", "error", err)
			os.Exit(1)
		}
		client := redis.NewClient(opts)
		defer client.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		fanQueue, err = commands.NewRedisFanQueue(ctx, client)
		if err != nil {
			cancel()
			logger.Error("failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		envQueue, err = commands.NewRedisEnvQueue(ctx, client)
		cancel()
		if err != nil {
			logger.Error("failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		logger.Info("using Redis command queues")
	default:
		fanQueue = commands.NewInMemoryFanQueue()
		envQueue = commands.NewInMemoryEnvQueue()
		logger.Info("using in-memory command queues")
	}

	var publisher bus.Publisher = bus.NoopPublisher{}
	if cfg.Kafka.Enabled {
		kafkaPublisher := bus.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		logger.Info("publishing alerts to Kafka",
			"brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	}

	router := api.NewRouter(api.Deps{
		TelemetryRepo: telemetryRepo,
		AlertRepo:     alertRepo,
		FanQueue:      fanQueue,
		EnvQueue:      envQueue,
		Publisher:     publisher,
		Profiles:      profile.NewManager(profile.DefaultProfileID),
		Logger:        logger,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("HTTP server listening", slog.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down fog server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("fog server stopped gracefully")
}
