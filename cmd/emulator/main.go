package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Alekperov-Vitalii/Diplom/internal/config"
	"github.com/Alekperov-Vitalii/Diplom/internal/emulator"
	"github.com/Alekperov-Vitalii/Diplom/internal/gateway"
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

	logger.Info("starting edge emulator",
		slog.String("service", "emulator"),
		slog.String("device_id", cfg.Emulator.DeviceID),
		slog.String("server_url", cfg.Emulator.ServerURL),
		slog.Int("gpu_count", cfg.Emulator.GPUCount),
	)

	client := gateway.NewClient(cfg.Emulator.ServerURL, cfg.Emulator.HTTPTimeout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := client.Health(healthCtx); err != nil {
		logger.Warn("fog server not reachable yet, starting anyway", "error", err)
	}
	cancel()

	emu := emulator.New(emulator.Options{
		DeviceID:     cfg.Emulator.DeviceID,
		GPUCount:     cfg.Emulator.GPUCount,
		ReadInterval: cfg.Emulator.ReadInterval,
		SendInterval: cfg.Emulator.SendInterval,
		ProfileID:    cfg.Emulator.ProfileID,
	}, client, logger)

	if err := emu.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("emulator stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("emulator stopped",
		slog.Int64("reads", emu.Stats.Reads.Load()),
		slog.Int64("sends", emu.Stats.Sends.Load()),
		slog.Int64("send_failures", emu.Stats.SendFailures.Load()),
		slog.Int64("commands", emu.Stats.Commands.Load()),
	)
}
