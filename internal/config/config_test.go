package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "inmemory", cfg.Storage.Type)
	assert.Equal(t, "inmemory", cfg.Queue.Type)
	assert.False(t, cfg.Kafka.Enabled)
	assert.Equal(t, "edge-device-01", cfg.Emulator.DeviceID)
	assert.Equal(t, 5*time.Second, cfg.Emulator.ReadInterval)
	assert.Equal(t, 30*time.Second, cfg.Emulator.SendInterval)
	assert.Equal(t, 5, cfg.Emulator.ProfileID)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("STORAGE_TYPE", "mongodb")
	t.Setenv("QUEUE_TYPE", "redis")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092, broker-2:9092")
	t.Setenv("READ_INTERVAL", "2s")
	t.Setenv("GPU_COUNT", "8")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "mongodb", cfg.Storage.Type)
	assert.Equal(t, "redis", cfg.Queue.Type)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 2*time.Second, cfg.Emulator.ReadInterval)
	assert.Equal(t, 8, cfg.Emulator.GPUCount)
}

func TestInvalidEnvFallsBack(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-number")
	t.Setenv("READ_INTERVAL", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Emulator.ReadInterval)
}
