package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration
type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Queue    QueueConfig
	Kafka    KafkaConfig
	Emulator EmulatorConfig
}

// ServerConfig holds fog server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// StorageConfig selects the telemetry store
type StorageConfig struct {
	Type     string // "inmemory" or "mongodb"
	MongoURI string
	Database string
}

// QueueConfig selects the command queue backend
type QueueConfig struct {
	Type     string // "inmemory" or "redis"
	RedisURL string
}

// KafkaConfig configures the alert publisher
type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
}

// EmulatorConfig holds the edge device configuration
type EmulatorConfig struct {
	DeviceID     string
	ServerURL    string
	GPUCount     int
	ReadInterval time.Duration
	SendInterval time.Duration
	ProfileID    int
	HTTPTimeout  time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:  getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getEnvAsDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
		},
		Storage: StorageConfig{
			Type:     getEnv("STORAGE_TYPE", "inmemory"),
			MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGO_DATABASE", "cooling"),
		},
		Queue: QueueConfig{
			Type:     getEnv("QUEUE_TYPE", "inmemory"),
			RedisURL: getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Kafka: KafkaConfig{
			Enabled: getEnvAsBool("KAFKA_ENABLED", false),
			Brokers: getEnvAsSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
			Topic:   getEnv("KAFKA_ALERT_TOPIC", "cooling.alerts"),
		},
		Emulator: EmulatorConfig{
			DeviceID:     getEnv("DEVICE_ID", "edge-device-01"),
			ServerURL:    getEnv("FOG_SERVER_URL", "http://localhost:8080"),
			GPUCount:     getEnvAsInt("GPU_COUNT", 4),
			ReadInterval: getEnvAsDuration("READ_INTERVAL", 5*time.Second),
			SendInterval: getEnvAsDuration("SEND_INTERVAL", 30*time.Second),
			ProfileID:    getEnvAsInt("ENV_PROFILE_ID", 5),
			HTTPTimeout:  getEnvAsDuration("HTTP_TIMEOUT", 5*time.Second),
		},
	}

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as int or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool gets an environment variable as bool or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration gets an environment variable as duration or returns a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvAsSlice gets a comma-separated environment variable or returns a default value
func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
