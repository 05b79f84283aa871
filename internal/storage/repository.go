// Package storage defines the telemetry and alert repositories of the
// fog server. Telemetry is stored as tagged points, one measurement per
// kind of reading.
package storage

import (
	"context"
	"time"

	"github.com/Alekperov-Vitalii/Diplom/internal/domain"
)

// TelemetryRepository persists and queries telemetry points.
type TelemetryRepository interface {
	// WritePoints persists a batch of points.
	WritePoints(ctx context.Context, points []*domain.Point) error

	// Latest returns the most recent point of a measurement for a device,
	// or domain.ErrDeviceNotFound when nothing was ever stored.
	Latest(ctx context.Context, measurement, deviceID string) (*domain.Point, error)

	// Range returns all points of a measurement for a device since the
	// given time, ordered by timestamp ascending.
	Range(ctx context.Context, measurement, deviceID string, since time.Time) ([]*domain.Point, error)
}

// AlertRepository keeps the alert history.
type AlertRepository interface {
	Store(ctx context.Context, alert *domain.Alert) error

	// Recent returns the newest alerts, most recent first, at most limit.
	Recent(ctx context.Context, limit int) ([]*domain.Alert, error)
}

// FanStatistics summarizes the fan duty of the last hour for one device.
type FanStatistics struct {
	DeviceID       string  `json:"device_id"`
	AvgPWMLastHour float64 `json:"avg_pwm_last_hour"`
	MaxPWMLastHour int     `json:"max_pwm_last_hour"`
	MinPWMLastHour int     `json:"min_pwm_last_hour"`
	TimeAbove80Pct float64 `json:"time_above_80_percent"`
	SampleCount    int     `json:"sample_count"`
}

// ComputeFanStatistics derives the hourly fan summary from stored fan
// points. TimeAbove80Pct is the share of samples with duty over 80%.
func ComputeFanStatistics(deviceID string, points []*domain.Point) FanStatistics {
	stats := FanStatistics{
		DeviceID:       deviceID,
		MinPWMLastHour: 100,
	}
	if len(points) == 0 {
		stats.MinPWMLastHour = 0
		return stats
	}

	sum := 0.0
	above := 0
	for _, p := range points {
		pwm := int(p.Fields["pwm_duty"])
		sum += float64(pwm)
		if pwm > stats.MaxPWMLastHour {
			stats.MaxPWMLastHour = pwm
		}
		if pwm < stats.MinPWMLastHour {
			stats.MinPWMLastHour = pwm
		}
		if pwm > 80 {
			above++
		}
	}
	stats.SampleCount = len(points)
	stats.AvgPWMLastHour = sum / float64(len(points))
	stats.TimeAbove80Pct = float64(above) / float64(len(points)) * 100
	return stats
}
