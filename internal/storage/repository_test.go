package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Alekperov-Vitalii/Diplom/internal/domain"
)

func fanPoint(pwm float64) *domain.Point {
	return &domain.Point{
		Measurement: domain.MeasurementFanStates,
		Tags:        map[string]string{"device_id": "dev-a", "fan_id": "1"},
		Fields:      map[string]float64{"pwm_duty": pwm, "rpm": 800 + pwm*42},
		Timestamp:   time.Now(),
	}
}

func TestComputeFanStatistics(t *testing.T) {
	points := []*domain.Point{
		fanPoint(40), fanPoint(60), fanPoint(90), fanPoint(90),
	}

	stats := ComputeFanStatistics("dev-a", points)
	assert.Equal(t, "dev-a", stats.DeviceID)
	assert.InDelta(t, 70.0, stats.AvgPWMLastHour, 1e-9)
	assert.Equal(t, 90, stats.MaxPWMLastHour)
	assert.Equal(t, 40, stats.MinPWMLastHour)
	assert.InDelta(t, 50.0, stats.TimeAbove80Pct, 1e-9)
	assert.Equal(t, 4, stats.SampleCount)
}

func TestComputeFanStatisticsEmpty(t *testing.T) {
	stats := ComputeFanStatistics("dev-a", nil)
	assert.Zero(t, stats.SampleCount)
	assert.Zero(t, stats.AvgPWMLastHour)
	assert.Zero(t, stats.MinPWMLastHour)
}
