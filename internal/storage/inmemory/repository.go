// Package inmemory provides map-backed repositories used in tests and
// for running the server without MongoDB.
package inmemory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Alekperov-Vitalii/Diplom/internal/domain"
)

type seriesKey struct {
	measurement string
	deviceID    string
}

// TelemetryRepository stores points grouped by (measurement, device).
type TelemetryRepository struct {
	mu     sync.RWMutex
	series map[seriesKey][]*domain.Point
}

func NewTelemetryRepository() *TelemetryRepository {
	return &TelemetryRepository{series: make(map[seriesKey][]*domain.Point)}
}

func (r *TelemetryRepository) WritePoints(_ context.Context, points []*domain.Point) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range points {
		key := seriesKey{measurement: p.Measurement, deviceID: p.Tags["device_id"]}
		r.series[key] = append(r.series[key], p)
	}
	return nil
}

func (r *TelemetryRepository) Latest(_ context.Context, measurement, deviceID string) (*domain.Point, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	points := r.series[seriesKey{measurement: measurement, deviceID: deviceID}]
	if len(points) == 0 {
		return nil, domain.ErrDeviceNotFound
	}
	latest := points[0]
	for _, p := range points[1:] {
		if p.Timestamp.After(latest.Timestamp) {
			latest = p
		}
	}
	return latest, nil
}

func (r *TelemetryRepository) Range(_ context.Context, measurement, deviceID string, since time.Time) ([]*domain.Point, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Point
	for _, p := range r.series[seriesKey{measurement: measurement, deviceID: deviceID}] {
		if !p.Timestamp.Before(since) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

// AlertRepository keeps alerts in insertion order.
type AlertRepository struct {
	mu     sync.RWMutex
	alerts []*domain.Alert
}

func NewAlertRepository() *AlertRepository {
	return &AlertRepository{}
}

func (r *AlertRepository) Store(_ context.Context, alert *domain.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, alert)
	return nil
}

func (r *AlertRepository) Recent(_ context.Context, limit int) ([]*domain.Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := len(r.alerts)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]*domain.Alert, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, r.alerts[i])
	}
	return out, nil
}
