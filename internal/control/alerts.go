package control

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Alekperov-Vitalii/Diplom/internal/domain"
)

const (
	// GPU temperature alert thresholds.
	gpuTempWarning  = 90.0
	gpuTempCritical = 120.0
)

type gpuAlertKey struct {
	deviceID string
	gpuID    int
}

// AlertManager raises GPU temperature alerts. An alert of a given
// severity fires once per excursion and clears when the GPU recovers
// below the threshold.
type AlertManager struct {
	mu     sync.Mutex
	active map[gpuAlertKey]string
	now    func() time.Time
}

func NewAlertManager() *AlertManager {
	return &AlertManager{
		active: make(map[gpuAlertKey]string),
		now:    time.Now,
	}
}

// Check evaluates every GPU reading in a payload and returns fresh alerts.
func (m *AlertManager) Check(payload *domain.TelemetryPayload) []domain.Alert {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	var alerts []domain.Alert
	for _, gpu := range payload.Sensors.GPUTemps {
		key := gpuAlertKey{deviceID: payload.DeviceID, gpuID: gpu.GPUID}

		var severity string
		var threshold float64
		switch {
		case gpu.Temperature >= gpuTempCritical:
			severity, threshold = domain.SeverityCritical, gpuTempCritical
		case gpu.Temperature >= gpuTempWarning:
			severity, threshold = domain.SeverityWarning, gpuTempWarning
		default:
			delete(m.active, key)
			continue
		}

		if m.active[key] == severity {
			continue
		}
		m.active[key] = severity

		alerts = append(alerts, domain.Alert{
			ID:           uuid.NewString(),
			Type:         domain.AlertGPUTemp,
			GPUID:        gpu.GPUID,
			CurrentValue: gpu.Temperature,
			Threshold:    threshold,
			Severity:     severity,
			Timestamp:    now,
			Message: fmt.Sprintf("GPU %d temperature %.1f C exceeds %s threshold %.0f C",
				gpu.GPUID, gpu.Temperature, severity, threshold),
		})
	}
	return alerts
}

// ActiveCount reports how many GPUs currently hold an alert.
func (m *AlertManager) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active)
}
