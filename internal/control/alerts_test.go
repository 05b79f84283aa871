package control

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alekperov-Vitalii/Diplom/internal/domain"
)

func TestGPUTemperatureAlerts(t *testing.T) {
	m := NewAlertManager()

	alerts := m.Check(telemetryWith("dev",
		domain.GPUTemperature{GPUID: 1, Temperature: 85},
		domain.GPUTemperature{GPUID: 2, Temperature: 95},
		domain.GPUTemperature{GPUID: 3, Temperature: 125},
	))
	require.Len(t, alerts, 2)
	assert.Equal(t, domain.SeverityWarning, alerts[0].Severity)
	assert.Equal(t, 2, alerts[0].GPUID)
	assert.Equal(t, domain.SeverityCritical, alerts[1].Severity)
	assert.Equal(t, 3, alerts[1].GPUID)
}

func TestGPUAlertNotRepeated(t *testing.T) {
	m := NewAlertManager()
	payload := telemetryWith("dev", domain.GPUTemperature{GPUID: 1, Temperature: 95})

	require.Len(t, m.Check(payload), 1)
	assert.Empty(t, m.Check(payload))
	assert.Equal(t, 1, m.ActiveCount())
}

func TestGPUAlertEscalation(t *testing.T) {
	m := NewAlertManager()

	require.Len(t, m.Check(telemetryWith("dev",
		domain.GPUTemperature{GPUID: 1, Temperature: 95})), 1)

	// crossing into critical is a new alert
	alerts := m.Check(telemetryWith("dev",
		domain.GPUTemperature{GPUID: 1, Temperature: 121}))
	require.Len(t, alerts, 1)
	assert.Equal(t, domain.SeverityCritical, alerts[0].Severity)
}

func TestGPUAlertClearsOnRecovery(t *testing.T) {
	m := NewAlertManager()

	m.Check(telemetryWith("dev", domain.GPUTemperature{GPUID: 1, Temperature: 95}))
	m.Check(telemetryWith("dev", domain.GPUTemperature{GPUID: 1, Temperature: 70}))
	assert.Zero(t, m.ActiveCount())

	// next excursion fires again
	alerts := m.Check(telemetryWith("dev", domain.GPUTemperature{GPUID: 1, Temperature: 95}))
	assert.Len(t, alerts, 1)
}
