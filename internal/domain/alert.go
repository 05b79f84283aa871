package domain

import "time"

// Alert severities
const (
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
	SeverityHigh     = "high"
)

// Alert types
const (
	AlertGPUTemp       = "gpu_temperature"
	AlertDustHigh      = "dust_high"
	AlertHumidityLow   = "humidity_low"
	AlertHumidityHigh  = "humidity_high"
	AlertCorrosionRisk = "corrosion_risk"
	AlertFanWear       = "fan_wear"
)

// Alert is an ephemeral alert event. Alerts are recomputed on each check;
// history is durable only through the telemetry store.
type Alert struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	GPUID        int       `json:"gpu_id,omitempty"`
	CurrentValue float64   `json:"current_value"`
	Threshold    float64   `json:"threshold"`
	Severity     string    `json:"severity"`
	Timestamp    time.Time `json:"timestamp"`
	Message      string    `json:"message"`
}
