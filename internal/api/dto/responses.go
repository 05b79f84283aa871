package dto

import (
	"time"

	"github.com/Alekperov-Vitalii/Diplom/internal/control"
	"github.com/Alekperov-Vitalii/Diplom/internal/domain"
	"github.com/Alekperov-Vitalii/Diplom/internal/storage"
)

// AcceptedResponse acknowledges a stored telemetry payload.
type AcceptedResponse struct {
	Status        string `json:"status"`
	PointsStored  int    `json:"points_stored"`
	AlertsRaised  int    `json:"alerts_raised"`
	CommandQueued bool   `json:"command_queued"`
}

// DeviceState is the latest known state of one device.
type DeviceState struct {
	DeviceID      string                      `json:"device_id"`
	RoomTemp      *float64                    `json:"room_temp,omitempty"`
	GPUTemps      []GPUState                  `json:"gpu_temps,omitempty"`
	FanStates     []FanSnapshot               `json:"fan_states,omitempty"`
	Humidity      *float64                    `json:"humidity,omitempty"`
	Dust          *float64                    `json:"dust,omitempty"`
	ThermalStates map[int]domain.ThermalState `json:"thermal_states,omitempty"`
	Degradation   control.DegradationSummary  `json:"degradation"`
	LastSeen      time.Time                   `json:"last_seen"`
}

// GPUState pairs a GPU reading with its control output.
type GPUState struct {
	GPUID       int     `json:"gpu_id"`
	Temperature float64 `json:"temperature"`
	Workload    float64 `json:"workload"`
	TargetPWM   int     `json:"target_pwm"`
}

// FanSnapshot is the last reported state of one fan.
type FanSnapshot struct {
	FanID   int `json:"fan_id"`
	RPM     int `json:"rpm"`
	PWMDuty int `json:"pwm_duty"`
}

// CurrentStateResponse is the aggregate view over all devices.
type CurrentStateResponse struct {
	Mode        domain.SystemMode `json:"system_mode"`
	ProfileID   int               `json:"profile_id"`
	ProfileName string            `json:"profile_name"`
	Devices     []DeviceState     `json:"devices"`
}

// HistoryResponse returns raw points for one device and measurement set.
type HistoryResponse struct {
	DeviceID string                     `json:"device_id"`
	Hours    int                        `json:"hours"`
	Series   map[string][]*domain.Point `json:"series"`
}

// TrendsResponse combines one device's rate analysis with its
// degradation state.
type TrendsResponse struct {
	DeviceID            string                     `json:"device_id"`
	HumidityRatePerHour *float64                   `json:"humidity_rate_per_hour,omitempty"`
	DustRatePerHour     *float64                   `json:"dust_rate_per_hour,omitempty"`
	VentilationLevel    string                     `json:"ventilation_level"`
	FiltrationQuality   string                     `json:"filtration_quality"`
	Degradation         control.DegradationSummary `json:"degradation"`
}

// SystemModeRequest switches between automatic and manual control.
type SystemModeRequest struct {
	Mode     string `json:"mode" binding:"required"`
	Operator string `json:"operator"`
}

// SystemModeResponse reports the active mode.
type SystemModeResponse struct {
	Mode domain.SystemMode `json:"mode"`
}

// ManualFanRequest carries operator-supplied PWM values.
type ManualFanRequest struct {
	DeviceID string                  `json:"device_id" binding:"required"`
	Commands []ManualFanCommandEntry `json:"commands" binding:"required"`
	Operator string                  `json:"operator"`
}

// ManualFanCommandEntry is one operator PWM setpoint.
type ManualFanCommandEntry struct {
	FanID   int `json:"fan_id"`
	PWMDuty int `json:"pwm_duty"`
}

// ProfileRequest switches the environmental profile.
type ProfileRequest struct {
	ProfileID int    `json:"profile_id" binding:"required"`
	Operator  string `json:"operator"`
}

// ProfileResponse describes the active environmental profile.
type ProfileResponse struct {
	ProfileID   int    `json:"profile_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// UserAction is one audit log entry.
type UserAction struct {
	Action    string    `json:"action"`
	Operator  string    `json:"operator,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// AlertsResponse lists recently raised alerts, newest first.
type AlertsResponse struct {
	Alerts []*domain.Alert `json:"alerts"`
	Total  int             `json:"total"`
}

// FanStatisticsResponse wraps the per-device hourly fan summaries.
type FanStatisticsResponse struct {
	Devices []storage.FanStatistics `json:"devices"`
}
