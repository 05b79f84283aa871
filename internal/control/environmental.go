package control

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Alekperov-Vitalii/Diplom/internal/domain"
)

const (
	// HumidityMin and HumidityMax bound the optimal dead-band.
	HumidityMin = 40.0
	HumidityMax = 60.0

	// DustAlertThreshold triggers an immediate cleaning alert.
	DustAlertThreshold = 50.0

	dehumidifierPower = 75
	humidifierPower   = 75

	// actuatorHoldTime is the inertia delay between activations of the
	// same actuator.
	actuatorHoldTime = 600 * time.Second

	// humidityAlertPersistence is how long humidity must stay out of
	// range before the alert fires.
	humidityAlertPersistence = time.Hour
)

type actuatorTiming struct {
	active         bool
	power          int
	lastActivation time.Time
	hasActivated   bool
}

type envDeviceState struct {
	dehumidifier actuatorTiming
	humidifier   actuatorTiming

	outOfRangeSince time.Time
	outOfRange      bool
	alertFired      bool
}

// EnvironmentalController runs the humidity dead-band control with
// actuator inertia and raises dust/humidity alerts. State is per device.
type EnvironmentalController struct {
	mu      sync.Mutex
	devices map[string]*envDeviceState
	logger  *slog.Logger
	now     func() time.Time
}

func NewEnvironmentalController(logger *slog.Logger) *EnvironmentalController {
	return &EnvironmentalController{
		devices: make(map[string]*envDeviceState),
		logger:  logger.With("component", "environmental_controller"),
		now:     time.Now,
	}
}

func (c *EnvironmentalController) state(deviceID string) *envDeviceState {
	st, ok := c.devices[deviceID]
	if !ok {
		st = &envDeviceState{}
		c.devices[deviceID] = st
	}
	return st
}

// Plan computes the actuator command for one environmental reading.
// Activation respects the per-actuator hold time; an already-active
// actuator holds its state while a fresh activation would still be
// blocked. Deactivation inside the dead-band is immediate.
func (c *EnvironmentalController) Plan(deviceID string, humidity, dust float64) domain.EnvironmentalCommand {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	st := c.state(deviceID)
	cmd := domain.EnvironmentalCommand{DeviceID: deviceID}

	switch {
	case humidity > HumidityMax:
		if canActivate(&st.dehumidifier, now) {
			st.dehumidifier.active = true
			st.dehumidifier.power = dehumidifierPower
			st.dehumidifier.lastActivation = now
			st.dehumidifier.hasActivated = true
			c.logger.Info("dehumidifier activated",
				"device_id", deviceID, "humidity", humidity, "power", dehumidifierPower)
		} else if !st.dehumidifier.active {
			st.dehumidifier.power = 0
		}
		st.humidifier.active = false
		st.humidifier.power = 0

	case humidity < HumidityMin:
		if canActivate(&st.humidifier, now) {
			st.humidifier.active = true
			st.humidifier.power = humidifierPower
			st.humidifier.lastActivation = now
			st.humidifier.hasActivated = true
			c.logger.Info("humidifier activated",
				"device_id", deviceID, "humidity", humidity, "power", humidifierPower)
		} else if !st.humidifier.active {
			st.humidifier.power = 0
		}
		st.dehumidifier.active = false
		st.dehumidifier.power = 0

	default:
		if st.dehumidifier.active || st.humidifier.active {
			c.logger.Info("humidity back in range, deactivating actuators",
				"device_id", deviceID, "humidity", humidity)
		}
		st.dehumidifier.active = false
		st.dehumidifier.power = 0
		st.humidifier.active = false
		st.humidifier.power = 0
	}

	cmd.DehumidifierActive = st.dehumidifier.active
	cmd.DehumidifierPower = st.dehumidifier.power
	cmd.HumidifierActive = st.humidifier.active
	cmd.HumidifierPower = st.humidifier.power
	return cmd
}

func canActivate(a *actuatorTiming, now time.Time) bool {
	if !a.hasActivated {
		return true
	}
	return now.Sub(a.lastActivation) >= actuatorHoldTime
}

// CheckAlerts evaluates the dust and humidity alert conditions. The dust
// alert fires on every check while the threshold is exceeded; the
// humidity alert is edge-triggered once per sustained excursion and
// re-arms when humidity re-enters the dead-band.
func (c *EnvironmentalController) CheckAlerts(deviceID string, humidity, dust float64, ts time.Time) []domain.Alert {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	st := c.state(deviceID)
	var alerts []domain.Alert

	if dust > DustAlertThreshold {
		alerts = append(alerts, domain.Alert{
			ID:           uuid.NewString(),
			Type:         domain.AlertDustHigh,
			CurrentValue: dust,
			Threshold:    DustAlertThreshold,
			Severity:     domain.SeverityCritical,
			Timestamp:    ts,
			Message: fmt.Sprintf("physical cleaning required: dust at %.1f ug/m3 (threshold %.0f ug/m3)",
				dust, DustAlertThreshold),
		})
	}

	if humidity < HumidityMin || humidity > HumidityMax {
		if !st.outOfRange {
			st.outOfRange = true
			st.outOfRangeSince = now
		}
		if !st.alertFired && now.Sub(st.outOfRangeSince) >= humidityAlertPersistence {
			st.alertFired = true
			alerts = append(alerts, humidityAlert(humidity, ts))
		}
	} else {
		st.outOfRange = false
		st.alertFired = false
	}

	return alerts
}

func humidityAlert(humidity float64, ts time.Time) domain.Alert {
	if humidity < HumidityMin {
		return domain.Alert{
			ID:           uuid.NewString(),
			Type:         domain.AlertHumidityLow,
			CurrentValue: humidity,
			Threshold:    HumidityMin,
			Severity:     domain.SeverityWarning,
			Timestamp:    ts,
			Message: fmt.Sprintf("low humidity %.1f%% sustained for over 1h (static electricity risk)",
				humidity),
		}
	}
	return domain.Alert{
		ID:           uuid.NewString(),
		Type:         domain.AlertHumidityHigh,
		CurrentValue: humidity,
		Threshold:    HumidityMax,
		Severity:     domain.SeverityWarning,
		Timestamp:    ts,
		Message: fmt.Sprintf("high humidity %.1f%% sustained for over 1h (corrosion risk)",
			humidity),
	}
}

// EfficiencyModifier converts the current humidity and dust load into a
// cooling efficiency multiplier in [0,1].
func EfficiencyModifier(humidity, dust float64) float64 {
	eff := 1.0 - 0.002*abs(humidity-50.0) - 0.001*dust
	if eff < 0 {
		return 0
	}
	if eff > 1 {
		return 1
	}
	return eff
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
