package control

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Alekperov-Vitalii/Diplom/internal/domain"
)

const (
	// Corrosion index risk thresholds.
	ciLowThreshold  = 1.0
	ciHighThreshold = 2.0

	// Fan wear index thresholds (equivalent hours).
	fwiElevatedThreshold = 100.0
	fwiCriticalThreshold = 200.0

	// maxRPM normalizes the wear contribution of fan speed.
	maxRPM = 5000.0

	// Cooling efficiency degrades linearly between these CI values, down
	// to at most maxCoolingDegradation.
	ciDegradationStart    = 1.5
	ciDegradationEnd      = 3.0
	maxCoolingDegradation = 0.04

	// Fan power degrades linearly between these FWI values (max 10%).
	fwiPowerStart = 150.0
	fwiPowerEnd   = 200.0
	maxPowerLoss  = 0.1
)

// DegradationSummary is the trend snapshot returned after each update.
type DegradationSummary struct {
	CI                float64 `json:"corrosion_index"`
	CIRisk            string  `json:"ci_risk_level"`
	FWI               float64 `json:"fan_wear_index"`
	FWIWear           string  `json:"fwi_wear_level"`
	CoolingEfficiency float64 `json:"cooling_efficiency_modifier"`
	FanPower          float64 `json:"fan_power_modifier"`
}

// deviceDegradation holds one device's accumulators and alert latches.
type deviceDegradation struct {
	ci  float64
	fwi float64

	lastUpdate   time.Time
	lastHumidity float64
	hasHumidity  bool
	lastDust     float64
	hasDust      bool

	ciAlertSent  bool
	fwiAlertSent bool
}

// DegradationTracker accumulates the corrosion index (CI) and fan wear
// index (FWI) per device. Both only grow; Reset zeroes them on a profile
// change. Threshold alerts are edge-triggered and re-arm when the index
// falls back below the threshold after a reset. Accumulators are keyed
// by device id: one device's exposure must not degrade another's cooling.
type DegradationTracker struct {
	mu      sync.Mutex
	devices map[string]*deviceDegradation

	logger *slog.Logger
	now    func() time.Time
}

func NewDegradationTracker(logger *slog.Logger) *DegradationTracker {
	return &DegradationTracker{
		devices: make(map[string]*deviceDegradation),
		logger:  logger.With("component", "degradation_tracker"),
		now:     time.Now,
	}
}

// device returns the accumulator state for deviceID, creating it on
// first use. Caller holds the mutex.
func (t *DegradationTracker) device(deviceID string) *deviceDegradation {
	d, ok := t.devices[deviceID]
	if !ok {
		d = &deviceDegradation{}
		t.devices[deviceID] = d
	}
	return d
}

// Update advances the device's indices with one environmental
// observation and returns the new summary plus any threshold alerts.
func (t *DegradationTracker) Update(deviceID string, humidity, dust, roomTemp, avgRPM, avgGPUTemp float64) (DegradationSummary, []domain.Alert) {
	t.mu.Lock()
	defer t.mu.Unlock()

	d := t.device(deviceID)
	now := t.now()
	dtHours := 0.0
	if !d.lastUpdate.IsZero() {
		dtHours = now.Sub(d.lastUpdate).Hours()
	}
	d.lastUpdate = now

	d.updateCI(humidity, dust, roomTemp, dtHours)
	d.updateFWI(avgRPM, dust, avgGPUTemp, dtHours)

	return d.summary(), d.checkAlerts(deviceID, now)
}

func (d *deviceDegradation) updateCI(humidity, dust, temp, dtHours float64) {
	humidityRate := 0.0
	if d.hasHumidity && dtHours > 0 {
		humidityRate = math.Abs(humidity-d.lastHumidity) / dtHours
	}
	d.lastHumidity = humidity
	d.hasHumidity = true

	dustFactor := 1 + 0.1*dust
	// Rapid humidity swings accelerate dust deposition.
	if humidityRate > 1.0 {
		dustFactor *= 1.2
	}
	tempFactor := math.Exp((temp - 25) / 10)

	d.ci += (humidity / 50) * dustFactor * tempFactor * dtHours
}

func (d *deviceDegradation) updateFWI(avgRPM, dust, avgTemp, dtHours float64) {
	dustRate := 0.0
	if d.hasDust && dtHours > 0 {
		dustRate = (dust - d.lastDust) / dtHours
	}
	d.lastDust = dust
	d.hasDust = true

	rpmFactor := avgRPM / maxRPM
	dustFactor := 1 + 0.2*(dust/50)
	if dustRate > 2.0 {
		dustFactor *= 1.15
	}
	tempFactor := 1.0
	if avgTemp > 70 {
		tempFactor = 1.5
	}

	d.fwi += rpmFactor * dustFactor * tempFactor * dtHours
}

func (d *deviceDegradation) checkAlerts(deviceID string, now time.Time) []domain.Alert {
	var alerts []domain.Alert

	if d.ci >= ciHighThreshold && !d.ciAlertSent {
		d.ciAlertSent = true
		alerts = append(alerts, domain.Alert{
			ID:           uuid.NewString(),
			Type:         domain.AlertCorrosionRisk,
			CurrentValue: d.ci,
			Threshold:    ciHighThreshold,
			Severity:     domain.SeverityHigh,
			Timestamp:    now,
			Message:      fmt.Sprintf("%s: high corrosion risk (CI=%.2f), equipment inspection required", deviceID, d.ci),
		})
	} else if d.ci < ciHighThreshold {
		d.ciAlertSent = false
	}

	if d.fwi >= fwiCriticalThreshold && !d.fwiAlertSent {
		d.fwiAlertSent = true
		alerts = append(alerts, domain.Alert{
			ID:           uuid.NewString(),
			Type:         domain.AlertFanWear,
			CurrentValue: d.fwi,
			Threshold:    fwiCriticalThreshold,
			Severity:     domain.SeverityCritical,
			Timestamp:    now,
			Message:      fmt.Sprintf("%s: critical fan wear (FWI=%.1f h), replacement required", deviceID, d.fwi),
		})
	} else if d.fwi < fwiCriticalThreshold {
		d.fwiAlertSent = false
	}

	return alerts
}

func (d *deviceDegradation) summary() DegradationSummary {
	return DegradationSummary{
		CI:                d.ci,
		CIRisk:            ciRisk(d.ci),
		FWI:               d.fwi,
		FWIWear:           fwiWear(d.fwi),
		CoolingEfficiency: coolingModifier(d.ci),
		FanPower:          fanPowerModifier(d.fwi),
	}
}

// Summary returns the device's current snapshot without advancing the
// indices.
func (t *DegradationTracker) Summary(deviceID string) DegradationSummary {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.device(deviceID).summary()
}

// CoolingEfficiency returns the device's CI-driven efficiency modifier.
func (t *DegradationTracker) CoolingEfficiency(deviceID string) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return coolingModifier(t.device(deviceID).ci)
}

// Reset zeroes every device's indices and re-arms the alerts. A profile
// switch starts a new exposure regime for the whole fleet.
func (t *DegradationTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, d := range t.devices {
		d.ci = 0
		d.fwi = 0
		d.ciAlertSent = false
		d.fwiAlertSent = false
	}
	t.logger.Info("degradation indices reset")
}

func ciRisk(ci float64) string {
	switch {
	case ci < ciLowThreshold:
		return "low"
	case ci < ciHighThreshold:
		return "medium"
	default:
		return "high"
	}
}

func fwiWear(fwi float64) string {
	switch {
	case fwi < fwiElevatedThreshold:
		return "normal"
	case fwi < fwiCriticalThreshold:
		return "elevated"
	default:
		return "critical"
	}
}

// coolingModifier maps CI to an efficiency multiplier: 1.0 up to the
// degradation start, then linearly down to 1-maxCoolingDegradation.
func coolingModifier(ci float64) float64 {
	if ci <= ciDegradationStart {
		return 1.0
	}
	span := ciDegradationEnd - ciDegradationStart
	excess := math.Min(ci-ciDegradationStart, span)
	return 1.0 - excess/span*maxCoolingDegradation
}

// fanPowerModifier maps FWI to an airflow multiplier (worn bearings move
// less air per PWM point).
func fanPowerModifier(fwi float64) float64 {
	if fwi <= fwiPowerStart {
		return 1.0
	}
	loss := math.Min((fwi-fwiPowerStart)/(fwiPowerEnd-fwiPowerStart), 1.0) * maxPowerLoss
	return 1.0 - loss
}
