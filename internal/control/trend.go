package control

import (
	"sync"
	"time"
)

const (
	trendWindow = 24 * time.Hour
	rateWindow  = time.Hour
)

type trendPoint struct {
	ts    time.Time
	value float64
}

type trendSeries struct {
	points []trendPoint
}

func (s *trendSeries) add(ts time.Time, value float64) {
	s.points = append(s.points, trendPoint{ts: ts, value: value})
	cutoff := ts.Add(-trendWindow)
	i := 0
	for i < len(s.points) && !s.points[i].ts.After(cutoff) {
		i++
	}
	if i > 0 {
		s.points = s.points[i:]
	}
}

// hourlyRate computes the rate of change per hour from the points of the
// last hour. ok is false with fewer than two points or a zero time span.
func (s *trendSeries) hourlyRate() (float64, bool) {
	if len(s.points) < 2 {
		return 0, false
	}
	latest := s.points[len(s.points)-1]
	cutoff := latest.ts.Add(-rateWindow)

	first := -1
	for i, p := range s.points {
		if !p.ts.Before(cutoff) {
			first = i
			break
		}
	}
	if first < 0 || first == len(s.points)-1 {
		return 0, false
	}

	span := latest.ts.Sub(s.points[first].ts).Seconds()
	if span == 0 {
		return 0, false
	}
	return (latest.value - s.points[first].value) / span * 3600, true
}

type deviceTrend struct {
	humidity trendSeries
	dust     trendSeries
}

// TrendAnalyzer keeps rolling humidity and dust histories per device and
// infers qualitative ventilation/filtration descriptions from their
// hourly rates. Devices report independently; mixing their series would
// turn two flat readings into a phantom rate.
type TrendAnalyzer struct {
	mu      sync.Mutex
	devices map[string]*deviceTrend
}

func NewTrendAnalyzer() *TrendAnalyzer {
	return &TrendAnalyzer{devices: make(map[string]*deviceTrend)}
}

// device returns the series pair for deviceID, creating it on first use.
// Caller holds the mutex.
func (t *TrendAnalyzer) device(deviceID string) *deviceTrend {
	d, ok := t.devices[deviceID]
	if !ok {
		d = &deviceTrend{}
		t.devices[deviceID] = d
	}
	return d
}

// Add records one humidity/dust observation for a device.
func (t *TrendAnalyzer) Add(deviceID string, ts time.Time, humidity, dust float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	d := t.device(deviceID)
	d.humidity.add(ts, humidity)
	d.dust.add(ts, dust)
}

// HumidityRate returns the device's hourly humidity change rate over the
// last hour.
func (t *TrendAnalyzer) HumidityRate(deviceID string) (float64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.device(deviceID).humidity.hourlyRate()
}

// DustRate returns the device's hourly dust accumulation rate over the
// last hour.
func (t *TrendAnalyzer) DustRate(deviceID string) (float64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.device(deviceID).dust.hourlyRate()
}

// VentilationLevel buckets the humidity rate into a qualitative guess at
// the room's air exchange.
func VentilationLevel(rate float64, ok bool) string {
	switch {
	case !ok:
		return "unknown"
	case rate > 1.0:
		return "high ventilation (inflow)"
	case rate > 0.0:
		return "moderate ventilation"
	case rate > -1.0:
		return "sealed space"
	default:
		return "controlled environment"
	}
}

// FiltrationQuality buckets the dust rate into a filtration verdict.
func FiltrationQuality(rate float64, ok bool) string {
	switch {
	case !ok:
		return "unknown"
	case rate > 2.0:
		return "poor filtration"
	case rate > 1.0:
		return "moderate filtration"
	case rate > 0.0:
		return "good filtration"
	default:
		return "excellent filtration"
	}
}
