package handlers

import (
	"sort"
	"sync"
	"time"

	"github.com/Alekperov-Vitalii/Diplom/internal/api/dto"
	"github.com/Alekperov-Vitalii/Diplom/internal/domain"
)

// maxUserActions caps the in-memory audit log.
const maxUserActions = 100

type deviceSnapshot struct {
	avgRPM     float64
	avgGPUTemp float64
	roomTemp   float64
	humidity   float64
	dust       float64
	hasEnv     bool
	lastSeen   time.Time
}

// SystemState holds the cross-handler server state: the auto/manual mode
// switch, the per-device environmental cache feeding the cooling
// modifier, and the user action log.
type SystemState struct {
	mu      sync.RWMutex
	mode    domain.SystemMode
	devices map[string]*deviceSnapshot
	actions []dto.UserAction
	now     func() time.Time
}

func NewSystemState() *SystemState {
	return &SystemState{
		mode:    domain.ModeAuto,
		devices: make(map[string]*deviceSnapshot),
		now:     time.Now,
	}
}

// Mode returns the active control mode.
func (s *SystemState) Mode() domain.SystemMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// SetMode switches the control mode and records the action.
func (s *SystemState) SetMode(mode domain.SystemMode, operator string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = mode
	s.appendAction(dto.UserAction{
		Action:    "system_mode_change",
		Operator:  operator,
		Detail:    string(mode),
		Timestamp: s.now(),
	})
}

// RecordAction appends an entry to the audit log.
func (s *SystemState) RecordAction(action, operator, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendAction(dto.UserAction{
		Action:    action,
		Operator:  operator,
		Detail:    detail,
		Timestamp: s.now(),
	})
}

func (s *SystemState) appendAction(a dto.UserAction) {
	s.actions = append(s.actions, a)
	if len(s.actions) > maxUserActions {
		s.actions = s.actions[len(s.actions)-maxUserActions:]
	}
}

// Actions returns the newest entries first, at most limit.
func (s *SystemState) Actions(limit int) []dto.UserAction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := len(s.actions)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]dto.UserAction, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, s.actions[i])
	}
	return out
}

func (s *SystemState) snapshot(deviceID string) *deviceSnapshot {
	snap, ok := s.devices[deviceID]
	if !ok {
		snap = &deviceSnapshot{humidity: 50.0}
		s.devices[deviceID] = snap
	}
	return snap
}

// ObserveTelemetry caches the aggregates the degradation tracker needs.
func (s *SystemState) ObserveTelemetry(p *domain.TelemetryPayload) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snapshot(p.DeviceID)
	snap.avgRPM = p.AvgFanRPM()
	snap.avgGPUTemp = p.AvgGPUTemp()
	snap.roomTemp = p.Sensors.RoomTemp
	snap.lastSeen = s.now()
}

// ObserveEnvironment caches the latest humidity/dust reading.
func (s *SystemState) ObserveEnvironment(p *domain.EnvironmentalPayload) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snapshot(p.DeviceID)
	snap.humidity = p.Humidity
	snap.dust = p.Dust
	snap.hasEnv = true
	snap.lastSeen = s.now()
}

// Environment returns the last cached humidity and dust of a device,
// defaulting to clean optimal air before the first environmental report.
func (s *SystemState) Environment(deviceID string) (humidity, dust float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.devices[deviceID]
	if !ok || !snap.hasEnv {
		return 50.0, 0.0
	}
	return snap.humidity, snap.dust
}

// Aggregates returns the cached telemetry aggregates of a device.
func (s *SystemState) Aggregates(deviceID string) (avgRPM, avgGPUTemp, roomTemp float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.devices[deviceID]
	if !ok {
		return 0, 0, 22.0
	}
	return snap.avgRPM, snap.avgGPUTemp, snap.roomTemp
}

// DeviceIDs lists every device that has reported, sorted.
func (s *SystemState) DeviceIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.devices))
	for id := range s.devices {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// LastSeen reports when a device last reported anything.
func (s *SystemState) LastSeen(deviceID string) time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if snap, ok := s.devices[deviceID]; ok {
		return snap.lastSeen
	}
	return time.Time{}
}
