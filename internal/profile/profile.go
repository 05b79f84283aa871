// Package profile defines the environmental profiles of the simulated
// machine room: all nine combinations of dust level (low, moderate, high)
// and humidity level (low, optimal, high).
package profile

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Alekperov-Vitalii/Diplom/internal/domain"
)

// Profile captures the initial state, equilibrium and base rate of the
// humidity and dust processes for one environment class.
type Profile struct {
	ID              int     `json:"profile_id"`
	Name            string  `json:"name"`
	DustInitial     float64 `json:"dust_initial"`
	DustEquilibrium float64 `json:"dust_equilibrium"`
	DustRate        float64 `json:"dust_rate"`
	HumidityInitial float64 `json:"humidity_initial"`
	HumidityEquil   float64 `json:"humidity_equilibrium"`
	HumidityRate    float64 `json:"humidity_rate"`
	Description     string  `json:"description"`
}

var profiles = map[int]Profile{
	1: {
		ID: 1, Name: "Low Dust, Low Humidity",
		DustInitial: 10, DustEquilibrium: 20, DustRate: 0.005,
		HumidityInitial: 30, HumidityEquil: 35, HumidityRate: 0.01,
		Description: "Dry, clean environment - minimal dust, humidity trending slightly upward",
	},
	2: {
		ID: 2, Name: "Low Dust, Optimal Humidity",
		DustInitial: 15, DustEquilibrium: 25, DustRate: 0.007,
		HumidityInitial: 50, HumidityEquil: 50, HumidityRate: 0.0,
		Description: "Balanced environment - low contamination, stable optimal humidity",
	},
	3: {
		ID: 3, Name: "Low Dust, High Humidity",
		DustInitial: 10, DustEquilibrium: 20, DustRate: 0.005,
		HumidityInitial: 70, HumidityEquil: 65, HumidityRate: 0.01,
		Description: "Humid clean space - dust minimal, humidity elevated",
	},
	4: {
		ID: 4, Name: "Moderate Dust, Low Humidity",
		DustInitial: 30, DustEquilibrium: 40, DustRate: 0.010,
		HumidityInitial: 30, HumidityEquil: 35, HumidityRate: 0.01,
		Description: "Moderately dusty dry area - dust accumulating at medium rate",
	},
	5: {
		ID: 5, Name: "Moderate Dust, Optimal Humidity",
		DustInitial: 35, DustEquilibrium: 45, DustRate: 0.012,
		HumidityInitial: 50, HumidityEquil: 50, HumidityRate: 0.0,
		Description: "Standard operational environment - moderate dust, balanced humidity",
	},
	6: {
		ID: 6, Name: "Moderate Dust, High Humidity",
		DustInitial: 30, DustEquilibrium: 40, DustRate: 0.013,
		HumidityInitial: 70, HumidityEquil: 65, HumidityRate: 0.01,
		Description: "Humid moderate-dust environment - combined risks",
	},
	7: {
		ID: 7, Name: "High Dust, Low Humidity",
		DustInitial: 60, DustEquilibrium: 80, DustRate: 0.020,
		HumidityInitial: 30, HumidityEquil: 35, HumidityRate: 0.01,
		Description: "Heavily dusty dry conditions - rapid dust buildup",
	},
	8: {
		ID: 8, Name: "High Dust, Optimal Humidity",
		DustInitial: 55, DustEquilibrium: 70, DustRate: 0.018,
		HumidityInitial: 50, HumidityEquil: 50, HumidityRate: 0.0,
		Description: "High dust in balanced humidity - dust accumulating quickly",
	},
	9: {
		ID: 9, Name: "High Dust, High Humidity",
		DustInitial: 60, DustEquilibrium: 80, DustRate: 0.022,
		HumidityInitial: 70, HumidityEquil: 65, HumidityRate: 0.012,
		Description: "Worst-case scenario - humid and dusty, accelerated dust effects",
	},
}

// DefaultProfileID is the standard operational environment.
const DefaultProfileID = 5

// Get returns the profile for the given id.
func Get(id int) (Profile, error) {
	p, ok := profiles[id]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %d (must be 1-9)", domain.ErrInvalidProfile, id)
	}
	return p, nil
}

// All returns every profile ordered by id.
func All() []Profile {
	out := make([]Profile, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Manager tracks the active profile and is safe for concurrent use.
type Manager struct {
	mu      sync.RWMutex
	current Profile
}

// NewManager creates a manager starting on the given profile (falls back
// to the default for unknown ids).
func NewManager(id int) *Manager {
	p, err := Get(id)
	if err != nil {
		p = profiles[DefaultProfileID]
	}
	return &Manager{current: p}
}

// Current returns the active profile.
func (m *Manager) Current() Profile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Switch changes the active profile.
func (m *Manager) Switch(id int) (Profile, error) {
	p, err := Get(id)
	if err != nil {
		return Profile{}, err
	}
	m.mu.Lock()
	m.current = p
	m.mu.Unlock()
	return p, nil
}
