package emulator

import (
	"sync"

	"github.com/Alekperov-Vitalii/Diplom/internal/domain"
)

// Actuators holds the dehumidifier/humidifier relay state of one device.
// The tick loop reads it while the gateway goroutine may apply a command,
// so access is guarded.
type Actuators struct {
	mu    sync.Mutex
	state domain.ActuatorState
}

func NewActuators() *Actuators {
	return &Actuators{}
}

// Apply takes over the relay state requested by the server.
func (a *Actuators) Apply(cmd *domain.EnvironmentalCommand) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = domain.ActuatorState{
		DehumidifierActive: cmd.DehumidifierActive,
		DehumidifierPower:  cmd.DehumidifierPower,
		HumidifierActive:   cmd.HumidifierActive,
		HumidifierPower:    cmd.HumidifierPower,
	}
}

// Snapshot returns the current relay state.
func (a *Actuators) Snapshot() domain.ActuatorState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Reset deactivates everything, used on profile switch.
func (a *Actuators) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = domain.ActuatorState{}
}
