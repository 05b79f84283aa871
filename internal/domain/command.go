package domain

import "fmt"

// FanControlCommand sets the PWM duty for one fan.
type FanControlCommand struct {
	FanID   int `json:"fan_id"`
	PWMDuty int `json:"pwm_duty"`
}

// FanControlBatch is the per-device batch of fan commands produced once per
// control cycle and consumed at most once by the addressee.
type FanControlBatch struct {
	DeviceID string              `json:"device_id"`
	Commands []FanControlCommand `json:"commands"`
}

// Validate checks the clamp invariant on every command in the batch.
func (b *FanControlBatch) Validate() error {
	if b.DeviceID == "" {
		return fmt.Errorf("%w: device_id is required", ErrValidationFailed)
	}
	for _, cmd := range b.Commands {
		if cmd.FanID < 1 || cmd.FanID > 16 {
			return fmt.Errorf("%w: fan_id %d out of range [1,16]", ErrValidationFailed, cmd.FanID)
		}
		if cmd.PWMDuty < 0 || cmd.PWMDuty > 100 {
			return fmt.Errorf("%w: pwm_duty %d out of range [0,100]", ErrValidationFailed, cmd.PWMDuty)
		}
	}
	return nil
}

// EnvironmentalCommand switches the environmental actuators of a device.
type EnvironmentalCommand struct {
	DeviceID           string `json:"device_id"`
	DehumidifierActive bool   `json:"dehumidifier_active"`
	DehumidifierPower  int    `json:"dehumidifier_power"`
	HumidifierActive   bool   `json:"humidifier_active"`
	HumidifierPower    int    `json:"humidifier_power"`
}

// SystemMode is the global auto/manual control switch.
type SystemMode string

const (
	ModeAuto   SystemMode = "auto"
	ModeManual SystemMode = "manual"
)

// ParseSystemMode validates an operator-supplied mode string.
func ParseSystemMode(s string) (SystemMode, error) {
	switch SystemMode(s) {
	case ModeAuto, ModeManual:
		return SystemMode(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}
