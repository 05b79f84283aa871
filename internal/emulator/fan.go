package emulator

import (
	"github.com/Alekperov-Vitalii/Diplom/internal/domain"
)

const (
	rpmMin = 800
	rpmMax = 5000
)

type fan struct {
	id  int
	pwm int
}

// FanController owns the PWM fan bank of one device. PWM duty maps
// linearly to RPM between rpmMin and rpmMax; cooling effect is duty/100.
type FanController struct {
	fans []fan
}

// NewFanController creates fanCount fans, all at the given initial duty.
func NewFanController(fanCount, initialPWM int) *FanController {
	fans := make([]fan, fanCount)
	for i := range fans {
		fans[i] = fan{id: i + 1, pwm: clampPWM(initialPWM)}
	}
	return &FanController{fans: fans}
}

// SetPWM updates one fan's duty cycle. Unknown fan ids are ignored so a
// command addressed to a smaller device variant cannot crash the loop.
func (c *FanController) SetPWM(fanID, pwm int) {
	for i := range c.fans {
		if c.fans[i].id == fanID {
			c.fans[i].pwm = clampPWM(pwm)
			return
		}
	}
}

// ApplyBatch applies every command in a server batch.
func (c *FanController) ApplyBatch(batch *domain.FanControlBatch) {
	for _, cmd := range batch.Commands {
		c.SetPWM(cmd.FanID, cmd.PWMDuty)
	}
}

// CoolingEffect returns the forced-cooling strength (0.0-1.0) of one fan,
// or 0 for an unknown fan id.
func (c *FanController) CoolingEffect(fanID int) float64 {
	for i := range c.fans {
		if c.fans[i].id == fanID {
			return float64(c.fans[i].pwm) / 100.0
		}
	}
	return 0
}

// AvgPWM returns the mean duty across all fans.
func (c *FanController) AvgPWM() float64 {
	if len(c.fans) == 0 {
		return 0
	}
	sum := 0
	for _, f := range c.fans {
		sum += f.pwm
	}
	return float64(sum) / float64(len(c.fans))
}

// States reports the fan bank for a telemetry payload.
func (c *FanController) States() []domain.FanState {
	out := make([]domain.FanState, len(c.fans))
	for i, f := range c.fans {
		out[i] = domain.FanState{
			FanID:   f.id,
			RPM:     rpmForDuty(f.pwm),
			PWMDuty: f.pwm,
		}
	}
	return out
}

func rpmForDuty(pwm int) int {
	return rpmMin + (rpmMax-rpmMin)*pwm/100
}

func clampPWM(pwm int) int {
	if pwm < 0 {
		return 0
	}
	if pwm > 100 {
		return 100
	}
	return pwm
}
