// Package workload produces synthetic GPU load values per simulated time
// step, grouped into correlated ML profiles (training, inference, idle).
package workload

import (
	"math/rand"
	"time"
)

// Type identifies an ML workload profile.
type Type string

const (
	TypeTraining  Type = "training"
	TypeInference Type = "inference"
	TypeIdle      Type = "idle"
)

// Profile yields the current load fraction (0.0-1.0) for a group of GPUs.
type Profile interface {
	Load(now time.Time) float64
	Type() Type
}

// TrainingProfile models distributed training: epoch cycles of warmup,
// high steady load, and short validation windows.
type TrainingProfile struct {
	start              time.Time
	epochDuration      time.Duration
	validationInterval time.Duration
	validationDuration time.Duration
	warmupDuration     time.Duration
	rng                *rand.Rand
}

// NewTrainingProfile creates a training profile starting now.
func NewTrainingProfile(epochDuration, validationInterval time.Duration, rng *rand.Rand) *TrainingProfile {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	if epochDuration <= 0 {
		epochDuration = 5 * time.Minute
	}
	if validationInterval <= 0 {
		validationInterval = time.Minute
	}
	return &TrainingProfile{
		start:              time.Now(),
		epochDuration:      epochDuration,
		validationInterval: validationInterval,
		validationDuration: 10 * time.Second,
		warmupDuration:     30 * time.Second,
		rng:                rng,
	}
}

func (p *TrainingProfile) Type() Type { return TypeTraining }

// Load returns the load for the current phase of the epoch cycle:
// warmup ramps 30% to 100% over the first 30 seconds, validation windows
// run at 50-70%, the rest of the epoch trains at 85-100%.
func (p *TrainingProfile) Load(now time.Time) float64 {
	cycle := now.Sub(p.start) % p.epochDuration

	if cycle < p.warmupDuration {
		progress := float64(cycle) / float64(p.warmupDuration)
		return 0.3 + 0.7*progress
	}

	if cycle%p.validationInterval < p.validationDuration {
		return 0.5 + p.rng.Float64()*0.2
	}

	return 0.85 + p.rng.Float64()*0.15
}

// InferenceProfile models inference serving: stable mid load with random
// burst spikes.
type InferenceProfile struct {
	baseLoad      float64
	variation     float64
	spikeDuration time.Duration
	lastSpike     time.Time
	nextSpikeGap  time.Duration
	rng           *rand.Rand
}

// NewInferenceProfile creates an inference profile.
func NewInferenceProfile(baseLoad, variation float64, rng *rand.Rand) *InferenceProfile {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	if baseLoad == 0 {
		baseLoad = 0.6
	}
	p := &InferenceProfile{
		baseLoad:      baseLoad,
		variation:     variation,
		spikeDuration: 15 * time.Second,
		rng:           rng,
	}
	p.nextSpikeGap = p.randomSpikeGap()
	return p
}

func (p *InferenceProfile) Type() Type { return TypeInference }

// Load returns the base load with variation, or a burst (85-100%) during
// a spike window. Spikes arrive roughly every two minutes.
func (p *InferenceProfile) Load(now time.Time) float64 {
	if now.Sub(p.lastSpike) > p.nextSpikeGap {
		p.lastSpike = now
		p.nextSpikeGap = p.randomSpikeGap()
	}

	if now.Sub(p.lastSpike) < p.spikeDuration {
		return 0.85 + p.rng.Float64()*0.15
	}

	return p.baseLoad + (p.rng.Float64()*2-1)*p.variation
}

func (p *InferenceProfile) randomSpikeGap() time.Duration {
	return time.Duration(100+p.rng.Float64()*40) * time.Second
}

// IdleProfile models an idle GPU group: near-zero load with rare blips.
type IdleProfile struct {
	rng *rand.Rand
}

// NewIdleProfile creates an idle profile.
func NewIdleProfile(rng *rand.Rand) *IdleProfile {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &IdleProfile{rng: rng}
}

func (p *IdleProfile) Type() Type { return TypeIdle }

// Load is near zero 95% of the time, with occasional 20-40% activity.
func (p *IdleProfile) Load(_ time.Time) float64 {
	if p.rng.Float64() < 0.05 {
		return 0.2 + p.rng.Float64()*0.2
	}
	return p.rng.Float64() * 0.1
}
