package workload

import (
	"math/rand"
	"time"
)

// Group assigns a set of GPU ids to a shared profile so their load stays
// correlated, the way co-scheduled jobs behave in a real cluster.
type Group struct {
	Name    string
	GPUs    []int
	Profile Profile
}

// Orchestrator distributes load across GPU groups. GPUs outside any group
// fall back to the idle profile.
type Orchestrator struct {
	groups []Group
	idle   *IdleProfile
}

// NewOrchestrator creates an orchestrator over the given groups.
func NewOrchestrator(groups []Group, rng *rand.Rand) *Orchestrator {
	return &Orchestrator{
		groups: groups,
		idle:   NewIdleProfile(rng),
	}
}

// DefaultGroups splits gpuCount GPUs into a training half and an
// inference half, mirroring a small mixed-use cluster.
func DefaultGroups(gpuCount int, rng *rand.Rand) []Group {
	half := gpuCount / 2
	training := make([]int, 0, half)
	inference := make([]int, 0, gpuCount-half)
	for id := 1; id <= gpuCount; id++ {
		if id <= half {
			training = append(training, id)
		} else {
			inference = append(inference, id)
		}
	}
	return []Group{
		{Name: "training", GPUs: training, Profile: NewTrainingProfile(5*time.Minute, time.Minute, rng)},
		{Name: "inference", GPUs: inference, Profile: NewInferenceProfile(0.6, 0.2, rng)},
	}
}

// LoadFor returns the current load fraction for the given GPU.
func (o *Orchestrator) LoadFor(gpuID int, now time.Time) float64 {
	for i := range o.groups {
		for _, id := range o.groups[i].GPUs {
			if id == gpuID {
				return o.groups[i].Profile.Load(now)
			}
		}
	}
	return o.idle.Load(now)
}
