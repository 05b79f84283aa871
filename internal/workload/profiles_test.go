package workload

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrainingProfile_Phases(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	p := NewTrainingProfile(5*time.Minute, time.Minute, rng)

	t.Run("warmup ramps from 30 percent", func(t *testing.T) {
		load := p.Load(p.start)
		assert.InDelta(t, 0.3, load, 0.01)

		load = p.Load(p.start.Add(15 * time.Second))
		assert.InDelta(t, 0.65, load, 0.01)
	})

	t.Run("steady training runs high", func(t *testing.T) {
		// 45s into the epoch: past warmup, past the validation window.
		load := p.Load(p.start.Add(45 * time.Second))
		assert.GreaterOrEqual(t, load, 0.85)
		assert.LessOrEqual(t, load, 1.0)
	})

	t.Run("validation window runs medium", func(t *testing.T) {
		// 65s into the epoch: 5s into the second validation interval.
		load := p.Load(p.start.Add(65 * time.Second))
		assert.GreaterOrEqual(t, load, 0.5)
		assert.LessOrEqual(t, load, 0.7)
	})
}

func TestInferenceProfile_LoadRange(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	p := NewInferenceProfile(0.6, 0.2, rng)

	now := time.Now()
	for i := 0; i < 500; i++ {
		load := p.Load(now.Add(time.Duration(i) * 5 * time.Second))
		require.GreaterOrEqual(t, load, 0.3)
		require.LessOrEqual(t, load, 1.0)
	}
}

func TestIdleProfile_MostlyIdle(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	p := NewIdleProfile(rng)

	idleCount := 0
	for i := 0; i < 1000; i++ {
		load := p.Load(time.Now())
		require.GreaterOrEqual(t, load, 0.0)
		require.LessOrEqual(t, load, 0.4)
		if load <= 0.1 {
			idleCount++
		}
	}
	assert.Greater(t, idleCount, 900)
}

func TestOrchestrator_GroupAssignment(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	groups := DefaultGroups(8, rng)
	o := NewOrchestrator(groups, rng)

	require.Len(t, groups, 2)
	assert.Equal(t, []int{1, 2, 3, 4}, groups[0].GPUs)
	assert.Equal(t, []int{5, 6, 7, 8}, groups[1].GPUs)

	// Ungrouped GPU falls back to idle.
	load := o.LoadFor(12, time.Now())
	assert.LessOrEqual(t, load, 0.4)
}
