package commands

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alekperov-Vitalii/Diplom/internal/domain"
)

func fanBatch(pwm int) *domain.FanControlBatch {
	return &domain.FanControlBatch{
		DeviceID: "edge-device-01",
		Commands: []domain.FanControlCommand{{FanID: 1, PWMDuty: pwm}},
	}
}

func TestFanQueuePopEmpty(t *testing.T) {
	q := NewInMemoryFanQueue()
	_, err := q.Pop(context.Background(), "edge-device-01")
	assert.ErrorIs(t, err, domain.ErrNoCommand)
}

func TestFanQueueLastWriteWins(t *testing.T) {
	q := NewInMemoryFanQueue()
	ctx := context.Background()

	require.NoError(t, q.Put(ctx, "edge-device-01", fanBatch(40)))
	require.NoError(t, q.Put(ctx, "edge-device-01", fanBatch(70)))

	got, err := q.Pop(ctx, "edge-device-01")
	require.NoError(t, err)
	assert.Equal(t, 70, got.Commands[0].PWMDuty)
}

func TestFanQueueConsumeOnce(t *testing.T) {
	q := NewInMemoryFanQueue()
	ctx := context.Background()

	require.NoError(t, q.Put(ctx, "edge-device-01", fanBatch(40)))

	_, err := q.Pop(ctx, "edge-device-01")
	require.NoError(t, err)

	_, err = q.Pop(ctx, "edge-device-01")
	assert.ErrorIs(t, err, domain.ErrNoCommand)
}

func TestFanQueueDevicesIsolated(t *testing.T) {
	q := NewInMemoryFanQueue()
	ctx := context.Background()

	require.NoError(t, q.Put(ctx, "dev-a", fanBatch(40)))

	_, err := q.Pop(ctx, "dev-b")
	assert.ErrorIs(t, err, domain.ErrNoCommand)

	got, err := q.Pop(ctx, "dev-a")
	require.NoError(t, err)
	assert.Equal(t, 40, got.Commands[0].PWMDuty)
}

func TestFanQueueClear(t *testing.T) {
	q := NewInMemoryFanQueue()
	ctx := context.Background()

	require.NoError(t, q.Put(ctx, "dev-a", fanBatch(40)))
	require.NoError(t, q.Clear(ctx, "dev-a"))

	_, err := q.Pop(ctx, "dev-a")
	assert.ErrorIs(t, err, domain.ErrNoCommand)
}

func TestFanQueueConcurrentPop(t *testing.T) {
	q := NewInMemoryFanQueue()
	ctx := context.Background()
	require.NoError(t, q.Put(ctx, "dev-a", fanBatch(40)))

	const workers = 16
	var wg sync.WaitGroup
	got := make([]*domain.FanControlBatch, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			batch, err := q.Pop(ctx, "dev-a")
			if err == nil {
				got[i] = batch
			}
		}(i)
	}
	wg.Wait()

	// exactly one consumer wins
	winners := 0
	for _, b := range got {
		if b != nil {
			winners++
		}
	}
	assert.Equal(t, 1, winners)
}

func TestEnvQueueSemantics(t *testing.T) {
	q := NewInMemoryEnvQueue()
	ctx := context.Background()

	_, err := q.Pop(ctx, "dev-a")
	assert.ErrorIs(t, err, domain.ErrNoCommand)

	first := &domain.EnvironmentalCommand{DeviceID: "dev-a", HumidifierActive: true, HumidifierPower: 75}
	second := &domain.EnvironmentalCommand{DeviceID: "dev-a", DehumidifierActive: true, DehumidifierPower: 75}
	require.NoError(t, q.Put(ctx, "dev-a", first))
	require.NoError(t, q.Put(ctx, "dev-a", second))

	got, err := q.Pop(ctx, "dev-a")
	require.NoError(t, err)
	assert.Equal(t, second, got)

	_, err = q.Pop(ctx, "dev-a")
	assert.ErrorIs(t, err, domain.ErrNoCommand)
}
