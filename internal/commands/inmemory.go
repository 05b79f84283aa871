package commands

import (
	"context"
	"sync"

	"github.com/Alekperov-Vitalii/Diplom/internal/domain"
)

// InMemoryFanQueue keeps pending fan batches in a map. Suitable for a
// single-process server and for tests.
type InMemoryFanQueue struct {
	mu      sync.Mutex
	pending map[string]*domain.FanControlBatch
}

func NewInMemoryFanQueue() *InMemoryFanQueue {
	return &InMemoryFanQueue{pending: make(map[string]*domain.FanControlBatch)}
}

func (q *InMemoryFanQueue) Put(_ context.Context, deviceID string, batch *domain.FanControlBatch) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending[deviceID] = batch
	return nil
}

func (q *InMemoryFanQueue) Pop(_ context.Context, deviceID string) (*domain.FanControlBatch, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	batch, ok := q.pending[deviceID]
	if !ok {
		return nil, domain.ErrNoCommand
	}
	delete(q.pending, deviceID)
	return batch, nil
}

func (q *InMemoryFanQueue) Clear(_ context.Context, deviceID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.pending, deviceID)
	return nil
}

// InMemoryEnvQueue is the environmental counterpart of InMemoryFanQueue.
type InMemoryEnvQueue struct {
	mu      sync.Mutex
	pending map[string]*domain.EnvironmentalCommand
}

func NewInMemoryEnvQueue() *InMemoryEnvQueue {
	return &InMemoryEnvQueue{pending: make(map[string]*domain.EnvironmentalCommand)}
}

func (q *InMemoryEnvQueue) Put(_ context.Context, deviceID string, cmd *domain.EnvironmentalCommand) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending[deviceID] = cmd
	return nil
}

func (q *InMemoryEnvQueue) Pop(_ context.Context, deviceID string) (*domain.EnvironmentalCommand, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	cmd, ok := q.pending[deviceID]
	if !ok {
		return nil, domain.ErrNoCommand
	}
	delete(q.pending, deviceID)
	return cmd, nil
}

func (q *InMemoryEnvQueue) Clear(_ context.Context, deviceID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.pending, deviceID)
	return nil
}
