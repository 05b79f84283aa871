// Package commands implements the pop-once command queues between the
// fog server and its devices. A queue holds at most one pending entry per
// device: a later Put overwrites, a Pop consumes.
package commands

import (
	"context"

	"github.com/Alekperov-Vitalii/Diplom/internal/domain"
)

// FanQueue delivers fan control batches with at-most-once semantics.
type FanQueue interface {
	Put(ctx context.Context, deviceID string, batch *domain.FanControlBatch) error
	// Pop consumes the pending batch, returning domain.ErrNoCommand when
	// nothing is queued.
	Pop(ctx context.Context, deviceID string) (*domain.FanControlBatch, error)
	// Clear drops the pending batch, if any.
	Clear(ctx context.Context, deviceID string) error
}

// EnvQueue delivers environmental actuator commands, same semantics as
// FanQueue but a separate key space.
type EnvQueue interface {
	Put(ctx context.Context, deviceID string, cmd *domain.EnvironmentalCommand) error
	Pop(ctx context.Context, deviceID string) (*domain.EnvironmentalCommand, error)
	Clear(ctx context.Context, deviceID string) error
}
