package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Alekperov-Vitalii/Diplom/internal/domain"
)

const (
	fanKeyPrefix = "commands:fan:"
	envKeyPrefix = "commands:env:"

	// commandTTL caps how long an unconsumed command may linger; a stale
	// setpoint is recomputed on the next telemetry cycle anyway.
	commandTTL = 5 * time.Minute
)

// RedisFanQueue stores one pending fan batch per device under a string
// key. SET gives last-write-wins, GETDEL gives consume-once.
type RedisFanQueue struct {
	client *redis.Client
}

// NewRedisFanQueue verifies connectivity before returning the queue.
func NewRedisFanQueue(ctx context.Context, client *redis.Client) (*RedisFanQueue, error) {
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrQueueError, err)
	}
	return &RedisFanQueue{client: client}, nil
}

func (q *RedisFanQueue) Put(ctx context.Context, deviceID string, batch *domain.FanControlBatch) error {
	data, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("marshal fan batch: %w", err)
	}
	if err := q.client.Set(ctx, fanKeyPrefix+deviceID, data, commandTTL).Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrQueueError, err)
	}
	return nil
}

func (q *RedisFanQueue) Pop(ctx context.Context, deviceID string) (*domain.FanControlBatch, error) {
	data, err := q.client.GetDel(ctx, fanKeyPrefix+deviceID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNoCommand
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrQueueError, err)
	}
	var batch domain.FanControlBatch
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("unmarshal fan batch: %w", err)
	}
	return &batch, nil
}

func (q *RedisFanQueue) Clear(ctx context.Context, deviceID string) error {
	if err := q.client.Del(ctx, fanKeyPrefix+deviceID).Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrQueueError, err)
	}
	return nil
}

// RedisEnvQueue is the environmental counterpart of RedisFanQueue.
type RedisEnvQueue struct {
	client *redis.Client
}

func NewRedisEnvQueue(ctx context.Context, client *redis.Client) (*RedisEnvQueue, error) {
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrQueueError, err)
	}
	return &RedisEnvQueue{client: client}, nil
}

func (q *RedisEnvQueue) Put(ctx context.Context, deviceID string, cmd *domain.EnvironmentalCommand) error {
	data, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("marshal env command: %w", err)
	}
	if err := q.client.Set(ctx, envKeyPrefix+deviceID, data, commandTTL).Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrQueueError, err)
	}
	return nil
}

func (q *RedisEnvQueue) Pop(ctx context.Context, deviceID string) (*domain.EnvironmentalCommand, error) {
	data, err := q.client.GetDel(ctx, envKeyPrefix+deviceID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNoCommand
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrQueueError, err)
	}
	var cmd domain.EnvironmentalCommand
	if err := json.Unmarshal(data, &cmd); err != nil {
		return nil, fmt.Errorf("unmarshal env command: %w", err)
	}
	return &cmd, nil
}

func (q *RedisEnvQueue) Clear(ctx context.Context, deviceID string) error {
	if err := q.client.Del(ctx, envKeyPrefix+deviceID).Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrQueueError, err)
	}
	return nil
}
