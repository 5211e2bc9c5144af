package exchange

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// ExecutionState tracks what the worker has already sent to the exchange
// for one asset. Purely operational bookkeeping; nothing in the intake
// transaction reads it.
type ExecutionState struct {
	ExecutedQuantity decimal.Decimal `json:"executed_quantity"`
	ExecutionCount   int64           `json:"execution_count"`
	LastRequestID    string          `json:"last_request_id"`
	LastExecutedAt   int64           `json:"last_executed_at"`
}

type ExecutionStateStore interface {
	Load(ctx context.Context, asset string) (ExecutionState, bool, error)
	Save(ctx context.Context, asset string, state ExecutionState) error
}

type RedisExecutionStateStore struct {
	client *redis.Client
}

func NewRedisExecutionStateStore(cacheDSN string) (*RedisExecutionStateStore, error) {
	if cacheDSN == "" {
		return nil, fmt.Errorf("redis cache_dsn is required")
	}

	options, err := redis.ParseURL(cacheDSN)
	if err != nil {
		return nil, fmt.Errorf("parse redis cache_dsn: %w", err)
	}

	return &RedisExecutionStateStore{client: redis.NewClient(options)}, nil
}

func executionStateKey(asset string) string {
	return fmt.Sprintf("exchange:executions:%s", asset)
}

func (s *RedisExecutionStateStore) Load(ctx context.Context, asset string) (ExecutionState, bool, error) {
	rawState, err := s.client.Get(ctx, executionStateKey(asset)).Result()
	if err != nil {
		if err == redis.Nil {
			return ExecutionState{}, false, nil
		}
		return ExecutionState{}, false, err
	}

	var state ExecutionState
	if err := json.Unmarshal([]byte(rawState), &state); err != nil {
		return ExecutionState{}, false, err
	}

	return state, true, nil
}

func (s *RedisExecutionStateStore) Save(ctx context.Context, asset string, state ExecutionState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, executionStateKey(asset), payload, 0).Err()
}

func (s *RedisExecutionStateStore) Close() error {
	return s.client.Close()
}
