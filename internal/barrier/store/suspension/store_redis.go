package suspension

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"msgbarrier/internal/barrier/models"
	"msgbarrier/pkg/platform/sentinel"
)

// DefaultKey is the Redis key shared by every executor of a deployment.
const DefaultKey = "msgbarrier:suspended"

// RedisStore keeps the flag in Redis so all executors observe one switch.
type RedisStore struct {
	client redis.Cmdable
	key    string
}

func NewRedis(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client, key: DefaultKey}
}

// WithKey returns a copy of the store using key.
func (s *RedisStore) WithKey(key string) *RedisStore {
	return &RedisStore{client: s.client, key: key}
}

func (s *RedisStore) Get(ctx context.Context) (*models.SuspensionState, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return &models.SuspensionState{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get suspension flag: %w: %w", sentinel.ErrUnavailable, err)
	}
	var state models.SuspensionState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("decode suspension flag: %w", err)
	}
	return &state, nil
}

func (s *RedisStore) Set(ctx context.Context, state *models.SuspensionState) error {
	if state == nil {
		return fmt.Errorf("suspension state is required")
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode suspension flag: %w", err)
	}
	if err := s.client.Set(ctx, s.key, raw, 0).Err(); err != nil {
		return fmt.Errorf("set suspension flag: %w: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}
