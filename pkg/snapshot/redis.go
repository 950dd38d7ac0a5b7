package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

type redisStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	SnapshotKey(parts ...string) string
}

// RedisStore persists snapshots in Redis under the shared snapshot namespace.
type RedisStore struct {
	client redisStore
	ttl    time.Duration
}

// NewRedisStore wraps a redis client as a snapshot Store. A zero ttl keeps
// snapshots until they are cleared.
func NewRedisStore(client redisStore, ttl time.Duration) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	return &RedisStore{client: client, ttl: ttl}, nil
}

func (s *RedisStore) Save(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding snapshot %q: %w", key, err)
	}
	return s.client.Set(ctx, s.client.SnapshotKey(key), string(raw), s.ttl)
}

func (s *RedisStore) Load(ctx context.Context, key string, dest any) (bool, error) {
	namespaced := s.client.SnapshotKey(key)
	raw, err := s.client.Get(ctx, namespaced)
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		// Unreadable snapshots are dropped so the next Load starts clean.
		_ = s.client.Del(ctx, namespaced)
		return false, nil
	}
	return true, nil
}

func (s *RedisStore) Clear(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.client.SnapshotKey(key))
}
