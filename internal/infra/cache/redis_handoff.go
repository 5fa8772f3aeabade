package cache

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/davronx1/leadgate/internal/handoff"
)

const handoffKeyPrefix = "handoff:"

// RedisHandoffStore backs the handoff store with Redis so multiple processes
// can share it. GETDEL gives the payload to exactly one taker; expiry covers
// the TTL, so no sweep is needed.
type RedisHandoffStore struct {
	client *redis.Client
}

func NewRedisHandoffStore(client *redis.Client) *RedisHandoffStore {
	return &RedisHandoffStore{client: client}
}

func (s *RedisHandoffStore) Put(ctx context.Context, key string, payload []byte) error {
	return s.client.Set(ctx, handoffKeyPrefix+key, payload, handoff.TTL).Err()
}

func (s *RedisHandoffStore) Take(ctx context.Context, key string) ([]byte, bool, error) {
	payload, err := s.client.GetDel(ctx, handoffKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return payload, true, nil
}
