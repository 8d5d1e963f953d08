package counter

import (
	"context"
	"time"

	"github.com/go-redis/redis/v7"
	"github.com/pkg/errors"
)

const (
	probeKey    = "init"
	probeExpiry = time.Second
)

// RedisStorage keeps counters in redis, relying on INCR for atomicity
// across processes.
type RedisStorage struct {
	client *redis.Client
}

func NewRedisStorage(client *redis.Client) *RedisStorage {
	return &RedisStorage{client: client}
}

func (s *RedisStorage) Increment(ctx context.Context, key string) (int64, error) {
	c, err := s.client.WithContext(ctx).Incr(key).Result()
	if err != nil {
		return 0, &StoreError{Op: "incr", Key: key, Err: err}
	}

	return c, nil
}

func (s *RedisStorage) Get(ctx context.Context, key string) (int64, error) {
	c, err := s.client.WithContext(ctx).Get(key).Int64()
	if err == redis.Nil {
		return 0, errors.Wrapf(ErrNonExistingCounter, "redis storage get (key %q)", key)
	}
	if err != nil {
		return 0, &StoreError{Op: "get", Key: key, Err: err}
	}

	return c, nil
}

// probe writes a short lived sentinel key to check the store accepts writes.
func (s *RedisStorage) probe(ctx context.Context) error {
	err := s.client.WithContext(ctx).Set(probeKey, 1, probeExpiry).Err()
	if err != nil {
		return &StoreError{Op: "set", Key: probeKey, Err: err}
	}

	return nil
}

func (s *RedisStorage) Close() error {
	return s.client.Close()
}
