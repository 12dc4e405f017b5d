package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"resume-studio/internal/model"
)

// RedisCmdable is the subset of redis.Cmdable the store uses.
type RedisCmdable interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type RedisStore struct {
	client RedisCmdable
	close  func() error
}

func NewRedisStore(client RedisCmdable, closeFn func() error) *RedisStore {
	return &RedisStore{client: client, close: closeFn}
}

func (s *RedisStore) Load(ctx context.Context) (*model.Resume, error) {
	b, err := s.client.Get(ctx, SnapshotKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return decode(b)
}

func (s *RedisStore) Save(ctx context.Context, r model.Resume) error {
	b, err := encode(r)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, SnapshotKey, b, 0).Err(); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, SnapshotKey).Err(); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	if s.close != nil {
		return s.close()
	}
	return nil
}
