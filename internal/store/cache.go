package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/abhisek/linguiz/internal/exercise"
)

// ErrCacheMiss is returned by Cache.Get for an absent key.
var ErrCacheMiss = errors.New("cache miss")

// Cache is the key-value subset the cached repo needs.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// NewRedisClient connects to Redis at addr and pings it.
func NewRedisClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return client, nil
}

type redisCache struct {
	client redis.Cmdable
}

// NewRedisCache adapts a go-redis client to Cache.
func NewRedisCache(client redis.Cmdable) Cache {
	return &redisCache{client: client}
}

func (c *redisCache) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	return b, err
}

func (c *redisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *redisCache) Del(ctx context.Context, keys ...string) error {
	return c.client.Del(ctx, keys...).Err()
}

// cachedRepo is a read-through cache in front of an ExerciseRepo. Only
// single-exercise lookups are cached; they are what the verify endpoint
// does on every answer.
type cachedRepo struct {
	ExerciseRepo
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
}

// WithCache wraps repo so that Get reads through cache. Cache failures are
// logged and fall back to repo.
func WithCache(repo ExerciseRepo, cache Cache, ttl time.Duration, logger *slog.Logger) ExerciseRepo {
	if logger == nil {
		logger = slog.Default()
	}
	return &cachedRepo{ExerciseRepo: repo, cache: cache, ttl: ttl, logger: logger}
}

func exerciseKey(id string) string {
	return "linguiz:exercise:" + id
}

func (c *cachedRepo) Get(ctx context.Context, id string) (*exercise.Exercise, error) {
	key := exerciseKey(id)

	b, err := c.cache.Get(ctx, key)
	switch {
	case err == nil:
		ex := new(exercise.Exercise)
		if err := json.Unmarshal(b, ex); err == nil {
			return ex, nil
		}
		c.logger.WarnContext(ctx, "dropping undecodable cache entry", "key", key)
	case !errors.Is(err, ErrCacheMiss):
		c.logger.WarnContext(ctx, "cache get failed", "key", key, "error", err)
	}

	ex, err := c.ExerciseRepo.Get(ctx, id)
	if err != nil || ex == nil {
		return ex, err
	}

	if b, err := json.Marshal(ex); err == nil {
		if err := c.cache.Set(ctx, key, b, c.ttl); err != nil {
			c.logger.WarnContext(ctx, "cache set failed", "key", key, "error", err)
		}
	}
	return ex, nil
}

func (c *cachedRepo) Upsert(ctx context.Context, ex *exercise.Exercise) error {
	if err := c.ExerciseRepo.Upsert(ctx, ex); err != nil {
		return err
	}
	if err := c.cache.Del(ctx, exerciseKey(ex.ID)); err != nil {
		c.logger.WarnContext(ctx, "cache invalidation failed", "exercise_id", ex.ID, "error", err)
	}
	return nil
}
