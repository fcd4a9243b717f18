package common

import (
	"context"
	"errors"
	"time"

	"bode-andarilho/agenda/internal/logging"

	"github.com/redis/go-redis/v9"
)

// redisOpTimeout bounds a single cache call; a slow Redis degrades to misses.
const redisOpTimeout = 2 * time.Second

// RedisCacheService implements CacheInterface on a shared Redis, so several
// bot replicas agree on listings, used export tokens and sent reminders.
type RedisCacheService struct {
	client *redis.Client
	prefix string
}

// Ensure RedisCacheService implements CacheInterface
var _ CacheInterface = (*RedisCacheService)(nil)

func NewRedisCacheService(client *redis.Client) *RedisCacheService {
	return &RedisCacheService{
		client: client,
		prefix: "agenda:",
	}
}

func (r *RedisCacheService) op() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), redisOpTimeout)
}

func (r *RedisCacheService) Set(key string, value []byte, duration time.Duration) {
	ctx, cancel := r.op()
	defer cancel()
	if err := r.client.Set(ctx, r.prefix+key, value, duration).Err(); err != nil {
		logging.Warn("Redis cache: set failed", "key", key, "error", err)
	}
}

func (r *RedisCacheService) Get(key string) ([]byte, bool) {
	ctx, cancel := r.op()
	defer cancel()
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		logging.Warn("Redis cache: get failed", "key", key, "error", err)
		return nil, false
	}
	return data, true
}

func (r *RedisCacheService) Delete(key string) {
	ctx, cancel := r.op()
	defer cancel()
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		logging.Warn("Redis cache: delete failed", "key", key, "error", err)
	}
}

// SetIfAbsent uses SETNX. A Redis failure reports false so callers skip
// the guarded work instead of repeating it.
func (r *RedisCacheService) SetIfAbsent(key string, duration time.Duration) bool {
	ctx, cancel := r.op()
	defer cancel()
	ok, err := r.client.SetNX(ctx, r.prefix+key, "1", duration).Result()
	if err != nil {
		logging.Warn("Redis cache: setnx failed", "key", key, "error", err)
		return false
	}
	return ok
}

// Ping reports whether Redis answers. Used by the health check.
func (r *RedisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (r *RedisCacheService) Close() error {
	return r.client.Close()
}
