package quota

import (
	"context"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/keithcsxyz/yt2mp3/internal/config"
	"github.com/keithcsxyz/yt2mp3/internal/logger"
)

const sessionKeyTTL = 24 * time.Hour

// RedisTracker shares session counts across instances. Redis errors fall
// back to an in-memory tracker rather than blocking downloads.
type RedisTracker struct {
	client   *redis.Client
	limit    int
	log      *logger.Logger
	fallback *MemoryTracker
}

// NewRedisClient constructs a go-redis client, or nil when no address is
// configured.
func NewRedisClient(cfg *config.RedisConfig) *redis.Client {
	if cfg == nil || cfg.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
}

func NewRedisTracker(client *redis.Client, limit int, log *logger.Logger) *RedisTracker {
	return &RedisTracker{
		client:   client,
		limit:    limit,
		log:      log,
		fallback: NewMemoryTracker(limit),
	}
}

func sessionKey(session string) string {
	return "quota:" + session
}

func (t *RedisTracker) Allowed(ctx context.Context, session string) bool {
	ctx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()

	val, err := t.client.Get(ctx, sessionKey(session)).Result()
	if err == redis.Nil {
		return true
	}
	if err != nil {
		t.log.Warn("quota: redis get failed, using in-memory fallback: %v", err)
		return t.fallback.Allowed(ctx, session)
	}
	n, _ := strconv.Atoi(val)
	return n < t.limit
}

func (t *RedisTracker) Reserve(ctx context.Context, session string) bool {
	ctx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()

	key := sessionKey(session)
	n, err := t.client.Incr(ctx, key).Result()
	if err != nil {
		t.log.Warn("quota: redis incr failed, using in-memory fallback: %v", err)
		return t.fallback.Reserve(ctx, session)
	}
	if n == 1 {
		_ = t.client.Expire(ctx, key, sessionKeyTTL).Err()
	}
	if n > int64(t.limit) {
		// Roll the overshoot back so the counter stays meaningful.
		_ = t.client.Decr(ctx, key).Err()
		return false
	}
	return true
}

func (t *RedisTracker) Release(ctx context.Context, session string) {
	ctx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()

	key := sessionKey(session)
	n, err := t.client.Decr(ctx, key).Result()
	if err != nil {
		t.log.Warn("quota: redis decr failed, releasing in-memory fallback: %v", err)
		t.fallback.Release(ctx, session)
		return
	}
	if n < 0 {
		// A release with nothing reserved must not open extra quota.
		_ = t.client.Incr(ctx, key).Err()
	}
}
