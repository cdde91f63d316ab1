package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/rueidis"
)

// releaseScript deletes the lock only if this holder still owns it
var releaseScript = rueidis.NewLuaScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// InflightLocks marks a (user, event) registration operation as running, shared across API instances
type InflightLocks struct {
	client rueidis.Client
	ttl    time.Duration
}

func NewInflightLocks(cfg Config) (*InflightLocks, error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:      []string{cfg.Addr},
		Password:         cfg.Password,
		DisableCache:     true,
		ConnWriteTimeout: 2 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	ttl := cfg.LockTTL
	if ttl < time.Second {
		ttl = 15 * time.Second
	}

	return &InflightLocks{client: client, ttl: ttl}, nil
}

// Acquire returns acquired=false when another operation holds key.
// The returned release func is a no-op when nothing was acquired.
func (l *InflightLocks) Acquire(ctx context.Context, key string) (bool, func(), error) {
	token := uuid.NewString()
	cmd := l.client.B().Set().Key(lockKey(key)).Value(token).Nx().ExSeconds(int64(l.ttl / time.Second)).Build()

	err := l.client.Do(ctx, cmd).Error()
	if rueidis.IsRedisNil(err) {
		return false, func() {}, nil
	}
	if err != nil {
		return false, func() {}, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}

	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		err := releaseScript.Exec(ctx, l.client, []string{lockKey(key)}, []string{token}).Error()
		logReleaseFailure(key, err)
	}
	return true, release, nil
}

// logReleaseFailure reports a lock that stays held until its TTL runs out
func logReleaseFailure(key string, err error) {
	if err == nil || rueidis.IsRedisNil(err) {
		return
	}
	slog.Warn("Failed to release in-flight lock, held until TTL", "key", lockKey(key), "error", err.Error())
}

func (l *InflightLocks) Close() {
	l.client.Close()
}

func lockKey(key string) string {
	return "inflight:" + key
}
