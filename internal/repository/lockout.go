package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockoutTracker maintains consecutive-failure counters and lock flags
// for login attempts, keyed by account email. Implementations must
// provide atomic increment semantics; the counters are the only shared
// mutable state in the authentication path.
type LockoutTracker interface {
	IsLocked(ctx context.Context, key string) (bool, error)
	RecordFailure(ctx context.Context, key string, window time.Duration) (int64, error)
	Lock(ctx context.Context, key string, duration time.Duration) error
	Reset(ctx context.Context, key string) error
}

type redisLockoutTracker struct {
	client *redis.Client
}

// NewRedisLockoutTracker returns a Redis-backed tracker. Counters use
// INCR with a sliding expiry window; locks are keys with a TTL.
func NewRedisLockoutTracker(client *redis.Client) LockoutTracker {
	return &redisLockoutTracker{client: client}
}

func failureKey(key string) string { return fmt.Sprintf("lockout:fail:%s", key) }
func lockKey(key string) string    { return fmt.Sprintf("lockout:lock:%s", key) }

func (t *redisLockoutTracker) IsLocked(ctx context.Context, key string) (bool, error) {
	n, err := t.client.Exists(ctx, lockKey(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (t *redisLockoutTracker) RecordFailure(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := t.client.TxPipeline()
	incr := pipe.Incr(ctx, failureKey(key))
	pipe.Expire(ctx, failureKey(key), window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

func (t *redisLockoutTracker) Lock(ctx context.Context, key string, duration time.Duration) error {
	pipe := t.client.TxPipeline()
	pipe.Set(ctx, lockKey(key), "1", duration)
	pipe.Del(ctx, failureKey(key))
	_, err := pipe.Exec(ctx)
	return err
}

func (t *redisLockoutTracker) Reset(ctx context.Context, key string) error {
	return t.client.Del(ctx, failureKey(key), lockKey(key)).Err()
}

type memoryLockoutTracker struct {
	mu       sync.Mutex
	failures map[string]*failureWindow
	locks    map[string]time.Time
}

type failureWindow struct {
	count     int64
	expiresAt time.Time
}

// NewMemoryLockoutTracker returns an in-process tracker for tests and
// redis-less development.
func NewMemoryLockoutTracker() LockoutTracker {
	return &memoryLockoutTracker{
		failures: make(map[string]*failureWindow),
		locks:    make(map[string]time.Time),
	}
}

func (t *memoryLockoutTracker) IsLocked(_ context.Context, key string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	until, ok := t.locks[key]
	if !ok {
		return false, nil
	}
	if time.Now().After(until) {
		delete(t.locks, key)
		return false, nil
	}
	return true, nil
}

func (t *memoryLockoutTracker) RecordFailure(_ context.Context, key string, window time.Duration) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fw, ok := t.failures[key]
	if !ok || time.Now().After(fw.expiresAt) {
		fw = &failureWindow{}
		t.failures[key] = fw
	}
	fw.count++
	fw.expiresAt = time.Now().Add(window)
	return fw.count, nil
}

func (t *memoryLockoutTracker) Lock(_ context.Context, key string, duration time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.locks[key] = time.Now().Add(duration)
	delete(t.failures, key)
	return nil
}

func (t *memoryLockoutTracker) Reset(_ context.Context, key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.failures, key)
	delete(t.locks, key)
	return nil
}
