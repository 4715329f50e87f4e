package newsletter

import (
	"context"
	"sync"
	"time"

	"github.com/kaarshe/core/internal/pkg/redis"
	"go.uber.org/zap"
)

// Locker serializes work on one key. The returned unlock must be called once.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// KeyedMutex is an in-process Locker. Entries are dropped once no holder or
// waiter references them.
type KeyedMutex struct {
	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{slots: make(map[string]*slot)}
}

func (m *KeyedMutex) Lock(ctx context.Context, key string) (func(), error) {
	m.mu.Lock()
	s, ok := m.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		m.slots[key] = s
	}
	s.refs++
	m.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		m.release(key, s, false)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() { m.release(key, s, true) })
	}, nil
}

func (m *KeyedMutex) release(key string, s *slot, held bool) {
	if held {
		<-s.ch
	}
	m.mu.Lock()
	s.refs--
	if s.refs == 0 {
		delete(m.slots, key)
	}
	m.mu.Unlock()
}

const (
	lockPrefix   = "kaarshe:newsletter:lock:"
	lockTTL      = 10 * time.Second
	lockInterval = 50 * time.Millisecond
)

// RedisLocker holds the lock in Redis so replicas share it. When Redis
// cannot be reached it falls back to an in-process lock.
type RedisLocker struct {
	client   *redis.Client
	fallback *KeyedMutex
	logger   *zap.Logger
}

func NewRedisLocker(client *redis.Client, logger *zap.Logger) *RedisLocker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisLocker{client: client, fallback: NewKeyedMutex(), logger: logger}
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	release, err := l.client.LockWait(ctx, lockPrefix+key, lockTTL, lockInterval)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		l.logger.Warn("redis subscriber lock unavailable, using local lock", zap.String("key", key), zap.Error(err))
		return l.fallback.Lock(ctx, key)
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := release(ctx); err != nil {
			l.logger.Warn("release subscriber lock", zap.String("key", key), zap.Error(err))
		}
	}, nil
}
