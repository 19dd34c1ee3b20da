package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrLockNotAcquired = errors.New("lock not acquired")

// Locker serializes work on a key. The returned unlock func must be called exactly once.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// releaseScript deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// extendScript resets the TTL (ARGV[2], in ms) only if the key still holds our token.
var extendScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

type redisLocker struct {
	client    *redis.Client
	prefix    string
	ttl       time.Duration
	retryWait time.Duration
	logger    *slog.Logger
}

// NewRedisLocker returns a Locker backed by SET NX with a TTL so a crashed holder
// cannot block the key forever. While held, the TTL is renewed every third of its length.
func NewRedisLocker(client *redis.Client, prefix string, ttl time.Duration, logger *slog.Logger) Locker {
	return &redisLocker{
		client:    client,
		prefix:    prefix,
		ttl:       ttl,
		retryWait: 100 * time.Millisecond,
		logger:    logger,
	}
}

func (l *redisLocker) Lock(ctx context.Context, key string) (func(), error) {
	fullKey := l.prefix + key
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, fullKey, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lock %s: %w", fullKey, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s: %v", ErrLockNotAcquired, fullKey, ctx.Err())
		case <-time.After(l.retryWait):
		}
	}

	extend := func(ctx context.Context) (bool, error) {
		n, err := extendScript.Run(ctx, l.client, []string{fullKey}, token, l.ttl.Milliseconds()).Int64()
		return n == 1, err
	}
	stop := keepAlive(l.ttl/3, extend, l.logger.With("lock", fullKey))

	var once sync.Once
	return func() {
		once.Do(func() {
			stop()
			// Released on a fresh context: the caller's may already be cancelled.
			releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := releaseScript.Run(releaseCtx, l.client, []string{fullKey}, token).Err(); err != nil {
				l.logger.Error("Failed to release lock, key stays held until its TTL",
					"lock", fullKey,
					"ttl", l.ttl,
					"error", err)
			}
		})
	}, nil
}

// keepAlive calls extend every interval until the returned stop func is called or the
// lock is reported lost. stop waits for the renewal goroutine to exit.
func keepAlive(interval time.Duration, extend func(context.Context) (bool, error), logger *slog.Logger) (stop func()) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		if interval <= 0 {
			<-ctx.Done()
			return
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			callCtx, callCancel := context.WithTimeout(ctx, interval)
			held, err := extend(callCtx)
			callCancel()
			switch {
			case err != nil:
				if ctx.Err() != nil {
					return
				}
				logger.Warn("Failed to extend lock", "error", err)
			case !held:
				logger.Error("Lock lost before release")
				return
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}

type memoryLocker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
	refs  map[string]int
}

// NewMemoryLocker returns an in-process Locker for single-instance deployments and tests.
func NewMemoryLocker() Locker {
	return &memoryLocker{
		slots: make(map[string]chan struct{}),
		refs:  make(map[string]int),
	}
}

func (l *memoryLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[key]
	if !ok {
		slot = make(chan struct{}, 1)
		l.slots[key] = slot
	}
	l.refs[key]++
	l.mu.Unlock()

	select {
	case slot <- struct{}{}:
	case <-ctx.Done():
		l.release(key)
		return nil, fmt.Errorf("%w: %s: %v", ErrLockNotAcquired, key, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-slot
			l.release(key)
		})
	}, nil
}

func (l *memoryLocker) release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.refs[key]--
	if l.refs[key] == 0 {
		delete(l.refs, key)
		delete(l.slots, key)
	}
}
