package accounts

import (
	"context"
	"strings"
	"sync"
	"time"

	"placement-portal/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// Throttle limits repeated failed logins per email within a fixed window.
type Throttle interface {
	// Allow reports whether another login attempt may proceed.
	Allow(ctx context.Context, email string) (bool, error)
	Fail(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

func throttleKey(email string) string {
	return "login:fail:" + strings.ToLower(strings.TrimSpace(email))
}

// RedisThrottle keeps failure counters in Redis so every instance shares them.
type RedisThrottle struct {
	rdb         redis.Cmdable
	maxFailures int
	window      time.Duration
}

func NewRedisThrottle(rdb redis.Cmdable, maxFailures int, window time.Duration) *RedisThrottle {
	return &RedisThrottle{rdb: rdb, maxFailures: maxFailures, window: window}
}

func (t *RedisThrottle) Allow(ctx context.Context, email string) (bool, error) {
	if t.maxFailures <= 0 {
		return true, nil
	}
	n, err := utils.WindowCounter(ctx, t.rdb, throttleKey(email))
	if err != nil {
		return false, err
	}
	return n < int64(t.maxFailures), nil
}

func (t *RedisThrottle) Fail(ctx context.Context, email string) error {
	if t.maxFailures <= 0 {
		return nil
	}
	_, err := utils.IncrWindowCounter(ctx, t.rdb, throttleKey(email), t.window)
	return err
}

func (t *RedisThrottle) Reset(ctx context.Context, email string) error {
	if t.maxFailures <= 0 {
		return nil
	}
	return utils.ResetWindowCounter(ctx, t.rdb, throttleKey(email))
}

// MemoryThrottle is the single-process variant used when Redis is not configured.
type MemoryThrottle struct {
	mu          sync.Mutex
	maxFailures int
	window      time.Duration
	clock       func() time.Time
	counters    map[string]windowCount
}

type windowCount struct {
	n       int
	expires time.Time
}

func NewMemoryThrottle(maxFailures int, window time.Duration, clock func() time.Time) *MemoryThrottle {
	if clock == nil {
		clock = time.Now
	}
	return &MemoryThrottle{
		maxFailures: maxFailures,
		window:      window,
		clock:       clock,
		counters:    map[string]windowCount{},
	}
}

func (t *MemoryThrottle) Allow(ctx context.Context, email string) (bool, error) {
	if t.maxFailures <= 0 {
		return true, nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	c, ok := t.counters[throttleKey(email)]
	if !ok || !t.clock().Before(c.expires) {
		return true, nil
	}
	return c.n < t.maxFailures, nil
}

func (t *MemoryThrottle) Fail(ctx context.Context, email string) error {
	if t.maxFailures <= 0 {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	key := throttleKey(email)
	now := t.clock()
	c, ok := t.counters[key]
	if !ok || !now.Before(c.expires) {
		c = windowCount{expires: now.Add(t.window)}
	}
	c.n++
	t.counters[key] = c
	return nil
}

func (t *MemoryThrottle) Reset(ctx context.Context, email string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.counters, throttleKey(email))
	return nil
}

// NopThrottle never limits.
type NopThrottle struct{}

func (NopThrottle) Allow(context.Context, string) (bool, error) { return true, nil }
func (NopThrottle) Fail(context.Context, string) error          { return nil }
func (NopThrottle) Reset(context.Context, string) error         { return nil }
