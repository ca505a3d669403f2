package server

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter enforces a fixed-window per-client request budget. With a
// Redis address configured the window counters are shared across
// replicas; otherwise an in-process map serves the same policy. Redis
// errors degrade to the in-process path rather than rejecting traffic.
type RateLimiter struct {
	perMinute int
	rdb       *redis.Client

	mu      sync.Mutex
	windows map[string]*memWindow
}

type memWindow struct {
	window int64
	count  int
}

// NewRateLimiter creates a limiter. perMinute <= 0 disables limiting. An
// unreachable Redis logs once and the limiter runs in-process.
func NewRateLimiter(redisAddr string, perMinute int) *RateLimiter {
	l := &RateLimiter{
		perMinute: perMinute,
		windows:   make(map[string]*memWindow),
	}
	if perMinute <= 0 || redisAddr == "" {
		return l
	}

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("[RateLimit] redis unreachable at %s, using in-process windows: %v", redisAddr, err)
		_ = rdb.Close()
		return l
	}
	l.rdb = rdb
	log.Printf("[RateLimit] using redis windows at %s", redisAddr)
	return l
}

// Allow reports whether the client identified by key may proceed.
func (l *RateLimiter) Allow(ctx context.Context, key string) bool {
	if l.perMinute <= 0 {
		return true
	}
	window := time.Now().Unix() / 60

	if l.rdb != nil {
		redisKey := fmt.Sprintf("honeytrap:ratelimit:%s:%d", key, window)
		count, err := l.rdb.Incr(ctx, redisKey).Result()
		if err == nil {
			if count == 1 {
				l.rdb.Expire(ctx, redisKey, 2*time.Minute)
			}
			return count <= int64(l.perMinute)
		}
		log.Printf("[RateLimit] redis INCR failed, falling back in-process: %v", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	w, ok := l.windows[key]
	if !ok || w.window != window {
		w = &memWindow{window: window}
		l.windows[key] = w
	}
	w.count++
	return w.count <= l.perMinute
}
