package service

import (
	"context"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/time/rate"
)

// RateLimiter decide si una clave (IP del cliente) puede hacer otro request.
type RateLimiter interface {
	Allow(ctx context.Context, key string) bool
}

const redisRateLimitScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return current
`

type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// redisRateLimiter es una ventana fija compartida entre replicas.
type redisRateLimiter struct {
	client redisEvaler
	window time.Duration
	max    int
	prefix string
}

func NewRedisRateLimiter(client *redis.Client, window time.Duration, max int) RateLimiter {
	if client == nil {
		return nil
	}
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	return &redisRateLimiter{
		client: client,
		window: window,
		max:    max,
		prefix: "api:rl:",
	}
}

// Allow falla abierto: si redis no responde, el request pasa.
func (l *redisRateLimiter) Allow(ctx context.Context, key string) bool {
	if l == nil || l.client == nil {
		return true
	}
	normalized := normalizeLimiterKey(key)
	if normalized == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	seconds := int(l.window.Seconds())
	if seconds <= 0 {
		seconds = 60
	}
	count, err := l.client.Eval(ctx, redisRateLimitScript, []string{l.prefix + hashLimiterKey(normalized)}, seconds).Int()
	if err != nil {
		return true
	}
	return count <= l.max
}

// memoryRateLimiter usa un token bucket por clave; sirve para una sola replica.
type memoryRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*memoryLimiterEntry
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
	now      func() time.Time
}

type memoryLimiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewMemoryRateLimiter(window time.Duration, max int) RateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	return &memoryRateLimiter{
		limiters: make(map[string]*memoryLimiterEntry),
		limit:    rate.Every(window / time.Duration(max)),
		burst:    max,
		idleTTL:  2 * window,
		now:      time.Now,
	}
}

func (l *memoryRateLimiter) Allow(_ context.Context, key string) bool {
	normalized := normalizeLimiterKey(key)
	if normalized == "" {
		return false
	}
	hashed := hashLimiterKey(normalized)
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.evictIdle(now)
	e, ok := l.limiters[hashed]
	if !ok {
		e = &memoryLimiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[hashed] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

func (l *memoryRateLimiter) evictIdle(now time.Time) {
	for k, e := range l.limiters {
		if now.Sub(e.lastSeen) > l.idleTTL {
			delete(l.limiters, k)
		}
	}
}

func normalizeLimiterKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// hashLimiterKey evita guardar IPs en claro en redis o en memoria.
func hashLimiterKey(key string) string {
	sum := blake2b.Sum256([]byte(key))
	return hex.EncodeToString(sum[:16])
}
