package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"math"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

const (
	// rateLimitIPPrefix is the Redis key prefix for IP rate limits.
	rateLimitIPPrefix = "ratelimit:ip:"
	// rateLimitIPTTL is the TTL for IP rate limit keys.
	rateLimitIPTTL = 60 * time.Second
	// localLimiterIdle evicts fallback limiters unused for this long.
	localLimiterIdle = 10 * time.Minute
)

// RateLimitResult contains the result of a rate limit check.
type RateLimitResult struct {
	Allowed    bool
	Remaining  int64
	ResetAt    time.Time
	RetryAfter time.Duration
}

// tokenBucketScript is a Lua script implementing the token bucket algorithm.
// It's atomic and handles token refill and consumption in a single operation.
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local rate = tonumber(ARGV[1])      -- tokens per second
	local burst = tonumber(ARGV[2])     -- max tokens (bucket capacity)
	local now = tonumber(ARGV[3])       -- current time in seconds
	local ttl = tonumber(ARGV[4])       -- TTL in seconds

	local data = redis.call('HMGET', key, 'tokens', 'last_update')
	local tokens = tonumber(data[1]) or burst
	local last_update = tonumber(data[2]) or now

	local elapsed = now - last_update
	tokens = math.min(burst, tokens + (elapsed * rate))

	local allowed = 0
	local retry_after = 0

	if tokens >= 1 then
		tokens = tokens - 1
		allowed = 1
	else
		retry_after = math.ceil((1 - tokens) / rate)
	end

	redis.call('HSET', key, 'tokens', tokens, 'last_update', now)
	redis.call('EXPIRE', key, ttl)

	return {allowed, retry_after, math.floor(tokens)}
`)

// CheckIPRateLimit checks and updates the rate limit for an IP address.
// IP is hashed to avoid storing raw IP addresses. When Redis cannot answer,
// a process-local limiter with the same parameters decides.
func (c *Cache) CheckIPRateLimit(ctx context.Context, ip string, ratePerSecond float64, burst int) (*RateLimitResult, error) {
	key := rateLimitIPPrefix + hashIP(ip)

	if ratePerSecond <= 0 {
		return &RateLimitResult{Allowed: true, Remaining: int64(burst)}, nil
	}

	now := time.Now()
	result, err := tokenBucketScript.Run(ctx, c.client,
		[]string{key},
		ratePerSecond, burst, now.Unix(), int(rateLimitIPTTL.Seconds()),
	).Int64Slice()
	if err != nil {
		return c.local.allow(key, ratePerSecond, burst, now), nil
	}

	return &RateLimitResult{
		Allowed:    result[0] == 1,
		Remaining:  result[2],
		ResetAt:    now.Add(time.Duration(float64(time.Second) / ratePerSecond)),
		RetryAfter: time.Duration(result[1]) * time.Second,
	}, nil
}

// localLimiter holds one x/time/rate limiter per key.
type localLimiter struct {
	mu       sync.Mutex
	limiters map[string]*localEntry
	lastGC   time.Time
}

type localEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newLocalLimiter() *localLimiter {
	return &localLimiter{limiters: make(map[string]*localEntry)}
}

func (l *localLimiter) allow(key string, ratePerSecond float64, burst int, now time.Time) *RateLimitResult {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastGC) > localLimiterIdle {
		for k, e := range l.limiters {
			if now.Sub(e.lastSeen) > localLimiterIdle {
				delete(l.limiters, k)
			}
		}
		l.lastGC = now
	}

	e, ok := l.limiters[key]
	if !ok {
		e = &localEntry{limiter: rate.NewLimiter(limiterRate(ratePerSecond), burst)}
		l.limiters[key] = e
	}
	e.lastSeen = now

	res := e.limiter.ReserveN(now, 1)
	if !res.OK() {
		return &RateLimitResult{Allowed: false, RetryAfter: time.Second, ResetAt: now.Add(time.Second)}
	}
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		retry := time.Duration(math.Ceil(delay.Seconds())) * time.Second
		return &RateLimitResult{Allowed: false, RetryAfter: retry, ResetAt: now.Add(delay)}
	}

	remaining := int64(e.limiter.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}
	return &RateLimitResult{
		Allowed:   true,
		Remaining: remaining,
		ResetAt:   now.Add(time.Duration(float64(time.Second) / ratePerSecond)),
	}
}

// hashIP creates a truncated SHA256 hash of an IP address.
// This provides privacy while maintaining uniqueness.
func hashIP(ip string) string {
	hash := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(hash[:8]) // 16 hex chars
}

// LocalLimiter is a process-local IP limiter for deployments without Redis.
type LocalLimiter struct {
	limiter *localLimiter
	now     func() time.Time
}

// NewLocalLimiter returns an empty LocalLimiter.
func NewLocalLimiter() *LocalLimiter {
	return &LocalLimiter{limiter: newLocalLimiter(), now: time.Now}
}

// CheckIPRateLimit has the same contract as Cache.CheckIPRateLimit.
func (l *LocalLimiter) CheckIPRateLimit(_ context.Context, ip string, ratePerSecond float64, burst int) (*RateLimitResult, error) {
	if ratePerSecond <= 0 {
		return &RateLimitResult{Allowed: true, Remaining: int64(burst)}, nil
	}
	return l.limiter.allow(rateLimitIPPrefix+hashIP(ip), ratePerSecond, burst, l.now()), nil
}
