package notify

import (
	"math/rand/v2"
	"time"
)

// Retry delays for exponential backoff. Notifications are only useful while
// the wish is still pending, so the schedule is short.
var retryDelays = []time.Duration{
	2 * time.Second,
	10 * time.Second,
	time.Minute,
	5 * time.Minute,
}

const (
	// DefaultMaxAttempts is the default number of delivery attempts.
	DefaultMaxAttempts = 5

	// JitterFactor is the ±percentage of jitter applied to delays.
	JitterFactor = 0.2
)

// NextRetryDelay returns the wait after the given failed attempt (0-indexed)
// with ±20% jitter. Attempts past the schedule reuse the last delay.
func NextRetryDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt >= len(retryDelays) {
		attempt = len(retryDelays) - 1
	}

	base := retryDelays[attempt]
	jitter := (rand.Float64()*2 - 1) * float64(base) * JitterFactor
	return time.Duration(float64(base) + jitter)
}

// IsExhausted reports whether attempts has reached maxAttempts.
func IsExhausted(attempts, maxAttempts int) bool {
	return attempts >= maxAttempts
}
