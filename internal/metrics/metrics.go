// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Label values used with the Recorder.
const (
	StatusSuccess = "success"
	StatusInvalid = "invalid"
	StatusFailed  = "failed"

	LoginSuccess     = "success"
	LoginFailed      = "failed"
	LoginRateLimited = "rate_limited"

	NotifyDelivered = "delivered"
	NotifyRetried   = "retried"
	NotifyFailed    = "failed"
	NotifyDropped   = "dropped"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Wish metrics
	IncWishSubmitted(status string) // status: "success", "invalid", "failed"
	IncWishModerated(action string) // action: "approve", "delete"

	// Admin metrics
	IncAdminLogin(result string) // result: "success", "failed", "rate_limited"

	// Notification metrics
	IncNotification(result string) // result: "delivered", "retried", "failed", "dropped"

	// HTTP metrics
	IncSubmissionRateLimited()
	ObserveRequestDuration(duration time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
