package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncWishSubmitted is a no-op.
func (n *NoopRecorder) IncWishSubmitted(status string) {}

// IncWishModerated is a no-op.
func (n *NoopRecorder) IncWishModerated(action string) {}

// IncAdminLogin is a no-op.
func (n *NoopRecorder) IncAdminLogin(result string) {}

// IncNotification is a no-op.
func (n *NoopRecorder) IncNotification(result string) {}

// IncSubmissionRateLimited is a no-op.
func (n *NoopRecorder) IncSubmissionRateLimited() {}

// ObserveRequestDuration is a no-op.
func (n *NoopRecorder) ObserveRequestDuration(duration time.Duration) {}
