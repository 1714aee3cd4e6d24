package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	WishesSubmitted        uint64
	WishesInvalid          uint64
	WishesFailed           uint64
	WishesApproved         uint64
	WishesDeleted          uint64
	AdminLoginsSucceeded   uint64
	AdminLoginsFailed      uint64
	AdminLoginsRateLimited uint64
	SubmissionsRateLimited uint64
	NotificationsDelivered uint64
	NotificationsRetried   uint64
	NotificationsFailed    uint64
	NotificationsDropped   uint64
	RequestDurationCount   uint64
	RequestDurationTotalNs int64
}

// InMemoryRecorder stores metrics in memory. It backs the /metrics endpoint
// and tests.
type InMemoryRecorder struct {
	wishesSubmitted        atomic.Uint64
	wishesInvalid          atomic.Uint64
	wishesFailed           atomic.Uint64
	wishesApproved         atomic.Uint64
	wishesDeleted          atomic.Uint64
	loginsSucceeded        atomic.Uint64
	loginsFailed           atomic.Uint64
	loginsRateLimited      atomic.Uint64
	submissionsRateLimited atomic.Uint64
	notifyDelivered        atomic.Uint64
	notifyRetried          atomic.Uint64
	notifyFailed           atomic.Uint64
	notifyDropped          atomic.Uint64
	requestDurationCount   atomic.Uint64
	requestDurationTotalNs atomic.Int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		WishesSubmitted:        m.wishesSubmitted.Load(),
		WishesInvalid:          m.wishesInvalid.Load(),
		WishesFailed:           m.wishesFailed.Load(),
		WishesApproved:         m.wishesApproved.Load(),
		WishesDeleted:          m.wishesDeleted.Load(),
		AdminLoginsSucceeded:   m.loginsSucceeded.Load(),
		AdminLoginsFailed:      m.loginsFailed.Load(),
		AdminLoginsRateLimited: m.loginsRateLimited.Load(),
		SubmissionsRateLimited: m.submissionsRateLimited.Load(),
		NotificationsDelivered: m.notifyDelivered.Load(),
		NotificationsRetried:   m.notifyRetried.Load(),
		NotificationsFailed:    m.notifyFailed.Load(),
		NotificationsDropped:   m.notifyDropped.Load(),
		RequestDurationCount:   m.requestDurationCount.Load(),
		RequestDurationTotalNs: m.requestDurationTotalNs.Load(),
	}
}

// IncWishSubmitted counts a submission outcome.
func (m *InMemoryRecorder) IncWishSubmitted(status string) {
	switch status {
	case StatusSuccess:
		m.wishesSubmitted.Add(1)
	case StatusInvalid:
		m.wishesInvalid.Add(1)
	case StatusFailed:
		m.wishesFailed.Add(1)
	}
}

// IncWishModerated counts a moderation action.
func (m *InMemoryRecorder) IncWishModerated(action string) {
	switch action {
	case "approve":
		m.wishesApproved.Add(1)
	case "delete":
		m.wishesDeleted.Add(1)
	}
}

// IncAdminLogin counts a login outcome.
func (m *InMemoryRecorder) IncAdminLogin(result string) {
	switch result {
	case LoginSuccess:
		m.loginsSucceeded.Add(1)
	case LoginFailed:
		m.loginsFailed.Add(1)
	case LoginRateLimited:
		m.loginsRateLimited.Add(1)
	}
}

// IncNotification counts a notification delivery outcome.
func (m *InMemoryRecorder) IncNotification(result string) {
	switch result {
	case NotifyDelivered:
		m.notifyDelivered.Add(1)
	case NotifyRetried:
		m.notifyRetried.Add(1)
	case NotifyFailed:
		m.notifyFailed.Add(1)
	case NotifyDropped:
		m.notifyDropped.Add(1)
	}
}

// IncSubmissionRateLimited counts a submission refused by the IP limiter.
func (m *InMemoryRecorder) IncSubmissionRateLimited() {
	m.submissionsRateLimited.Add(1)
}

// ObserveRequestDuration records request duration.
func (m *InMemoryRecorder) ObserveRequestDuration(duration time.Duration) {
	m.requestDurationCount.Add(1)
	m.requestDurationTotalNs.Add(duration.Nanoseconds())
}

var (
	_ Recorder    = (*InMemoryRecorder)(nil)
	_ Snapshotter = (*InMemoryRecorder)(nil)
)
