package metrics

import (
	"testing"
	"time"
)

func TestInMemoryRecorder_Counts(t *testing.T) {
	t.Parallel()

	m := NewInMemory()
	m.IncWishSubmitted(StatusSuccess)
	m.IncWishSubmitted(StatusSuccess)
	m.IncWishSubmitted(StatusInvalid)
	m.IncWishSubmitted(StatusFailed)
	m.IncWishSubmitted("bogus")
	m.IncWishModerated("approve")
	m.IncWishModerated("delete")
	m.IncAdminLogin(LoginFailed)
	m.IncAdminLogin(LoginRateLimited)
	m.IncAdminLogin(LoginSuccess)
	m.IncSubmissionRateLimited()
	m.IncNotification(NotifyRetried)
	m.IncNotification(NotifyDelivered)
	m.IncNotification(NotifyDropped)
	m.ObserveRequestDuration(1500 * time.Millisecond)

	got := m.Snapshot()
	want := Snapshot{
		WishesSubmitted:        2,
		WishesInvalid:          1,
		WishesFailed:           1,
		WishesApproved:         1,
		WishesDeleted:          1,
		AdminLoginsSucceeded:   1,
		AdminLoginsFailed:      1,
		AdminLoginsRateLimited: 1,
		SubmissionsRateLimited: 1,
		NotificationsDelivered: 1,
		NotificationsRetried:   1,
		NotificationsDropped:   1,
		RequestDurationCount:   1,
		RequestDurationTotalNs: int64(1500 * time.Millisecond),
	}
	if got != want {
		t.Errorf("Snapshot() = %+v, want %+v", got, want)
	}
}
