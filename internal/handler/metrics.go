package handler

import (
	"fmt"
	"net/http"

	"github.com/wishwall/wishwall/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
// GET /metrics
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "# TYPE wishwall_wishes_submitted_total counter\n")
	writeMetric(w, "wishwall_wishes_submitted_total{status=\"success\"} %d\n", snap.WishesSubmitted)
	writeMetric(w, "wishwall_wishes_submitted_total{status=\"invalid\"} %d\n", snap.WishesInvalid)
	writeMetric(w, "wishwall_wishes_submitted_total{status=\"failed\"} %d\n", snap.WishesFailed)

	writeMetric(w, "# TYPE wishwall_wishes_moderated_total counter\n")
	writeMetric(w, "wishwall_wishes_moderated_total{action=\"approve\"} %d\n", snap.WishesApproved)
	writeMetric(w, "wishwall_wishes_moderated_total{action=\"delete\"} %d\n", snap.WishesDeleted)

	writeMetric(w, "# TYPE wishwall_admin_logins_total counter\n")
	writeMetric(w, "wishwall_admin_logins_total{result=\"success\"} %d\n", snap.AdminLoginsSucceeded)
	writeMetric(w, "wishwall_admin_logins_total{result=\"failed\"} %d\n", snap.AdminLoginsFailed)
	writeMetric(w, "wishwall_admin_logins_total{result=\"rate_limited\"} %d\n", snap.AdminLoginsRateLimited)

	writeMetric(w, "# TYPE wishwall_submissions_rate_limited_total counter\n")
	writeMetric(w, "wishwall_submissions_rate_limited_total %d\n", snap.SubmissionsRateLimited)

	writeMetric(w, "# TYPE wishwall_notifications_total counter\n")
	writeMetric(w, "wishwall_notifications_total{result=\"delivered\"} %d\n", snap.NotificationsDelivered)
	writeMetric(w, "wishwall_notifications_total{result=\"retried\"} %d\n", snap.NotificationsRetried)
	writeMetric(w, "wishwall_notifications_total{result=\"failed\"} %d\n", snap.NotificationsFailed)
	writeMetric(w, "wishwall_notifications_total{result=\"dropped\"} %d\n", snap.NotificationsDropped)

	writeMetric(w, "# TYPE wishwall_http_request_duration_seconds summary\n")
	writeMetric(w, "wishwall_http_request_duration_seconds_count %d\n", snap.RequestDurationCount)
	writeMetric(w, "wishwall_http_request_duration_seconds_sum %.6f\n", float64(snap.RequestDurationTotalNs)/1e9)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
