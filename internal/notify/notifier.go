package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/wishwall/wishwall/internal/metrics"
	"github.com/wishwall/wishwall/internal/model"
)

// EventWishSubmitted is sent when a visitor submits a wish.
const EventWishSubmitted = "wish.submitted"

// DefaultQueueSize bounds pending notifications held in memory.
const DefaultQueueSize = 64

// Event is the JSON body of a notification.
type Event struct {
	Type      string    `json:"eventType"`
	ID        string    `json:"eventId"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// WishSubmittedData is the payload of EventWishSubmitted.
type WishSubmittedData struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Message     string    `json:"message"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// Config configures a Notifier.
type Config struct {
	TargetURL   string
	Secret      string
	MaxAttempts int
	QueueSize   int
	Client      *http.Client
	// Backoff returns the wait after a failed attempt. Defaults to NextRetryDelay.
	Backoff func(attempt int) time.Duration
}

type delivery struct {
	id        string
	eventType string
	body      []byte
}

// Notifier queues events and delivers them from a single worker.
// Delivery is best effort: a full queue drops the event.
type Notifier struct {
	cfg     Config
	queue   chan delivery
	metrics metrics.Recorder
	now     func() time.Time
	logger  *slog.Logger
}

// New creates a Notifier. Run must be started for events to be delivered.
func New(cfg Config, recorder metrics.Recorder, now func() time.Time, logger *slog.Logger) *Notifier {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	if cfg.Client == nil {
		cfg.Client = NewHTTPClient()
	}
	if cfg.Backoff == nil {
		cfg.Backoff = NextRetryDelay
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		cfg:     cfg,
		queue:   make(chan delivery, cfg.QueueSize),
		metrics: recorder,
		now:     now,
		logger:  logger.With("component", "notify", "target_host", ExtractHost(cfg.TargetURL)),
	}
}

// WishSubmitted queues a wish.submitted event. It never blocks.
func (n *Notifier) WishSubmitted(_ context.Context, wish *model.Wish) {
	n.publish(Event{
		Type:      EventWishSubmitted,
		ID:        wish.ID,
		Timestamp: n.now().UTC(),
		Data: WishSubmittedData{
			ID:          wish.ID,
			Name:        wish.Name,
			Message:     wish.Message,
			SubmittedAt: wish.SubmittedAt,
		},
	})
}

func (n *Notifier) publish(ev Event) {
	body, err := json.Marshal(ev)
	if err != nil {
		n.logger.Error("failed to encode notification", "event_id", ev.ID, "error", err)
		return
	}

	d := delivery{id: ulid.Make().String(), eventType: ev.Type, body: body}
	select {
	case n.queue <- d:
	default:
		n.metrics.IncNotification(metrics.NotifyDropped)
		n.logger.Warn("notification queue full, dropping event", "event_id", ev.ID)
	}
}

// Run delivers queued events until ctx is cancelled.
func (n *Notifier) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case d := <-n.queue:
			n.deliverWithRetry(ctx, d)
		}
	}
}

func (n *Notifier) deliverWithRetry(ctx context.Context, d delivery) {
	for attempt := 0; ; attempt++ {
		status, err := n.send(ctx, d)
		if err == nil {
			n.metrics.IncNotification(metrics.NotifyDelivered)
			n.logger.Info("notification delivered",
				"delivery_id", d.id,
				"http_status", status,
				"attempt", attempt+1,
			)
			return
		}

		exhausted := IsExhausted(attempt+1, n.cfg.MaxAttempts)
		n.logger.Warn("notification delivery failed",
			"delivery_id", d.id,
			"attempt", attempt+1,
			"exhausted", exhausted,
			"error", err,
		)
		if exhausted {
			n.metrics.IncNotification(metrics.NotifyFailed)
			return
		}
		n.metrics.IncNotification(metrics.NotifyRetried)

		timer := time.NewTimer(n.cfg.Backoff(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (n *Notifier) send(ctx context.Context, d delivery) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.TargetURL, bytes.NewReader(d.body))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	timestamp := n.now().Unix()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Wishwall-Notify/1.0")
	req.Header.Set(HeaderSignature, Sign(n.cfg.Secret, timestamp, d.body))
	req.Header.Set(HeaderTimestamp, strconv.FormatInt(timestamp, 10))
	req.Header.Set(HeaderDeliveryID, d.id)
	req.Header.Set(HeaderEvent, d.eventType)

	resp, err := n.cfg.Client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return resp.StatusCode, nil
}
