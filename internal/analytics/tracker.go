// Package analytics keeps the site's visit, page view and submission counters.
package analytics

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/wishwall/wishwall/internal/model"
	"github.com/wishwall/wishwall/internal/statestore"
)

const dateLayout = "2006-01-02"

// Tracker is the analytics singleton. Safe for concurrent use.
// Counters only grow, except through Reset.
type Tracker struct {
	mu          sync.Mutex
	totalVisits int64
	visitors    map[string]struct{}
	pageViews   map[string]int64
	messages    int64
	lastVisit   *time.Time
	daily       map[string]map[string]int64

	enabled bool
	store   statestore.Store
	now     func() time.Time
	loc     *time.Location
	logger  *slog.Logger
}

// Options configures a Tracker.
type Options struct {
	Enabled bool
	// Location decides which calendar day a view belongs to.
	Location *time.Location
}

// New restores the counters from store.
func New(ctx context.Context, store statestore.Store, opts Options, now func() time.Time, logger *slog.Logger) *Tracker {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	t := &Tracker{
		enabled: opts.Enabled,
		store:   store,
		now:     now,
		loc:     loc,
		logger:  logger.With("component", "analytics"),
	}
	t.resetLocked()

	var snap model.AnalyticsSnapshot
	found, err := store.Load(ctx, statestore.AnalyticsKey, &snap)
	switch {
	case err != nil:
		t.logger.Warn("discarding unreadable analytics state", "error", err)
	case found:
		t.restore(snap)
	}

	return t
}

// Enabled reports whether tracking calls record anything.
func (t *Tracker) Enabled() bool {
	return t.enabled
}

// TrackPageView counts a view of page for today. Unknown pages are
// recorded under their own name. The name reserved for the daily total is
// ignored.
func (t *Tracker) TrackPageView(ctx context.Context, page string) {
	if !t.enabled || page == "" {
		return
	}
	if page == model.DailyTotalKey {
		t.logger.Debug("ignoring page view with reserved name", "page", page)
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.pageViews[page]++

	day := t.today()
	stats, ok := t.daily[day]
	if !ok {
		stats = make(map[string]int64)
		t.daily[day] = stats
	}
	stats[page]++
	stats[model.DailyTotalKey]++

	t.persist(ctx)
}

// TrackVisitor records a visitor session. It reports true the first time
// an id is seen; repeated ids change nothing.
func (t *Tracker) TrackVisitor(ctx context.Context, sessionID string) bool {
	if !t.enabled || sessionID == "" {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, seen := t.visitors[sessionID]; seen {
		return false
	}

	t.visitors[sessionID] = struct{}{}
	t.totalVisits++
	now := t.now().UTC()
	t.lastVisit = &now

	t.persist(ctx)
	return true
}

// TrackMessageSubmission counts one successfully stored wish.
func (t *Tracker) TrackMessageSubmission(ctx context.Context) {
	if !t.enabled {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.messages++
	t.persist(ctx)
}

// Summary derives the dashboard view.
func (t *Tracker) Summary() model.AnalyticsSummary {
	t.mu.Lock()
	defer t.mu.Unlock()

	var totalViews int64
	for _, n := range t.pageViews {
		totalViews += n
	}

	todayPages := make(map[string]int64)
	var todayViews int64
	for page, n := range t.daily[t.today()] {
		if page == model.DailyTotalKey {
			todayViews = n
			continue
		}
		todayPages[page] = n
	}

	var engagement int64
	if t.totalVisits > 0 {
		engagement = int64(math.Round(float64(t.messages) / float64(t.totalVisits) * 100))
	}

	return model.AnalyticsSummary{
		TotalVisits:       t.totalVisits,
		UniqueVisitors:    len(t.visitors),
		PageViews:         copyCounts(t.pageViews),
		TotalPageViews:    totalViews,
		MessagesSubmitted: t.messages,
		TodayViews:        todayViews,
		TodayPages:        todayPages,
		LastVisit:         copyTime(t.lastVisit),
		DailyStats:        copyDaily(t.daily),
		EngagementRate:    engagement,
	}
}

// Reset zeroes every counter at once.
func (t *Tracker) Reset(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.resetLocked()
	t.persist(ctx)
	t.logger.Info("analytics reset")
}

// Snapshot returns the persisted form. Visitor ids are sorted.
func (t *Tracker) Snapshot() model.AnalyticsSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.snapshotLocked()
}

func (t *Tracker) snapshotLocked() model.AnalyticsSnapshot {
	ids := make([]string, 0, len(t.visitors))
	for id := range t.visitors {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return model.AnalyticsSnapshot{
		TotalVisits:       t.totalVisits,
		UniqueVisitorIDs:  ids,
		PageViews:         copyCounts(t.pageViews),
		MessagesSubmitted: t.messages,
		LastVisit:         copyTime(t.lastVisit),
		DailyStats:        copyDaily(t.daily),
	}
}

func (t *Tracker) restore(snap model.AnalyticsSnapshot) {
	t.totalVisits = snap.TotalVisits
	for _, id := range snap.UniqueVisitorIDs {
		t.visitors[id] = struct{}{}
	}
	for page, n := range snap.PageViews {
		t.pageViews[page] = n
	}
	t.messages = snap.MessagesSubmitted
	t.lastVisit = copyTime(snap.LastVisit)
	if snap.DailyStats != nil {
		t.daily = copyDaily(snap.DailyStats)
	}
}

func (t *Tracker) resetLocked() {
	t.totalVisits = 0
	t.visitors = make(map[string]struct{})
	t.pageViews = make(map[string]int64, len(model.DefaultPages))
	for _, page := range model.DefaultPages {
		t.pageViews[page] = 0
	}
	t.messages = 0
	t.lastVisit = nil
	t.daily = make(map[string]map[string]int64)
}

func (t *Tracker) today() string {
	return t.now().In(t.loc).Format(dateLayout)
}

// persist writes the analytics blob. Must hold t.mu.
func (t *Tracker) persist(ctx context.Context) {
	if err := t.store.Save(ctx, statestore.AnalyticsKey, t.snapshotLocked()); err != nil {
		t.logger.Error("persist analytics failed", "error", err)
	}
}

func copyCounts(in map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copyDaily(in map[string]map[string]int64) map[string]map[string]int64 {
	out := make(map[string]map[string]int64, len(in))
	for day, counts := range in {
		out[day] = copyCounts(counts)
	}
	return out
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
