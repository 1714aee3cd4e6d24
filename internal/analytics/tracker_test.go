package analytics

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/wishwall/wishwall/internal/model"
	"github.com/wishwall/wishwall/internal/statestore"
	"github.com/wishwall/wishwall/internal/testutil"
)

func newTestTracker(t *testing.T, enabled bool) (*Tracker, *testutil.FixedClock, *statestore.Memory) {
	t.Helper()

	clock := testutil.NewFixedClock(time.Date(2025, 6, 26, 10, 0, 0, 0, time.UTC))
	store := statestore.NewMemory()
	tr := New(context.Background(), store, Options{Enabled: enabled, Location: time.UTC}, clock.Now, testutil.DiscardLogger())
	return tr, clock, store
}

func TestTracker_TrackVisitorOnce(t *testing.T) {
	t.Parallel()

	tr, _, _ := newTestTracker(t, true)
	ctx := context.Background()

	if !tr.TrackVisitor(ctx, "visitor-1") {
		t.Error("first sighting should be new")
	}
	if tr.TrackVisitor(ctx, "visitor-1") {
		t.Error("second sighting should not be new")
	}
	tr.TrackVisitor(ctx, "visitor-2")

	s := tr.Summary()
	if s.TotalVisits != 2 || s.UniqueVisitors != 2 {
		t.Errorf("visits = %d unique = %d, want 2 and 2", s.TotalVisits, s.UniqueVisitors)
	}
	if s.LastVisit == nil {
		t.Error("LastVisit should be recorded")
	}
}

func TestTracker_TrackPageView(t *testing.T) {
	t.Parallel()

	tr, clock, _ := newTestTracker(t, true)
	ctx := context.Background()

	tr.TrackPageView(ctx, model.PageHome)
	tr.TrackPageView(ctx, model.PageHome)
	tr.TrackPageView(ctx, model.PageWish)
	tr.TrackPageView(ctx, "gallery")

	s := tr.Summary()
	if s.PageViews[model.PageHome] != 2 || s.PageViews[model.PageWish] != 1 || s.PageViews["gallery"] != 1 {
		t.Errorf("unexpected page views: %v", s.PageViews)
	}
	if s.PageViews[model.PageAdmin] != 0 {
		t.Errorf("admin counter should be seeded at zero: %v", s.PageViews)
	}
	if s.TotalPageViews != 4 || s.TodayViews != 4 {
		t.Errorf("TotalPageViews = %d TodayViews = %d, want 4 and 4", s.TotalPageViews, s.TodayViews)
	}
	if s.TodayPages[model.PageHome] != 2 {
		t.Errorf("TodayPages = %v", s.TodayPages)
	}
	if _, ok := s.TodayPages[model.DailyTotalKey]; ok {
		t.Error("TodayPages should not include the daily total")
	}

	clock.Advance(24 * time.Hour)
	tr.TrackPageView(ctx, model.PageAdmin)

	s = tr.Summary()
	if s.TodayViews != 1 {
		t.Errorf("TodayViews on a new day = %d, want 1", s.TodayViews)
	}
	if got := s.DailyStats["2025-06-26"][model.DailyTotalKey]; got != 4 {
		t.Errorf("previous day total = %d, want 4", got)
	}
	if got := s.DailyStats["2025-06-27"][model.PageAdmin]; got != 1 {
		t.Errorf("new day admin views = %d, want 1", got)
	}
}

func TestTracker_TrackPageViewReservedName(t *testing.T) {
	t.Parallel()

	tr, _, _ := newTestTracker(t, true)
	ctx := context.Background()

	tr.TrackPageView(ctx, model.DailyTotalKey)
	tr.TrackPageView(ctx, model.PageHome)

	s := tr.Summary()
	if s.TodayViews != 1 {
		t.Errorf("TodayViews = %d, want 1", s.TodayViews)
	}
	if s.TotalPageViews != 1 {
		t.Errorf("TotalPageViews = %d, want 1", s.TotalPageViews)
	}
	if _, ok := s.PageViews[model.DailyTotalKey]; ok {
		t.Errorf("reserved name leaked into page views: %v", s.PageViews)
	}
}

func TestTracker_EngagementRate(t *testing.T) {
	t.Parallel()

	tr, _, _ := newTestTracker(t, true)
	ctx := context.Background()

	if got := tr.Summary().EngagementRate; got != 0 {
		t.Errorf("EngagementRate with no visits = %d, want 0", got)
	}

	for _, id := range []string{"a", "b", "c"} {
		tr.TrackVisitor(ctx, id)
	}
	tr.TrackMessageSubmission(ctx)
	tr.TrackMessageSubmission(ctx)

	// 2/3 = 66.7% rounds to 67.
	if got := tr.Summary().EngagementRate; got != 67 {
		t.Errorf("EngagementRate = %d, want 67", got)
	}
}

func TestTracker_PersistsVisitorsAsSortedList(t *testing.T) {
	t.Parallel()

	tr, clock, store := newTestTracker(t, true)
	ctx := context.Background()

	tr.TrackVisitor(ctx, "zeta")
	tr.TrackVisitor(ctx, "alpha")
	tr.TrackPageView(ctx, model.PageWish)
	tr.TrackMessageSubmission(ctx)

	raw, ok := store.Raw(statestore.AnalyticsKey)
	if !ok {
		t.Fatal("analytics should be persisted")
	}
	var snap model.AnalyticsSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(snap.UniqueVisitorIDs) != 2 || snap.UniqueVisitorIDs[0] != "alpha" || snap.UniqueVisitorIDs[1] != "zeta" {
		t.Errorf("UniqueVisitorIDs = %v, want [alpha zeta]", snap.UniqueVisitorIDs)
	}

	restored := New(ctx, store, Options{Enabled: true, Location: time.UTC}, clock.Now, testutil.DiscardLogger())
	if restored.TrackVisitor(ctx, "alpha") {
		t.Error("restored tracker should remember visitor ids")
	}
	s := restored.Summary()
	if s.TotalVisits != 2 || s.MessagesSubmitted != 1 || s.PageViews[model.PageWish] != 1 {
		t.Errorf("restored summary mismatch: %+v", s)
	}
}

func TestTracker_Reset(t *testing.T) {
	t.Parallel()

	tr, _, _ := newTestTracker(t, true)
	ctx := context.Background()

	tr.TrackVisitor(ctx, "a")
	tr.TrackPageView(ctx, model.PageHome)
	tr.TrackMessageSubmission(ctx)

	tr.Reset(ctx)

	s := tr.Summary()
	if s.TotalVisits != 0 || s.UniqueVisitors != 0 || s.MessagesSubmitted != 0 || s.TotalPageViews != 0 {
		t.Errorf("Reset should zero everything: %+v", s)
	}
	if s.LastVisit != nil || len(s.DailyStats) != 0 {
		t.Errorf("Reset should clear lastVisit and daily stats: %+v", s)
	}
	for _, page := range model.DefaultPages {
		if _, ok := s.PageViews[page]; !ok {
			t.Errorf("page %q should be re-seeded after reset", page)
		}
	}
	if !tr.TrackVisitor(ctx, "a") {
		t.Error("visitor ids should be forgotten after reset")
	}
}

func TestTracker_Disabled(t *testing.T) {
	t.Parallel()

	tr, _, store := newTestTracker(t, false)
	ctx := context.Background()

	tr.TrackVisitor(ctx, "a")
	tr.TrackPageView(ctx, model.PageHome)
	tr.TrackMessageSubmission(ctx)

	s := tr.Summary()
	if s.TotalVisits != 0 || s.TotalPageViews != 0 || s.MessagesSubmitted != 0 {
		t.Errorf("disabled tracker should record nothing: %+v", s)
	}
	if _, ok := store.Raw(statestore.AnalyticsKey); ok {
		t.Error("disabled tracker should not write state")
	}
}

func TestPageFromPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want string
	}{
		{"/", model.PageHome},
		{"", model.PageHome},
		{"/wish", model.PageWish},
		{"/wish/thanks", model.PageWish},
		{"/admin", model.PageAdmin},
		{"/admin/dashboard", model.PageAdmin},
		{"/about", model.PageHome},
	}

	for _, tt := range tests {
		if got := PageFromPath(tt.path); got != tt.want {
			t.Errorf("PageFromPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
