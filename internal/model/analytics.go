package model

import "time"

// Named pages tracked by the analytics counters.
const (
	PageHome  = "home"
	PageWish  = "wish"
	PageAdmin = "admin"
)

// DailyTotalKey is the per-day entry holding the sum of that day's page views.
const DailyTotalKey = "total"

// DefaultPages are the page counters present even before any view is recorded.
var DefaultPages = []string{PageHome, PageWish, PageAdmin}

// AnalyticsSnapshot is the persisted form of the analytics counters.
// UniqueVisitorIDs is the serialized (sorted) form of an in-memory set.
type AnalyticsSnapshot struct {
	TotalVisits       int64                       `json:"visits"`
	UniqueVisitorIDs  []string                    `json:"uniqueVisitors"`
	PageViews         map[string]int64            `json:"pageViews"`
	MessagesSubmitted int64                       `json:"messagesSubmitted"`
	LastVisit         *time.Time                  `json:"lastVisit"`
	DailyStats        map[string]map[string]int64 `json:"dailyStats"`
}

// AnalyticsSummary is the derived view shown in the admin dashboard.
type AnalyticsSummary struct {
	TotalVisits       int64                       `json:"totalVisits"`
	UniqueVisitors    int                         `json:"uniqueVisitors"`
	PageViews         map[string]int64            `json:"pageViews"`
	TotalPageViews    int64                       `json:"totalPageViews"`
	MessagesSubmitted int64                       `json:"messagesSubmitted"`
	TodayViews        int64                       `json:"todayViews"`
	TodayPages        map[string]int64            `json:"todayPages"`
	LastVisit         *time.Time                  `json:"lastVisit"`
	DailyStats        map[string]map[string]int64 `json:"dailyStats"`
	EngagementRate    int64                       `json:"engagementRate"`
}
