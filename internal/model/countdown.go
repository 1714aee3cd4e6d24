package model

import "time"

// CountdownState is the countdown's two-state lifecycle.
type CountdownState string

const (
	CountdownLocked   CountdownState = "LOCKED"
	CountdownUnlocked CountdownState = "UNLOCKED"
)

// CountdownConfig is the persisted countdown and theme singleton.
type CountdownConfig struct {
	TargetDate   time.Time `json:"targetDate"`
	IsUnlocked   bool      `json:"isUnlocked"`
	MusicEnabled bool      `json:"musicEnabled"`
}

// Remaining is a duration broken into display units.
type Remaining struct {
	Days    int64 `json:"days"`
	Hours   int64 `json:"hours"`
	Minutes int64 `json:"minutes"`
	Seconds int64 `json:"seconds"`
}

// SplitRemaining breaks d into days, hours, minutes and seconds.
// Non-positive durations yield all zeros.
func SplitRemaining(d time.Duration) Remaining {
	if d <= 0 {
		return Remaining{}
	}
	total := int64(d / time.Second)
	return Remaining{
		Days:    total / 86400,
		Hours:   (total % 86400) / 3600,
		Minutes: (total % 3600) / 60,
		Seconds: total % 60,
	}
}

// CountdownSnapshot is the read view of the countdown.
type CountdownSnapshot struct {
	State        CountdownState `json:"state"`
	TargetDate   time.Time      `json:"targetDate"`
	IsUnlocked   bool           `json:"isUnlocked"`
	MusicEnabled bool           `json:"musicEnabled"`
	Remaining    Remaining      `json:"remaining"`
}
