// Package model defines domain entities for the application.
package model

import "time"

// ModerationAction is an admin action applied to a wish.
type ModerationAction string

const (
	ActionApprove ModerationAction = "approve"
	ActionDelete  ModerationAction = "delete"
)

// IsValid checks if the action is one the moderation endpoint understands.
func (a ModerationAction) IsValid() bool {
	return a == ActionApprove || a == ActionDelete
}

// Wish represents a visitor-submitted message.
// The document store is the only source of truth; copies held elsewhere are caches.
type Wish struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Message     string    `json:"message"`
	SubmittedAt time.Time `json:"submittedAt"`
	Approved    bool      `json:"approved"`
}

// Clone returns a copy that can be handed out without sharing the pointer.
func (w *Wish) Clone() *Wish {
	if w == nil {
		return nil
	}
	c := *w
	return &c
}
