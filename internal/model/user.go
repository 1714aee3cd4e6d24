// Package model defines domain entities for the application.
package model

import "time"

// User is the identity payload returned by the identity provider for the admin.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// AdminSession is the persisted state of the single admin's session.
// IsAuthenticated implies SessionExpiry is set and in the future.
type AdminSession struct {
	IsAuthenticated    bool       `json:"isAuthenticated"`
	User               *User      `json:"user"`
	SessionToken       string     `json:"sessionToken,omitempty"`
	SessionExpiry      *time.Time `json:"sessionExpiry"`
	LoginAttempts      int        `json:"loginAttempts"`
	LastLoginAttemptAt *time.Time `json:"lastLoginAttempt"`
}

// ClearAuth drops the authenticated state but keeps the rate-limit counters.
func (s *AdminSession) ClearAuth() {
	s.IsAuthenticated = false
	s.User = nil
	s.SessionToken = ""
	s.SessionExpiry = nil
}
