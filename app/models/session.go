package models

import "time"

// Session is an authenticated admin session. It is acquired at sign-in and
// stops being valid at sign-out or once ExpiresAt passes.
type Session struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Token     string    `json:"-"`
}

// Valid reports whether the session can still authorize actions at now.
func (s *Session) Valid(now time.Time) bool {
	return s != nil && s.ID != "" && now.Before(s.ExpiresAt)
}
