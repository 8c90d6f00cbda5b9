package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// DefaultLifetime is how long a post stays in active listings.
const DefaultLifetime = 24 * time.Hour

// Validate checks if the post meets all validation requirements
func (p *Post) Validate() error {
	if err := validate.Struct(p); err != nil {
		return err
	}

	if !p.ExpiresAt.After(p.CreatedAt) {
		return errors.New("expires_at must be after created_at")
	}

	return nil
}

// BeforeCreate assigns the identifier and the creation and expiry timestamps.
func (p *Post) BeforeCreate(now time.Time, lifetime time.Duration) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if lifetime <= 0 {
		lifetime = DefaultLifetime
	}
	p.CreatedAt = now.UTC()
	p.ExpiresAt = p.CreatedAt.Add(lifetime)
}

// IsActive reports whether the post is still listed at now.
func (p *Post) IsActive(now time.Time) bool {
	return p.ExpiresAt.After(now)
}
