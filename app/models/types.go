package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Post is an anonymous message that stops being listed once ExpiresAt passes.
type Post struct {
	ID         string    `json:"id" validate:"required"`
	Nickname   string    `json:"nickname" validate:"required,max=30"`
	AvatarSeed string    `json:"avatar_seed" validate:"required"`
	Content    string    `json:"content" validate:"required,max=1000"`
	CreatedAt  time.Time `json:"created_at" validate:"required"`
	ExpiresAt  time.Time `json:"expires_at" validate:"required"`
}

// Comment is a reply attached to exactly one post.
type Comment struct {
	ID         string    `json:"id" validate:"required"`
	PostID     string    `json:"post_id" validate:"required"`
	Nickname   string    `json:"nickname" validate:"required,max=30"`
	AvatarSeed string    `json:"avatar_seed" validate:"required"`
	Content    string    `json:"content" validate:"required,max=500"`
	CreatedAt  time.Time `json:"created_at" validate:"required"`
}
