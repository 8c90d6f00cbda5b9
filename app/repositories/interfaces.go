package repositories

import (
	"time"

	"svyasa/app/models"
)

// PostRepository defines the interface for post data access
type PostRepository interface {
	Create(post *models.Post) error
	GetByID(id string) (*models.Post, error)
	// ListActive returns posts expiring strictly after now, newest first.
	ListActive(now time.Time) ([]*models.Post, error)
	// ListAll returns every stored post, expired ones included, newest first.
	ListAll() ([]*models.Post, error)
	Delete(id string) error
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	Create(comment *models.Comment) error
	// ListByPost returns the post's comments oldest first.
	ListByPost(postID string) ([]*models.Comment, error)
	CountByPost(postID string) (int, error)
	DeleteByPost(postID string) error
}

// SessionRepository stores admin sessions until they expire.
type SessionRepository interface {
	Save(session *models.Session) error
	Get(id string) (*models.Session, error)
	Delete(id string) error
}
