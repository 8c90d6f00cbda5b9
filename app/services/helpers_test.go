package services

import (
	"testing"
	"time"

	"svyasa/app/auth"
	"svyasa/app/repositories/mock"
)

var baseTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	posts       *PostService
	comments    *CommentService
	postRepo    *mock.PostRepository
	commentRepo *mock.CommentRepository
	now         time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		postRepo:    mock.NewPostRepository(nil),
		commentRepo: mock.NewCommentRepository(nil),
		now:         baseTime,
	}
	clock := func() time.Time { return f.now }

	f.posts = NewPostService(f.postRepo, f.commentRepo, nil, nil, 0)
	f.posts.now = clock
	f.comments = NewCommentService(f.commentRepo, f.postRepo, nil, nil)
	f.comments.now = clock
	return f
}

func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func adminSession(now time.Time) *auth.Session {
	return &auth.Session{
		ID:        "session-1",
		Email:     "admin@example.com",
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
	}
}
