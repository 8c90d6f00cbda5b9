package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"svyasa/app/avatars"
	"svyasa/app/logger"
	"svyasa/app/metrics"
	"svyasa/app/models"
	"svyasa/app/moderation"
	"svyasa/app/repositories"
	"svyasa/app/timefmt"

	"go.uber.org/zap"
)

var (
	ErrUnauthorized = errors.New("admin session required")
	ErrInvalidInput = errors.New("invalid input")
)

// Order selects how active posts are listed.
type Order string

const (
	OrderRecent   Order = "recent"
	OrderTrending Order = "trending"
)

// ParseOrder maps a query value to an Order. Empty means OrderRecent.
func ParseOrder(s string) (Order, error) {
	switch Order(strings.ToLower(strings.TrimSpace(s))) {
	case "", OrderRecent:
		return OrderRecent, nil
	case OrderTrending:
		return OrderTrending, nil
	}
	return "", fmt.Errorf("%w: unknown order %q", ErrInvalidInput, s)
}

// submission is a trimmed nickname/content pair that passed the length checks.
type submission struct {
	nickname string
	content  string
}

func newSubmission(nickname, content string, maxContent int) (submission, error) {
	sub := submission{
		nickname: strings.TrimSpace(nickname),
		content:  strings.TrimSpace(content),
	}
	switch {
	case sub.nickname == "":
		return sub, fmt.Errorf("%w: nickname is required", ErrInvalidInput)
	case sub.content == "":
		return sub, fmt.Errorf("%w: content is required", ErrInvalidInput)
	case utf8.RuneCountInString(sub.nickname) > models.MaxNicknameLength:
		return sub, fmt.Errorf("%w: nickname is too long (maximum %d characters)", ErrInvalidInput, models.MaxNicknameLength)
	case utf8.RuneCountInString(sub.content) > maxContent:
		return sub, fmt.Errorf("%w: content is too long (maximum %d characters)", ErrInvalidInput, maxContent)
	}
	return sub, nil
}

// screen runs the content filter and records rejections. The matched term is
// logged but never returned.
func screen(ctx context.Context, filter *moderation.Filter, sub submission) error {
	err := filter.ValidateSubmission(sub.nickname, sub.content)
	if err == nil {
		return nil
	}

	var rejection *moderation.RejectionError
	if errors.As(err, &rejection) {
		metrics.ModerationRejectionsTotal.WithLabelValues(string(rejection.Kind)).Inc()

		text := sub.content
		if rejection.Kind == moderation.KindNickname {
			text = sub.nickname
		}
		term, _ := filter.Match(text)
		logger.FromContext(ctx).Info("Submission rejected",
			zap.String("kind", string(rejection.Kind)),
			zap.String("term", term),
		)
	}
	return err
}

// presenter turns stored entities into display views.
type presenter struct {
	avatars *avatars.Mapper
}

func (p presenter) post(post *models.Post, comments int, now time.Time) *models.PostView {
	return &models.PostView{
		Post:          post,
		AvatarURL:     p.avatars.URL(post.AvatarSeed),
		CommentCount:  comments,
		CreatedAgo:    timefmt.RelativeTime(post.CreatedAt, now),
		TimeRemaining: timefmt.TimeRemaining(post.ExpiresAt, now),
		Active:        post.IsActive(now),
	}
}

func (p presenter) comment(comment *models.Comment, now time.Time) *models.CommentView {
	return &models.CommentView{
		Comment:    comment,
		AvatarURL:  p.avatars.URL(comment.AvatarSeed),
		CreatedAgo: timefmt.RelativeTime(comment.CreatedAt, now),
	}
}

func (p presenter) comments(comments []*models.Comment, now time.Time) []*models.CommentView {
	views := make([]*models.CommentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, p.comment(c, now))
	}
	return views
}

// activePost loads a post and reports expired ones as repositories.ErrNotFound.
func activePost(posts repositories.PostRepository, id string, now time.Time) (*models.Post, error) {
	post, err := posts.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get post %s: %w", id, err)
	}
	if !post.IsActive(now) {
		return nil, repositories.ErrNotFound
	}
	return post, nil
}
