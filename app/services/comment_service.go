package services

import (
	"context"
	"fmt"
	"time"

	"svyasa/app/avatars"
	"svyasa/app/logger"
	"svyasa/app/metrics"
	"svyasa/app/models"
	"svyasa/app/moderation"
	"svyasa/app/repositories"
)

// CommentService handles business logic for comments
type CommentService struct {
	commentRepo repositories.CommentRepository
	postRepo    repositories.PostRepository
	filter      *moderation.Filter
	present     presenter
	now         func() time.Time
}

// NewCommentService creates a new CommentService. A nil filter or mapper
// falls back to the defaults.
func NewCommentService(
	commentRepo repositories.CommentRepository,
	postRepo repositories.PostRepository,
	filter *moderation.Filter,
	mapper *avatars.Mapper,
) *CommentService {
	if filter == nil {
		filter = moderation.NewDefaultFilter()
	}
	if mapper == nil {
		mapper = avatars.NewMapper(avatars.DefaultBaseURL)
	}
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		filter:      filter,
		present:     presenter{avatars: mapper},
		now:         time.Now,
	}
}

// CreateComment screens and stores a comment on an active post.
func (s *CommentService) CreateComment(ctx context.Context, postID, nickname, content string) (*models.CommentView, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sub, err := newSubmission(nickname, content, models.MaxCommentLength)
	if err != nil {
		return nil, err
	}
	if err := screen(ctx, s.filter, sub); err != nil {
		return nil, err
	}

	now := s.now()
	post, err := activePost(s.postRepo, postID, now)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Nickname:   sub.nickname,
		AvatarSeed: avatars.NewSeed(),
		Content:    sub.content,
	}
	if err := comment.SetPost(post); err != nil {
		return nil, err
	}
	comment.BeforeCreate(now)
	if err := comment.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.commentRepo.Create(comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	metrics.CommentsCreatedTotal.Inc()
	logger.FromContext(ctx).Debug("Comment created", logger.WithPostID(postID))

	return s.present.comment(comment, now), nil
}

// ListComments returns the comments of an active post, oldest first.
func (s *CommentService) ListComments(ctx context.Context, postID string) ([]*models.CommentView, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := s.now()
	if _, err := activePost(s.postRepo, postID, now); err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListByPost(postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return s.present.comments(comments, now), nil
}

// CountComments returns how many comments a post has.
func (s *CommentService) CountComments(ctx context.Context, postID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	count, err := s.commentRepo.CountByPost(postID)
	if err != nil {
		return 0, fmt.Errorf("failed to count comments: %w", err)
	}
	return count, nil
}
