package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"svyasa/app/auth"
	"svyasa/app/avatars"
	"svyasa/app/logger"
	"svyasa/app/metrics"
	"svyasa/app/models"
	"svyasa/app/moderation"
	"svyasa/app/repositories"

	"go.uber.org/zap"
)

// PostService handles business logic for posts
type PostService struct {
	postRepo    repositories.PostRepository
	commentRepo repositories.CommentRepository
	filter      *moderation.Filter
	present     presenter
	lifetime    time.Duration
	now         func() time.Time
}

// NewPostService creates a new PostService. A nil filter or mapper falls back
// to the built-in term list and avatar host; a non-positive lifetime to
// models.DefaultLifetime.
func NewPostService(
	postRepo repositories.PostRepository,
	commentRepo repositories.CommentRepository,
	filter *moderation.Filter,
	mapper *avatars.Mapper,
	lifetime time.Duration,
) *PostService {
	if filter == nil {
		filter = moderation.NewDefaultFilter()
	}
	if mapper == nil {
		mapper = avatars.NewMapper(avatars.DefaultBaseURL)
	}
	if lifetime <= 0 {
		lifetime = models.DefaultLifetime
	}
	return &PostService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		filter:      filter,
		present:     presenter{avatars: mapper},
		lifetime:    lifetime,
		now:         time.Now,
	}
}

// CreatePost screens and stores a new post. Nothing is written when the
// filter rejects the submission.
func (s *PostService) CreatePost(ctx context.Context, nickname, content string) (*models.PostView, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sub, err := newSubmission(nickname, content, models.MaxPostLength)
	if err != nil {
		return nil, err
	}
	if err := screen(ctx, s.filter, sub); err != nil {
		return nil, err
	}

	post := &models.Post{
		Nickname:   sub.nickname,
		AvatarSeed: avatars.NewSeed(),
		Content:    sub.content,
	}
	now := s.now()
	post.BeforeCreate(now, s.lifetime)
	if err := post.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.postRepo.Create(post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	metrics.PostsCreatedTotal.Inc()
	logger.FromContext(ctx).Debug("Post created", logger.WithPostID(post.ID))

	return s.present.post(post, 0, now), nil
}

// ListActivePosts returns posts that have not expired at now, with their
// comment counts. OrderTrending sorts by comment count and keeps recency
// among equal counts.
func (s *PostService) ListActivePosts(ctx context.Context, now time.Time, order Order) ([]*models.PostView, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	posts, err := s.postRepo.ListActive(now)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	views, err := s.withCounts(posts, now)
	if err != nil {
		return nil, err
	}

	if order == OrderTrending {
		sort.SliceStable(views, func(i, j int) bool {
			return views[i].CommentCount > views[j].CommentCount
		})
	}
	return views, nil
}

// GetPost returns an active post and its comments. Expired posts are
// reported as repositories.ErrNotFound.
func (s *PostService) GetPost(ctx context.Context, id string, now time.Time) (*models.PostDetail, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	post, err := activePost(s.postRepo, id, now)
	if err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListByPost(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}

	return &models.PostDetail{
		PostView: s.present.post(post, len(comments), now),
		Comments: s.present.comments(comments, now),
	}, nil
}

// DeletePost removes a post and all its comments. It requires a live admin
// session.
func (s *PostService) DeletePost(ctx context.Context, session *auth.Session, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !session.Valid(s.now()) {
		return ErrUnauthorized
	}

	if _, err := s.postRepo.GetByID(id); err != nil {
		return fmt.Errorf("failed to get post %s: %w", id, err)
	}

	if err := s.commentRepo.DeleteByPost(id); err != nil {
		return fmt.Errorf("failed to delete comments: %w", err)
	}
	if err := s.postRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete post %s: %w", id, err)
	}
	// A comment accepted while the post still existed can land after the
	// first sweep. Once the post is gone no new comment can pass activePost.
	if err := s.commentRepo.DeleteByPost(id); err != nil {
		return fmt.Errorf("failed to delete late comments: %w", err)
	}

	metrics.PostsDeletedTotal.Inc()
	logger.FromContext(ctx).Info("Post deleted",
		logger.WithPostID(id),
		zap.String("admin", session.Email),
	)
	return nil
}

// AdminDashboard lists every post, expired ones included, with totals.
func (s *PostService) AdminDashboard(ctx context.Context, session *auth.Session, now time.Time) (*models.Dashboard, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !session.Valid(now) {
		return nil, ErrUnauthorized
	}

	posts, err := s.postRepo.ListAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	views, err := s.withCounts(posts, now)
	if err != nil {
		return nil, err
	}

	dashboard := &models.Dashboard{Posts: views}
	for _, v := range views {
		dashboard.Stats.TotalPosts++
		dashboard.Stats.TotalComments += v.CommentCount
		if v.Active {
			dashboard.Stats.ActivePosts++
		}
	}
	return dashboard, nil
}

func (s *PostService) withCounts(posts []*models.Post, now time.Time) ([]*models.PostView, error) {
	views := make([]*models.PostView, 0, len(posts))
	for _, post := range posts {
		count, err := s.commentRepo.CountByPost(post.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count comments for post %s: %w", post.ID, err)
		}
		views = append(views, s.present.post(post, count, now))
	}
	return views, nil
}
