package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/quillpost/quillpost/internal/cache"
	"github.com/quillpost/quillpost/internal/metrics"
	"github.com/quillpost/quillpost/internal/model"
	"github.com/quillpost/quillpost/internal/repository"
)

// Post service errors.
var (
	ErrPostNotFound    = errors.New("post not found")
	ErrInvalidPostText = errors.New("post text must not be empty")
)

// PostStore persists posts per owner.
type PostStore interface {
	AddPost(ctx context.Context, userID, text string) (*model.Post, error)
	ListPosts(ctx context.Context, userID string) ([]*model.Post, error)
	DeletePost(ctx context.Context, userID string, postID int64) error
}

// PostCache caches a user's post list.
// GetPosts returns cache.ErrCacheMiss when nothing is cached. SetPosts
// returns cache.ErrStaleGeneration when the list was invalidated after
// PostsGeneration was read.
type PostCache interface {
	GetPosts(ctx context.Context, userID string) ([]*model.Post, error)
	PostsGeneration(ctx context.Context, userID string) (int64, error)
	SetPosts(ctx context.Context, userID string, generation int64, posts []*model.Post) error
	InvalidatePosts(ctx context.Context, userID string) error
}

// PostService handles post business logic.
type PostService struct {
	store   PostStore
	cache   PostCache
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewPostService creates a new PostService.
func NewPostService(store PostStore, postCache PostCache, logger *slog.Logger, recorder metrics.Recorder) *PostService {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &PostService{
		store:   store,
		cache:   postCache,
		logger:  logger,
		metrics: recorder,
	}
}

// AddPost stores a new post for the user.
func (s *PostService) AddPost(ctx context.Context, userID, text string) (*model.Post, error) {
	if text == "" {
		return nil, ErrInvalidPostText
	}

	post, err := s.store.AddPost(ctx, userID, text)
	if err != nil {
		return nil, fmt.Errorf("add post: %w", err)
	}

	s.metrics.IncPostCreated()
	s.invalidate(ctx, userID)

	return post, nil
}

// ListPosts returns the user's posts, oldest first.
// Results are served from the cache when present.
func (s *PostService) ListPosts(ctx context.Context, userID string) ([]*model.Post, error) {
	cached, err := s.cache.GetPosts(ctx, userID)
	if err == nil {
		s.metrics.IncPostsCacheHit()
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		// Redis error - serve from the store without caching
		s.logger.Warn("posts cache read failed", "error", err)
		return s.listFromStore(ctx, userID)
	}
	s.metrics.IncPostsCacheMiss()

	// The generation must be read before the store so a concurrent write
	// between the two makes SetPosts discard this list.
	gen, err := s.cache.PostsGeneration(ctx, userID)
	if err != nil {
		s.logger.Warn("posts cache read failed", "error", err)
		return s.listFromStore(ctx, userID)
	}

	posts, err := s.listFromStore(ctx, userID)
	if err != nil {
		return nil, err
	}

	switch err := s.cache.SetPosts(ctx, userID, gen, posts); {
	case err == nil:
	case errors.Is(err, cache.ErrStaleGeneration):
		s.logger.Debug("posts cache write skipped", "user_id", userID, "reason", "invalidated")
	default:
		s.logger.Warn("posts cache write failed", "error", err)
	}

	return posts, nil
}

// DeletePost removes one of the user's posts.
func (s *PostService) DeletePost(ctx context.Context, userID string, postID int64) error {
	if err := s.store.DeletePost(ctx, userID, postID); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return ErrPostNotFound
		}
		return fmt.Errorf("delete post: %w", err)
	}

	s.metrics.IncPostDeleted()
	s.invalidate(ctx, userID)

	return nil
}

func (s *PostService) listFromStore(ctx context.Context, userID string) ([]*model.Post, error) {
	posts, err := s.store.ListPosts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func (s *PostService) invalidate(ctx context.Context, userID string) {
	if err := s.cache.InvalidatePosts(ctx, userID); err != nil {
		s.logger.Warn("posts cache invalidation failed", "error", err)
	}
}
