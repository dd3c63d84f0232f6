package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/quillpost/quillpost/internal/model"
)

// ErrPostNotFound is returned when a post does not exist for the given owner.
var ErrPostNotFound = errors.New("post not found")

// PostStore keeps posts in process memory, grouped by owner.
// IDs come from a single counter and are never reused, even after Clear.
type PostStore struct {
	mu     sync.RWMutex
	posts  map[string][]model.Post
	nextID int64
	now    func() time.Time
}

// NewPostStore creates an empty PostStore. A nil clock uses time.Now.
func NewPostStore(now func() time.Time) *PostStore {
	if now == nil {
		now = time.Now
	}
	return &PostStore{
		posts: make(map[string][]model.Post),
		now:   now,
	}
}

// AddPost appends a post for userID and returns it with its assigned ID.
func (s *PostStore) AddPost(_ context.Context, userID, text string) (*model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	post := model.Post{
		ID:        s.nextID,
		UserID:    userID,
		Text:      text,
		CreatedAt: s.now().UTC(),
	}
	s.posts[userID] = append(s.posts[userID], post)

	return &post, nil
}

// ListPosts returns a copy of the user's posts in insertion order.
func (s *PostStore) ListPosts(_ context.Context, userID string) ([]*model.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.posts[userID]
	result := make([]*model.Post, len(stored))
	for i := range stored {
		p := stored[i]
		result[i] = &p
	}

	return result, nil
}

// DeletePost removes one of the user's posts.
// Posts owned by another user are reported as not found.
func (s *PostStore) DeletePost(_ context.Context, userID string, postID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.posts[userID]
	for i := range stored {
		if stored[i].ID == postID {
			s.posts[userID] = append(stored[:i:i], stored[i+1:]...)
			if len(s.posts[userID]) == 0 {
				delete(s.posts, userID)
			}
			return nil
		}
	}

	return ErrPostNotFound
}

// Clear removes all posts.
func (s *PostStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.posts = make(map[string][]model.Post)
}
