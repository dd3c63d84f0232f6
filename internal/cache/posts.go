package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quillpost/quillpost/internal/model"
)

const (
	postsKeyPrefix = "posts:user:"
	postsGenSuffix = ":gen"

	// DefaultPostTTL is the lifetime of a cached post list.
	DefaultPostTTL = 5 * time.Minute
)

var (
	// ErrCacheMiss is returned when no cached value exists.
	ErrCacheMiss = errors.New("cache miss")
	// ErrStaleGeneration is returned by SetPosts when the list was
	// invalidated after the caller read its generation.
	ErrStaleGeneration = errors.New("posts cache generation changed")
)

// cachedPost is the stored form of a post; the owner is implied by the key.
type cachedPost struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

func postsKey(userID string) string {
	return postsKeyPrefix + userID
}

// postsGenKey holds a counter bumped by every invalidation. It has no TTL
// so a reset can never make an old generation current again.
func postsGenKey(userID string) string {
	return postsKeyPrefix + userID + postsGenSuffix
}

// PostsGeneration returns the user's current invalidation counter.
// Read it before loading the list from the store and pass it to SetPosts.
func (c *Cache) PostsGeneration(ctx context.Context, userID string) (int64, error) {
	gen, err := c.client.Get(ctx, postsGenKey(userID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("redis get posts generation: %w", err)
	}
	return gen, nil
}

// GetPosts returns the cached post list for a user, or ErrCacheMiss.
// A corrupted entry is treated as a miss.
func (c *Cache) GetPosts(ctx context.Context, userID string) ([]*model.Post, error) {
	data, err := c.client.Get(ctx, postsKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get posts: %w", err)
	}

	var cached []cachedPost
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, ErrCacheMiss
	}

	posts := make([]*model.Post, len(cached))
	for i, p := range cached {
		posts[i] = &model.Post{
			ID:        p.ID,
			UserID:    userID,
			Text:      p.Text,
			CreatedAt: p.CreatedAt,
		}
	}

	return posts, nil
}

// SetPosts caches a user's post list for the configured TTL, but only if
// no invalidation happened since generation was read. Otherwise it writes
// nothing and returns ErrStaleGeneration.
func (c *Cache) SetPosts(ctx context.Context, userID string, generation int64, posts []*model.Post) error {
	cached := make([]cachedPost, len(posts))
	for i, p := range posts {
		cached[i] = cachedPost{ID: p.ID, Text: p.Text, CreatedAt: p.CreatedAt}
	}

	data, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("marshal posts: %w", err)
	}

	genKey := postsGenKey(userID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("redis get posts generation: %w", err)
		}
		if current != generation {
			return ErrStaleGeneration
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, postsKey(userID), data, c.postTTL)
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrStaleGeneration), errors.Is(err, redis.TxFailedErr):
		return ErrStaleGeneration
	default:
		return fmt.Errorf("failed to cache posts: %w", err)
	}
}

// InvalidatePosts drops the cached post list for a user and bumps its
// generation so in-flight SetPosts calls with an older one are discarded.
func (c *Cache) InvalidatePosts(ctx context.Context, userID string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, postsGenKey(userID))
		pipe.Del(ctx, postsKey(userID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate posts: %w", err)
	}
	return nil
}
