package dto

import (
	"time"

	"github.com/quillpost/quillpost/internal/model"
)

// CreatePostRequest represents the request body for creating a post.
type CreatePostRequest struct {
	Text string `json:"text" validate:"min=1"`
}

// PostResponse represents a post in API responses.
type PostResponse struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// ToPostResponse converts a Post model to PostResponse DTO.
func ToPostResponse(p *model.Post) *PostResponse {
	return &PostResponse{
		ID:        p.ID,
		Text:      p.Text,
		CreatedAt: p.CreatedAt,
	}
}

// ToPostListResponse converts posts to response DTOs, never returning nil.
func ToPostListResponse(posts []*model.Post) []*PostResponse {
	out := make([]*PostResponse, len(posts))
	for i, p := range posts {
		out[i] = ToPostResponse(p)
	}
	return out
}
