package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/quillpost/quillpost/internal/auth"
	"github.com/quillpost/quillpost/internal/handler/dto"
	"github.com/quillpost/quillpost/internal/model"
	"github.com/quillpost/quillpost/internal/service"
)

// PostManager stores, lists and deletes a user's posts.
type PostManager interface {
	AddPost(ctx context.Context, userID, text string) (*model.Post, error)
	ListPosts(ctx context.Context, userID string) ([]*model.Post, error)
	DeletePost(ctx context.Context, userID string, postID int64) error
}

// PostHandler handles HTTP requests for post operations.
// All routes require the auth middleware.
type PostHandler struct {
	svc    PostManager
	logger *slog.Logger
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(svc PostManager, logger *slog.Logger) *PostHandler {
	return &PostHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /posts.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		handleServiceError(w, h.logger, service.ErrUnauthenticated)
		return
	}

	var req dto.CreatePostRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	post, err := h.svc.AddPost(r.Context(), userID, req.Text)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("post_created",
		"post_id", post.ID,
		"user_id", userID,
	)

	writeJSON(w, http.StatusCreated, dto.ToPostResponse(post))
}

// List handles GET /posts.
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		handleServiceError(w, h.logger, service.ErrUnauthenticated)
		return
	}

	posts, err := h.svc.ListPosts(r.Context(), userID)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToPostListResponse(posts))
}

// Delete handles DELETE /posts/{id}.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		handleServiceError(w, h.logger, service.ErrUnauthenticated)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Post ID must be a positive integer")
		return
	}

	if err := h.svc.DeletePost(r.Context(), userID, id); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("post_deleted",
		"post_id", id,
		"user_id", userID,
	)

	w.WriteHeader(http.StatusNoContent)
}
