package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/quillpost/quillpost/internal/auth"
	"github.com/quillpost/quillpost/internal/handler/dto"
	"github.com/quillpost/quillpost/internal/service"
)

// AccountService registers and logs in users.
type AccountService interface {
	Register(ctx context.Context, email, password string) (*service.Token, error)
	Login(ctx context.Context, email, password string) (*service.Token, error)
}

// AuthHandler handles HTTP requests for account operations.
type AuthHandler struct {
	svc    AccountService
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc AccountService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		svc:    svc,
		logger: logger,
	}
}

// Signup handles POST /auth/signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req dto.SignupRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	token, err := h.svc.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ToTokenResponse(token))
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	token, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToTokenResponse(token))
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())
	if identity == nil {
		handleServiceError(w, h.logger, service.ErrUnauthenticated)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToMeResponse(identity))
}
