package dto

import (
	"github.com/quillpost/quillpost/internal/model"
	"github.com/quillpost/quillpost/internal/service"
)

// SignupRequest represents the request body for creating an account.
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=256"`
}

// LoginRequest represents the request body for logging in.
// Length rules are not applied here so they cannot reveal anything about
// stored accounts.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse is returned by signup and login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// MeResponse describes the authenticated user.
type MeResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// ToTokenResponse converts an issued token to its response DTO.
func ToTokenResponse(t *service.Token) *TokenResponse {
	return &TokenResponse{
		AccessToken: t.AccessToken,
		TokenType:   t.TokenType,
	}
}

// ToMeResponse converts an identity to its response DTO.
func ToMeResponse(id *model.Identity) *MeResponse {
	return &MeResponse{ID: id.ID, Email: id.Email}
}
