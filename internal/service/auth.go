// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/quillpost/quillpost/internal/auth"
	"github.com/quillpost/quillpost/internal/metrics"
	"github.com/quillpost/quillpost/internal/model"
	"github.com/quillpost/quillpost/internal/repository"
)

// Service errors.
var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthenticated    = errors.New("unauthenticated")
)

// TokenType is the token_type reported alongside issued tokens.
const TokenType = "bearer"

// UserDirectory stores user accounts.
// Lookups return repository.ErrUserNotFound when no user matches, and
// CreateUser returns repository.ErrEmailExists when the email is taken.
type UserDirectory interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// Token is an issued bearer token.
type Token struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

// AuthService handles registration, login and bearer token authorization.
type AuthService struct {
	users   UserDirectory
	hasher  *auth.Hasher
	tokens  *auth.TokenCodec
	now     func() time.Time
	logger  *slog.Logger
	metrics metrics.Recorder
}

// AuthServiceConfig holds AuthService dependencies.
type AuthServiceConfig struct {
	Users   UserDirectory
	Hasher  *auth.Hasher
	Tokens  *auth.TokenCodec
	Clock   func() time.Time
	Logger  *slog.Logger
	Metrics metrics.Recorder
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg AuthServiceConfig) *AuthService {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNoop()
	}
	return &AuthService{
		users:   cfg.Users,
		hasher:  cfg.Hasher,
		tokens:  cfg.Tokens,
		now:     cfg.Clock,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
	}
}

// Register creates a user account and returns a token for it.
func (s *AuthService) Register(ctx context.Context, email, password string) (*Token, error) {
	_, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		s.metrics.IncRegistration(metrics.StatusFailed)
		return nil, ErrEmailTaken
	case !errors.Is(err, repository.ErrUserNotFound):
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:           ulid.Make().String(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			s.metrics.IncRegistration(metrics.StatusFailed)
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.issue(user.ID)
	if err != nil {
		return nil, err
	}

	s.metrics.IncRegistration(metrics.StatusSuccess)
	s.logger.Info("user registered", "user_id", user.ID)

	return token, nil
}

// Login checks credentials and returns a fresh token.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Token, error) {
	user, err := s.lookupLogin(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("lookup user: %w", err)
		}
		s.hasher.VerifyDummy(password)
		s.metrics.IncLogin(metrics.StatusFailed)
		return nil, ErrInvalidCredentials
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.metrics.IncLogin(metrics.StatusFailed)
		return nil, ErrInvalidCredentials
	}

	token, err := s.issue(user.ID)
	if err != nil {
		return nil, err
	}

	s.metrics.IncLogin(metrics.StatusSuccess)

	return token, nil
}

// lookupLogin finds the account for a login attempt. An email containing
// NUL can never have been registered, so it is not sent to the directory.
func (s *AuthService) lookupLogin(ctx context.Context, email string) (*model.User, error) {
	if strings.ContainsRune(email, 0) {
		return nil, repository.ErrUserNotFound
	}
	return s.users.GetUserByEmail(ctx, email)
}

// Authorize resolves a bearer token to the identity of an existing user.
func (s *AuthService) Authorize(ctx context.Context, token string) (*model.Identity, error) {
	subject, err := s.tokens.Verify(token, s.now())
	if err != nil {
		reason := auth.InvalidTokenReason(err)
		s.metrics.IncAuthFailure(reason)
		s.logger.Debug("token rejected", "reason", reason)
		return nil, ErrUnauthenticated
	}

	user, err := s.users.GetUserByID(ctx, subject)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.metrics.IncAuthFailure("unknown_user")
			s.logger.Debug("token rejected", "reason", "unknown_user")
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	return user.Identity(), nil
}

func (s *AuthService) issue(userID string) (*Token, error) {
	signed, expiresAt, err := s.tokens.Issue(userID, s.now(), 0)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Token{
		AccessToken: signed,
		TokenType:   TokenType,
		ExpiresAt:   expiresAt,
	}, nil
}
