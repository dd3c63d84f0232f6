package main

import (
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/quillpost/quillpost/internal/auth"
	"github.com/quillpost/quillpost/internal/config"
)

func TestRedactURL(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"empty", "", ""},
		{"no credentials", "redis://localhost:6379/0", "redis://localhost:6379/0"},
		{"user and password", "postgres://quill:s3cret@db:5432/quillpost", "postgres://quill@db:5432/quillpost"},
		{"password only", "redis://:s3cret@cache:6379", "redis://redacted@cache:6379"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := redactURL(tt.raw); got != tt.want {
				t.Errorf("redactURL(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestSanitizeError(t *testing.T) {
	dsn := "postgres://quill:s3cret@db:5432/quillpost"
	err := errors.New("dial " + dsn + ": connection refused (password=s3cret)")

	got := sanitizeError(err, dsn)
	if strings.Contains(got, "s3cret") {
		t.Errorf("sanitized error still contains the password: %s", got)
	}
	if !strings.Contains(got, "connection refused") {
		t.Errorf("sanitized error lost its message: %s", got)
	}

	if sanitizeError(nil) != "" {
		t.Error("expected empty string for nil error")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}

	for in, want := range tests {
		if got := parseLogLevel(in); got != want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewCredentials(t *testing.T) {
	valid := func() *config.Config {
		return &config.Config{
			JWTSecret:      strings.Repeat("s", auth.MinSecretLen),
			AccessTokenTTL: time.Hour,
			HashTime:       1,
			HashMemoryKiB:  64,
			HashThreads:    1,
		}
	}

	hasher, tokens, err := newCredentials(valid())
	if err != nil {
		t.Fatalf("newCredentials: %v", err)
	}
	if hasher == nil || tokens == nil {
		t.Fatal("expected hasher and token codec")
	}
	if tokens.DefaultTTL() != time.Hour {
		t.Errorf("DefaultTTL = %v, want 1h", tokens.DefaultTTL())
	}

	weak := valid()
	weak.JWTSecret = "short"
	if _, _, err := newCredentials(weak); !errors.Is(err, auth.ErrInvalidSecret) {
		t.Errorf("expected ErrInvalidSecret, got %v", err)
	}

	badHash := valid()
	badHash.HashTime = 0
	if _, _, err := newCredentials(badHash); !errors.Is(err, auth.ErrInvalidParams) {
		t.Errorf("expected ErrInvalidParams, got %v", err)
	}
}
