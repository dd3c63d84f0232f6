package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// TokenAlgorithm is the only signing algorithm issued or accepted.
	TokenAlgorithm = "HS256"

	// DefaultTokenTTL is the lifetime of a token when no TTL is configured.
	DefaultTokenTTL = 60 * time.Minute

	// MinSecretLen is the minimum signing secret length for HS256.
	MinSecretLen = 32
)

var (
	// ErrInvalidToken is returned for every rejected token: bad signature, expired, or malformed.
	ErrInvalidToken = errors.New("invalid token")
	// ErrInvalidSecret indicates the signing secret is too short.
	ErrInvalidSecret = errors.New("signing secret must be at least 32 bytes")
)

// Rejection reasons, for logging only.
const (
	ReasonExpired   = "expired"
	ReasonSignature = "bad_signature"
	ReasonMalformed = "malformed"
	ReasonClaims    = "invalid_claims"
)

// tokenError carries the rejection reason while matching ErrInvalidToken.
type tokenError struct {
	reason string
}

func (e *tokenError) Error() string {
	return "invalid token: " + e.reason
}

func (e *tokenError) Is(target error) bool {
	return target == ErrInvalidToken
}

// InvalidTokenReason returns the rejection reason of a token error, or "" if err
// did not come from TokenCodec.Verify.
func InvalidTokenReason(err error) string {
	var te *tokenError
	if errors.As(err, &te) {
		return te.reason
	}
	return ""
}

// TokenCodec issues and verifies signed, time-bounded bearer tokens.
// The secret is fixed at construction; a TokenCodec is safe for concurrent use.
type TokenCodec struct {
	secret     []byte
	defaultTTL time.Duration
	parser     []jwt.ParserOption
}

// NewTokenCodec creates a TokenCodec signing with secret.
// A non-positive defaultTTL falls back to DefaultTokenTTL.
func NewTokenCodec(secret []byte, defaultTTL time.Duration) (*TokenCodec, error) {
	if len(secret) < MinSecretLen {
		return nil, ErrInvalidSecret
	}
	if defaultTTL <= 0 {
		defaultTTL = DefaultTokenTTL
	}

	key := make([]byte, len(secret))
	copy(key, secret)

	return &TokenCodec{
		secret:     key,
		defaultTTL: defaultTTL,
		parser: []jwt.ParserOption{
			jwt.WithValidMethods([]string{TokenAlgorithm}),
			jwt.WithExpirationRequired(),
		},
	}, nil
}

// DefaultTTL returns the TTL applied when Issue is called without one.
func (c *TokenCodec) DefaultTTL() time.Duration {
	return c.defaultTTL
}

// Issue signs a token for subject that expires at now+ttl.
// A non-positive ttl uses the codec's default.
func (c *TokenCodec) Issue(subject string, now time.Time, ttl time.Duration) (string, time.Time, error) {
	if subject == "" {
		return "", time.Time{}, errors.New("issue token: empty subject")
	}
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	expiresAt := jwt.NewNumericDate(now.Add(ttl))
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: expiresAt,
		IssuedAt:  jwt.NewNumericDate(now),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return signed, expiresAt.Time, nil
}

// Verify checks the token signature and expiry against now and returns its subject.
// A token is invalid from the exact instant of its expiry.
func (c *TokenCodec) Verify(token string, now time.Time) (string, error) {
	claims := &jwt.RegisteredClaims{}

	opts := append([]jwt.ParserOption{jwt.WithTimeFunc(func() time.Time { return now })}, c.parser...)
	parsed, err := jwt.ParseWithClaims(token, claims, c.keyFunc, opts...)
	if err != nil {
		return "", &tokenError{reason: rejectionReason(err)}
	}
	if !parsed.Valid {
		return "", &tokenError{reason: ReasonSignature}
	}

	if claims.Subject == "" {
		return "", &tokenError{reason: ReasonClaims}
	}

	return claims.Subject, nil
}

func (c *TokenCodec) keyFunc(t *jwt.Token) (any, error) {
	// Pinned: never trust the algorithm named in the header.
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok || t.Method.Alg() != TokenAlgorithm {
		return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
	}
	return c.secret, nil
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ReasonExpired
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ReasonMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ReasonSignature
	default:
		return ReasonClaims
	}
}
