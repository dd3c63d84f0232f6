package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

const base64URLAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

func newTestCodec(t *testing.T) *TokenCodec {
	t.Helper()
	c, err := NewTokenCodec(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewTokenCodec failed: %v", err)
	}
	return c
}

func TestNewTokenCodec_ShortSecret(t *testing.T) {
	t.Parallel()

	_, err := NewTokenCodec([]byte("too-short"), time.Hour)
	if !errors.Is(err, ErrInvalidSecret) {
		t.Errorf("NewTokenCodec error = %v, want ErrInvalidSecret", err)
	}
}

func TestNewTokenCodec_DefaultTTL(t *testing.T) {
	t.Parallel()

	c, err := NewTokenCodec(testSecret, 0)
	if err != nil {
		t.Fatalf("NewTokenCodec failed: %v", err)
	}
	if c.DefaultTTL() != DefaultTokenTTL {
		t.Errorf("DefaultTTL = %v, want %v", c.DefaultTTL(), DefaultTokenTTL)
	}
}

func TestTokenCodec_RoundTrip(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	token, expiresAt, err := c.Issue("user-1", now, 30*time.Minute)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if !expiresAt.Equal(now.Add(30 * time.Minute)) {
		t.Errorf("expiresAt = %v, want %v", expiresAt, now.Add(30*time.Minute))
	}

	subject, err := c.Verify(token, now)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if subject != "user-1" {
		t.Errorf("subject = %q, want %q", subject, "user-1")
	}
}

func TestTokenCodec_ExpiryBoundary(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t)
	ttl := 10 * time.Minute

	// Sub-second issue times: exp is truncated to whole seconds.
	for _, now := range []time.Time{
		time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 1, 12, 0, 0, 750_000_000, time.UTC),
	} {
		token, _, err := c.Issue("user-1", now, ttl)
		if err != nil {
			t.Fatalf("Issue failed: %v", err)
		}

		if _, err := c.Verify(token, now.Add(ttl-time.Second)); err != nil {
			t.Errorf("Verify at now+ttl-1s failed: %v", err)
		}

		_, err = c.Verify(token, now.Add(ttl))
		if !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Verify at now+ttl error = %v, want ErrInvalidToken", err)
		}
		if reason := InvalidTokenReason(err); reason != ReasonExpired {
			t.Errorf("reason = %q, want %q", reason, ReasonExpired)
		}
	}
}

func TestTokenCodec_NonPositiveTTLUsesDefault(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	_, expiresAt, err := c.Issue("user-1", now, 0)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if !expiresAt.Equal(now.Add(time.Hour)) {
		t.Errorf("expiresAt = %v, want %v", expiresAt, now.Add(time.Hour))
	}
}

func TestTokenCodec_EmptySubject(t *testing.T) {
	t.Parallel()

	if _, _, err := newTestCodec(t).Issue("", time.Now(), time.Minute); err == nil {
		t.Error("Issue with empty subject should fail")
	}
}

func TestTokenCodec_TamperedBytes(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t)
	now := time.Now()

	token, _, err := c.Issue("user-1", now, time.Hour)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	for i := 0; i < len(token); i++ {
		tampered := []byte(token)
		// Flip the high bit of the base64 digit so the decoded bytes always change.
		if idx := strings.IndexByte(base64URLAlphabet, tampered[i]); idx >= 0 {
			tampered[i] = base64URLAlphabet[idx^0x20]
		} else {
			tampered[i] = 'A'
		}

		if _, err := c.Verify(string(tampered), now); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("Verify accepted token tampered at byte %d", i)
		}
	}
}

func TestTokenCodec_WrongSecret(t *testing.T) {
	t.Parallel()

	now := time.Now()
	other, err := NewTokenCodec([]byte("ffffffffffffffffffffffffffffffff"), time.Hour)
	if err != nil {
		t.Fatalf("NewTokenCodec failed: %v", err)
	}

	token, _, err := other.Issue("user-1", now, time.Hour)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	_, err = newTestCodec(t).Verify(token, now)
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("Verify error = %v, want ErrInvalidToken", err)
	}
	if reason := InvalidTokenReason(err); reason != ReasonSignature {
		t.Errorf("reason = %q, want %q", reason, ReasonSignature)
	}
}

func TestTokenCodec_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign HS512: %v", err)
	}

	c := newTestCodec(t)
	for name, token := range map[string]string{"none": none, "HS512": hs512} {
		if _, err := c.Verify(token, now); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("%s: Verify error = %v, want ErrInvalidToken", name, err)
		}
	}
}

func TestTokenCodec_RequiresExpiryAndSubject(t *testing.T) {
	t.Parallel()

	now := time.Now()
	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "user-1"}).SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	noSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}).SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	c := newTestCodec(t)
	for name, token := range map[string]string{"no exp": noExp, "no sub": noSub} {
		_, err := c.Verify(token, now)
		if !errors.Is(err, ErrInvalidToken) {
			t.Errorf("%s: Verify error = %v, want ErrInvalidToken", name, err)
		}
		if reason := InvalidTokenReason(err); reason != ReasonClaims {
			t.Errorf("%s: reason = %q, want %q", name, reason, ReasonClaims)
		}
	}
}

func TestTokenCodec_Malformed(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t)
	for _, token := range []string{"", "garbage-string", "a.b.c", strings.Repeat(".", 5)} {
		_, err := c.Verify(token, time.Now())
		if !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Verify(%q) error = %v, want ErrInvalidToken", token, err)
		}
	}
	if reason := InvalidTokenReason(errors.New("other")); reason != "" {
		t.Errorf("InvalidTokenReason(non-token error) = %q, want empty", reason)
	}
}
