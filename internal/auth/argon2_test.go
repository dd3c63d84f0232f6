package auth

import (
	"errors"
	"strings"
	"testing"
)

var testParams = HashParams{Time: 1, MemoryKiB: 64, Threads: 1}

func newTestHasher(t *testing.T) *Hasher {
	t.Helper()
	h, err := NewHasher(testParams)
	if err != nil {
		t.Fatalf("NewHasher failed: %v", err)
	}
	return h
}

func TestHash_Format(t *testing.T) {
	t.Parallel()

	h, err := NewHasher(DefaultHashParams())
	if err != nil {
		t.Fatalf("NewHasher failed: %v", err)
	}

	hash, err := h.Hash("password123")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	// Verify PHC format: $argon2id$v=19$m=65536,t=3,p=4$<salt>$<hash>
	if !strings.HasPrefix(hash, "$argon2id$v=") {
		t.Errorf("Hash should be in PHC format, got: %s", hash)
	}

	parts := strings.Split(hash, "$")
	if len(parts) != 6 {
		t.Fatalf("Hash should have 6 parts, got: %d", len(parts))
	}

	if parts[1] != "argon2id" {
		t.Errorf("Expected argon2id algorithm, got: %s", parts[1])
	}
	if parts[2] != "v=19" {
		t.Errorf("Expected v=19, got: %s", parts[2])
	}
	if parts[3] != "m=65536,t=3,p=4" {
		t.Errorf("Expected m=65536,t=3,p=4, got: %s", parts[3])
	}
}

func TestHash_EncodesConfiguredParams(t *testing.T) {
	t.Parallel()

	h := newTestHasher(t)
	hash, err := h.Hash("password123")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	d, err := decodeHash(hash)
	if err != nil {
		t.Fatalf("decodeHash failed: %v", err)
	}
	if d.params != testParams {
		t.Errorf("params = %+v, want %+v", d.params, testParams)
	}
	if len(d.salt) != argon2SaltLen {
		t.Errorf("salt length = %d, want %d", len(d.salt), argon2SaltLen)
	}
	if len(d.key) != argon2KeyLen {
		t.Errorf("key length = %d, want %d", len(d.key), argon2KeyLen)
	}
}

func TestHash_Uniqueness(t *testing.T) {
	t.Parallel()

	h := newTestHasher(t)
	password := "the_same_password_12345"

	hash1, err := h.Hash(password)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	hash2, err := h.Hash(password)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	// Same password should produce different hashes (different salts)
	if hash1 == hash2 {
		t.Error("Same password should produce different hashes due to random salt")
	}

	if !h.Verify(password, hash1) || !h.Verify(password, hash2) {
		t.Error("Both hashes should verify correctly")
	}
}

func TestVerify_Correct(t *testing.T) {
	t.Parallel()

	h := newTestHasher(t)
	hash, err := h.Hash("password123")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	if !h.Verify("password123", hash) {
		t.Error("Correct password should match")
	}
}

func TestVerify_Incorrect(t *testing.T) {
	t.Parallel()

	h := newTestHasher(t)
	hash, err := h.Hash("password123")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	for _, wrong := range []string{"password124", "Password123", "", "password123 "} {
		if h.Verify(wrong, hash) {
			t.Errorf("Verify(%q) should not match", wrong)
		}
	}
}

func TestVerify_ReadsParamsFromHash(t *testing.T) {
	t.Parallel()

	// A hash produced under one work factor still verifies under another.
	older, err := NewHasher(HashParams{Time: 2, MemoryKiB: 128, Threads: 2})
	if err != nil {
		t.Fatalf("NewHasher failed: %v", err)
	}
	hash, err := older.Hash("password123")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	if !newTestHasher(t).Verify("password123", hash) {
		t.Error("Verify should use the parameters embedded in the hash")
	}
}

func TestVerifyPassword_InvalidHashFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		hash    string
		wantErr error
	}{
		{"empty", "", ErrInvalidHash},
		{"wrong format", "not-a-hash", ErrInvalidHash},
		{"wrong algorithm", "$bcrypt$v=19$m=65536,t=3,p=4$salt$hash", ErrInvalidHash},
		{"argon2i", "$argon2i$v=19$m=65536,t=3,p=4$c29tZXNhbHRoZXJl$c29tZWhhc2hoZXJlMTIzNDU2", ErrInvalidHash},
		{"missing parts", "$argon2id$v=19$m=65536", ErrInvalidHash},
		{"wrong part count", "$argon2id$v=19", ErrInvalidHash},
		{"bad params", "$argon2id$v=19$m=x,t=3,p=4$c29tZXNhbHRoZXJl$c29tZWhhc2hoZXJlMTIzNDU2", ErrInvalidHash},
		{"zero time", "$argon2id$v=19$m=65536,t=0,p=4$c29tZXNhbHRoZXJl$c29tZWhhc2hoZXJlMTIzNDU2", ErrInvalidHash},
		{"bad salt", "$argon2id$v=19$m=65536,t=3,p=4$!!!$c29tZWhhc2hoZXJlMTIzNDU2", ErrInvalidHash},
		{"short key", "$argon2id$v=19$m=65536,t=3,p=4$c29tZXNhbHRoZXJl$c2hvcnQ", ErrInvalidHash},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := verifyPassword("password", tt.hash)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("verifyPassword with %q error = %v, want %v", tt.name, err, tt.wantErr)
			}
			if newTestHasher(t).Verify("password", tt.hash) {
				t.Error("Verify should report a malformed hash as a mismatch")
			}
		})
	}
}

func TestVerifyPassword_WrongVersion(t *testing.T) {
	t.Parallel()

	// v=18 simulates an incompatible argon2 version
	invalidVersionHash := "$argon2id$v=18$m=65536,t=3,p=4$c29tZXNhbHRoZXJl$c29tZWhhc2hoZXJl"

	match, err := verifyPassword("password", invalidVersionHash)
	if !errors.Is(err, ErrIncompatibleVersion) {
		t.Errorf("Expected ErrIncompatibleVersion, got: %v", err)
	}
	if match {
		t.Error("Should not match with incompatible version")
	}
}

func TestNewHasher_InvalidParams(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		params HashParams
	}{
		{"zero time", HashParams{Time: 0, MemoryKiB: 64, Threads: 1}},
		{"zero threads", HashParams{Time: 1, MemoryKiB: 64, Threads: 0}},
		{"memory below threads", HashParams{Time: 1, MemoryKiB: 8, Threads: 4}},
		{"memory too large", HashParams{Time: 1, MemoryKiB: maxMemoryKiB + 1, Threads: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := NewHasher(tt.params); !errors.Is(err, ErrInvalidParams) {
				t.Errorf("NewHasher(%+v) error = %v, want ErrInvalidParams", tt.params, err)
			}
		})
	}
}

func TestVerifyDummy_DoesNotPanic(t *testing.T) {
	t.Parallel()

	h := newTestHasher(t)
	h.VerifyDummy("anything")
	h.VerifyDummy("")
}
