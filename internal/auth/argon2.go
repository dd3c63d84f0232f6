// Package auth provides credential hashing, bearer token issuance and verification,
// and request-scoped identity helpers.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters (OWASP 2024 recommended minimum).
const (
	DefaultHashTime      = 3
	DefaultHashMemoryKiB = 64 * 1024 // 64 MB
	DefaultHashThreads   = 4

	argon2KeyLen  = 32
	argon2SaltLen = 16

	// Bounds applied to parameters read back from a stored hash.
	minSaltLen   = 8
	minKeyLen    = 16
	maxMemoryKiB = 4 * 1024 * 1024
)

var (
	// ErrInvalidHash indicates the hash format is invalid.
	ErrInvalidHash = errors.New("invalid hash format")
	// ErrIncompatibleVersion indicates the hash version is not supported.
	ErrIncompatibleVersion = errors.New("incompatible argon2 version")
	// ErrInvalidParams indicates a work factor that argon2id cannot run with.
	ErrInvalidParams = errors.New("invalid argon2 parameters")
)

// HashParams is the argon2id work factor.
type HashParams struct {
	Time      uint32
	MemoryKiB uint32
	Threads   uint8
}

// DefaultHashParams returns the production work factor.
func DefaultHashParams() HashParams {
	return HashParams{
		Time:      DefaultHashTime,
		MemoryKiB: DefaultHashMemoryKiB,
		Threads:   DefaultHashThreads,
	}
}

func (p HashParams) validate() error {
	if p.Time < 1 || p.Threads < 1 || p.MemoryKiB < 8*uint32(p.Threads) || p.MemoryKiB > maxMemoryKiB {
		return ErrInvalidParams
	}
	return nil
}

// Hasher hashes and verifies passwords with argon2id.
// It holds no mutable state and is safe for concurrent use.
type Hasher struct {
	params    HashParams
	dummyHash string
}

// NewHasher creates a Hasher with the given work factor.
func NewHasher(params HashParams) (*Hasher, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	h := &Hasher{params: params}

	// Used by VerifyDummy so that unknown accounts cost one full verification.
	dummy, err := h.Hash("dummy-password-for-timing")
	if err != nil {
		return nil, err
	}
	h.dummyHash = dummy

	return h, nil
}

// Params returns the work factor used for new hashes.
func (h *Hasher) Params() HashParams {
	return h.params
}

// Hash creates an Argon2id hash of the given password with a fresh random salt.
// Returns the hash in PHC string format.
func (h *Hasher) Hash(password string) (string, error) {
	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey(
		[]byte(password),
		salt,
		h.params.Time,
		h.params.MemoryKiB,
		h.params.Threads,
		argon2KeyLen,
	)

	// $argon2id$v=19$m=65536,t=3,p=4$<salt>$<hash>
	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.MemoryKiB,
		h.params.Time,
		h.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether password matches encodedHash.
// A malformed or unsupported hash is reported as a mismatch.
func (h *Hasher) Verify(password, encodedHash string) bool {
	ok, err := verifyPassword(password, encodedHash)
	return err == nil && ok
}

// VerifyDummy performs a verification against an internal hash and discards the result.
// Callers use it when there is no stored hash to compare against.
func (h *Hasher) VerifyDummy(password string) {
	_, _ = verifyPassword(password, h.dummyHash)
}

type decodedHash struct {
	params HashParams
	salt   []byte
	key    []byte
}

func decodeHash(encodedHash string) (*decodedHash, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[0] != "" {
		return nil, ErrInvalidHash
	}

	if parts[1] != "argon2id" {
		return nil, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, ErrInvalidHash
	}
	if version != argon2.Version {
		return nil, ErrIncompatibleVersion
	}

	var d decodedHash
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &d.params.MemoryKiB, &d.params.Time, &d.params.Threads); err != nil {
		return nil, ErrInvalidHash
	}
	if err := d.params.validate(); err != nil {
		return nil, ErrInvalidHash
	}

	var err error
	d.salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(d.salt) < minSaltLen {
		return nil, ErrInvalidHash
	}

	d.key, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(d.key) < minKeyLen {
		return nil, ErrInvalidHash
	}

	return &d, nil
}

func verifyPassword(password, encodedHash string) (bool, error) {
	d, err := decodeHash(encodedHash)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey(
		[]byte(password),
		d.salt,
		d.params.Time,
		d.params.MemoryKiB,
		d.params.Threads,
		uint32(len(d.key)),
	)

	return subtle.ConstantTimeCompare(computed, d.key) == 1, nil
}
