package service

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher produces and checks salted one-way password digests. The
// salt is randomized per call, so hashing the same plaintext twice yields
// different digests that both verify.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	// Verify reports whether plaintext matches digest. A digest that does
	// not parse as hasher output yields ErrCorruptCredential; a plain
	// mismatch is (false, nil).
	Verify(plaintext, digest string) (bool, error)
}

type bcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a bcrypt-backed hasher. cost <= 0 selects the
// bcrypt default.
func NewBcryptHasher(cost int) PasswordHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &bcryptHasher{cost: cost}
}

func (h *bcryptHasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(digest), nil
}

func (h *bcryptHasher) Verify(plaintext, digest string) (bool, error) {
	// Comparison time does not depend on where a mismatch occurs.
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		// Anything else (bad prefix, truncated hash, unknown version)
		// means we stored something that was never bcrypt output.
		return false, fmt.Errorf("%w: %v", ErrCorruptCredential, err)
	}
}
