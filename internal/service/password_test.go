package service

import (
	"errors"
	"testing"
)

func TestBcryptHasher_HashVerifyRoundTrip(t *testing.T) {
	h := NewBcryptHasher(4) // minimum cost keeps the test fast

	digest, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if digest == "secret1" {
		t.Fatalf("digest must not equal the plaintext")
	}

	ok, err := h.Verify("secret1", digest)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected digest to verify against original plaintext")
	}

	ok, err = h.Verify("other", digest)
	if err != nil {
		t.Fatalf("Verify returned error for mismatch: %v", err)
	}
	if ok {
		t.Fatalf("expected mismatch for wrong plaintext")
	}
}

func TestBcryptHasher_SaltIsPerCall(t *testing.T) {
	h := NewBcryptHasher(4)

	d1, err := h.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	d2, err := h.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if d1 == d2 {
		t.Fatalf("two hashes of the same plaintext must differ (random salt)")
	}
	for _, d := range []string{d1, d2} {
		ok, err := h.Verify("same-password", d)
		if err != nil || !ok {
			t.Fatalf("digest %q did not verify: ok=%v err=%v", d, ok, err)
		}
	}
}

func TestBcryptHasher_CorruptDigest(t *testing.T) {
	h := NewBcryptHasher(4)

	for _, digest := range []string{"", "not-a-bcrypt-hash", "$2a$04$tooshort"} {
		ok, err := h.Verify("whatever", digest)
		if ok {
			t.Fatalf("corrupt digest %q must not verify", digest)
		}
		if !errors.Is(err, ErrCorruptCredential) {
			t.Fatalf("expected ErrCorruptCredential for %q, got: %v", digest, err)
		}
	}
}
