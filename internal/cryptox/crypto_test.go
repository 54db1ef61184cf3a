package cryptox

import (
	"bytes"
	"testing"
)

func TestGenerateSalt_LengthAndUniqueness(t *testing.T) {
	t.Parallel()

	s1, err := GenerateSalt()
	if err != nil {
		t.Fatalf("GenerateSalt error: %v", err)
	}
	s2, err := GenerateSalt()
	if err != nil {
		t.Fatalf("GenerateSalt error: %v", err)
	}

	if len(s1) != SaltSize || len(s2) != SaltSize {
		t.Fatalf("unexpected salt lengths: %d, %d", len(s1), len(s2))
	}
	if bytes.Equal(s1, s2) {
		t.Fatalf("two salts are identical: %x", s1)
	}
}

func TestDeriveDigest_Deterministic(t *testing.T) {
	t.Parallel()

	salt := []byte("0123456789abcdef")
	pw := []byte("securePassword123")

	d1 := DeriveDigest(salt, pw)
	d2 := DeriveDigest(salt, pw)

	if !bytes.Equal(d1, d2) {
		t.Fatalf("digest is not deterministic")
	}
	if bytes.Equal(d1, pw) {
		t.Fatalf("digest equals the plaintext password")
	}
}

func TestDeriveDigest_DifferentInputsDiffer(t *testing.T) {
	t.Parallel()

	salt := []byte("0123456789abcdef")
	otherSalt := []byte("fedcba9876543210")

	d1 := DeriveDigest(salt, []byte("password-one"))
	d2 := DeriveDigest(salt, []byte("password-two"))
	d3 := DeriveDigest(otherSalt, []byte("password-one"))

	if bytes.Equal(d1, d2) {
		t.Fatalf("distinct passwords produced equal digests")
	}
	if bytes.Equal(d1, d3) {
		t.Fatalf("distinct salts produced equal digests")
	}
}

func TestVerifyDigest(t *testing.T) {
	t.Parallel()

	salt := []byte("0123456789abcdef")
	pw := []byte("correct horse")
	digest := DeriveDigest(salt, pw)

	if !VerifyDigest(digest, salt, pw) {
		t.Fatalf("VerifyDigest rejected the correct password")
	}
	if VerifyDigest(digest, salt, []byte("wrong horse")) {
		t.Fatalf("VerifyDigest accepted a wrong password")
	}
	if VerifyDigest(digest, []byte("fedcba9876543210"), pw) {
		t.Fatalf("VerifyDigest accepted a wrong salt")
	}
}
