// Package cryptox implements credential derivation: random per-user salts
// and salt-bound argon2id password digests. All functions are pure and safe
// for concurrent use.
package cryptox

import (
	"crypto/rand"
	"crypto/subtle"

	"golang.org/x/crypto/argon2"
)

// argon2id parameters (OWASP-recommended).
const (
	argonTime    = 3         // iterations
	argonMemory  = 64 * 1024 // 64 MiB
	argonThreads = 4         // parallelism
	argonKeyLen  = 32        // digest length in bytes

	// SaltSize is the number of random bytes in a freshly generated salt.
	SaltSize = 16
)

// GenerateSalt produces a new random salt from the OS CSPRNG.
func GenerateSalt() ([]byte, error) {
	b := make([]byte, SaltSize)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}

// DeriveDigest computes the argon2id digest of the (salt, password) pair.
// The result is deterministic: identical inputs always yield identical
// output, and changing either input changes the output.
func DeriveDigest(salt, password []byte) []byte {
	return argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

// VerifyDigest recomputes the digest for (salt, password) and compares it to
// the stored digest in constant time.
func VerifyDigest(digest, salt, password []byte) bool {
	candidate := DeriveDigest(salt, password)
	return subtle.ConstantTimeCompare(digest, candidate) == 1
}
