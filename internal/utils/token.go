package utils // package utils provides helpers for passwords and one-time tokens

import (
	"crypto/rand"   // secure random number generation
	"crypto/sha256" // SHA-256 hashing for stored reset tokens
	"encoding/hex"  // hex encoding of random bytes and digests
)

// RandomToken returns a hex-encoded string built from n bytes of
// cryptographically secure random data. It backs password reset tokens and
// the one-time codes handed out after an OAuth login.
func RandomToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// HashToken returns the SHA-256 digest of raw as a hex string. Only this
// digest of a reset token is stored, so a leaked row cannot be replayed.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
