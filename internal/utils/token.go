package utils

import (
	"crypto/rand"   // secure random number generation
	"crypto/sha256" // SHA-256 hashing for remember-me tokens
	"encoding/hex"  // hex encoding
)

// NewOpaqueToken returns a cryptographically secure random token encoded
// as hex.  32 bytes -> 64 hex chars (256 bits of entropy).  Used for
// remember-me tokens and API access tokens.
func NewOpaqueToken() (string, error) {
	return randomHex(32)
}

// HashTokenRaw returns the SHA-256 hash of a raw token as a hex string.
// Remember-me tokens are server-generated 256-bit random values, so a
// fast collision-resistant digest is all the storage side needs; bcrypt
// here would add latency without any security benefit.  Do not apply
// this to low-entropy, user-chosen secrets — those stay on bcrypt.
func HashTokenRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
