package ratelimit

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint derives a stable, non reversible key for an anonymous client
// from its address and user agent.
func Fingerprint(clientIP, userAgent string) string {
	sum := blake2b.Sum256([]byte(clientIP + "\x00" + userAgent))
	return hex.EncodeToString(sum[:16])
}
