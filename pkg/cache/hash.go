package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash returns the full SHA-256 hex digest of s. Keys are hashed before
// they touch the filesystem so arbitrary input never becomes a path.
func Hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
