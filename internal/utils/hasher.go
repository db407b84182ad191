package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Hash generates a SHA-256 hash of the input string
func Hash(input string) string {
	hasher := sha256.New()
	hasher.Write([]byte(input))
	return hex.EncodeToString(hasher.Sum(nil))
}

// CacheKey joins a namespace with the hash of parts. Parts are separated by a
// unit separator so ("ab","c") and ("a","bc") never collide.
func CacheKey(namespace string, parts ...string) string {
	return namespace + ":" + Hash(strings.Join(parts, "\x1f"))
}
