package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// hashPrefix is the literal prefix every ContentHash string carries.
const hashPrefix = "sha256:"

// ContentHash is a SHA-256 digest of the exact bytes written to disk,
// represented as the literal string "sha256:" followed by lowercase hex.
type ContentHash string

// HashBytes computes the ContentHash of b.
func HashBytes(b []byte) ContentHash {
	sum := sha256.Sum256(b)
	return ContentHash(hashPrefix + hex.EncodeToString(sum[:]))
}

// String returns the hash in its canonical "sha256:<hex>" form.
func (h ContentHash) String() string {
	return string(h)
}

// Valid reports whether h carries the expected prefix and a 64-character
// lowercase hex digest.
func (h ContentHash) Valid() bool {
	s := string(h)
	if !strings.HasPrefix(s, hashPrefix) {
		return false
	}
	hexPart := strings.TrimPrefix(s, hashPrefix)
	if len(hexPart) != 64 {
		return false
	}
	_, err := hex.DecodeString(hexPart)
	return err == nil
}

// Equal reports whether two hashes represent the same digest.
func (h ContentHash) Equal(other ContentHash) bool {
	return h == other
}

// ParseContentHash validates and returns s as a ContentHash.
func ParseContentHash(s string) (ContentHash, error) {
	h := ContentHash(s)
	if !h.Valid() {
		return "", fmt.Errorf("invalid content hash %q: expected %s<64 hex chars>", s, hashPrefix)
	}
	return h, nil
}
