package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// NormalizeLink lowercases, trims and strips a trailing slash so that
// trivially different spellings of the same URL dedup together.
func NormalizeLink(link string) string {
	s := strings.ToLower(strings.TrimSpace(link))
	return strings.TrimSuffix(s, "/")
}

// LinkHash returns the SHA-256 hex digest of the normalized link. It is
// the sole key under which an item's dedup record lives.
func LinkHash(link string) string {
	sum := sha256.Sum256([]byte(NormalizeLink(link)))
	return hex.EncodeToString(sum[:])
}
