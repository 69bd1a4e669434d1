// Package checksum computes the entity tags used for optimistic concurrency on drafts.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Of returns the hex-encoded SHA-256 digest of text.
func Of(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}

// Matches reports whether an If-Match value agrees with text. An empty tag always
// matches, so clients that skip the header are never rejected.
func Matches(tag, text string) bool {
	tag = strings.Trim(strings.TrimSpace(tag), `"`)
	if tag == "" || tag == "*" {
		return true
	}
	return tag == Of(text)
}
