package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Fingerprint hashes the parts with a separator so ("ab","c") and ("a","bc")
// never collide.
func Fingerprint(parts ...string) string {
	h := sha256.New()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte{0})
		}
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func ShortFingerprint(parts ...string) string {
	return Fingerprint(parts...)[:16]
}

func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
