package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// Digest returns a short stable fingerprint of input, used to correlate log
// lines without writing user text to the logs.
func Digest(input string) string {
	if input == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:6])
}
