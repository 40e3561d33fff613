package util

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
)

// Checksum streams r through SHA-256 and returns the hex digest. The upload
// handler records it on the documents row so re-uploads are detectable.
func Checksum(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
