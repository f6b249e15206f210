package records

import (
	"crypto/rand"
	"encoding/base64"
)

// NewID creates a 22‑char URL‑safe, crypto‑random identifier (no padding).
func NewID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
