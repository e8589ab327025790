// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// opaqueLength is the number of random bytes in an opaque token, 256 bits.
const opaqueLength = 32

// NewOpaque generates a URL-safe opaque token from crypto/rand. The value
// carries no embedded structure and is never derived from user data.
func NewOpaque() (string, error) {
	buf := make([]byte, opaqueLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Hash computes the SHA-256 digest of an opaque token. Only digests are
// stored; lookups hash the presented value first.
func Hash(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
