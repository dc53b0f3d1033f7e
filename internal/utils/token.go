package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
)

// tokenBytes is the entropy of a single-use link token: 16 random bytes,
// 128 bits, hex-encoded to 32 characters.
const tokenBytes = 16

// GenerateLinkToken reads tokenBytes of randomness from the OS CSPRNG and
// returns it hex-encoded. Tokens are globally unique for any realistic
// issuance volume and are matched verbatim against the stored column.
func GenerateLinkToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return "", fmt.Errorf("error reading randomness for token: %w", err)
	}

	return hex.EncodeToString(buf), nil
}
