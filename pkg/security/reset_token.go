package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

const resetTokenBytes = 20

// GenerateResetToken returns a hex-encoded random token and the digest that should be persisted.
func GenerateResetToken() (token string, digest string, err error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("generate reset token: %w", err)
	}
	token = hex.EncodeToString(buf)
	return token, HashResetToken(token), nil
}

// HashResetToken derives the lookup digest for a reset token received from a client.
func HashResetToken(token string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(token)))
	return hex.EncodeToString(sum[:])
}
