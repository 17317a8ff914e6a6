package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// ResetTokenLifetime is how long a password reset token stays valid.
const ResetTokenLifetime = 10 * time.Minute

const resetTokenBytes = 25

// NewResetToken returns a random reset token for the user and the SHA-256
// hash of it that is stored. Only the hash ever reaches the database.
func NewResetToken() (token, hashed string, err error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	token = hex.EncodeToString(buf)
	return token, HashResetToken(token), nil
}

// HashResetToken hashes a reset token the way NewResetToken does.
func HashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
