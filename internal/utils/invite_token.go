package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/nudgr/delegation-api/internal/constants"
)

// GenerateInviteToken generates a URL-safe random invite token with 128 bits
// of entropy.
func GenerateInviteToken() (string, error) {
	bytes := make([]byte, constants.InviteTokenBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
