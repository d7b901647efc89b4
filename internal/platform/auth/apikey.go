package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const apiKeyPrefixLen = 12

// GenerateAPIKey returns the raw key (shown to the caller exactly once), its
// lookup prefix, and the bcrypt hash that gets stored.
func GenerateAPIKey() (raw, prefix, hash string, err error) {
	buf := make([]byte, 24)
	if _, err = rand.Read(buf); err != nil {
		return "", "", "", fmt.Errorf("generating api key: %w", err)
	}

	raw = "whk_" + hex.EncodeToString(buf)
	prefix = raw[:apiKeyPrefixLen]

	hashed, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", "", "", fmt.Errorf("hashing api key: %w", err)
	}
	return raw, prefix, string(hashed), nil
}

// KeyPrefix returns the lookup prefix of a presented key, or "" if the key is
// too short to carry one.
func KeyPrefix(raw string) string {
	if len(raw) < apiKeyPrefixLen || !strings.HasPrefix(raw, "whk_") {
		return ""
	}
	return raw[:apiKeyPrefixLen]
}

func CompareAPIKey(hash, raw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)) == nil
}
