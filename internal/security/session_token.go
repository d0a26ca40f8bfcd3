package security

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// 43 base62 characters carry just over 256 bits.
const SessionTokenLength = 43

func NewSessionToken() (string, error) {
	return RandomString(SessionTokenLength, Base62Alphabet)
}

// HashSessionToken is the lookup key stored in place of the bearer token.
func HashSessionToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// LooksLikeSessionToken rejects garbage before it reaches storage.
func LooksLikeSessionToken(token string) bool {
	if len(token) != SessionTokenLength {
		return false
	}
	for _, char := range token {
		if !strings.ContainsRune(Base62Alphabet, char) {
			return false
		}
	}
	return true
}
