package utils

import (
	"crypto/rand"
	"encoding/base64"
)

// RandomToken returns a URL-safe random string built from nBytes of entropy.
func RandomToken(nBytes int) (string, error) {
	if nBytes <= 0 {
		nBytes = 32 // 256 bits
	}
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
