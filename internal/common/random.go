package common

import (
	"crypto/rand"
	"encoding/base64"
)

// MakeRandURLString returns size bytes drawn from crypto/rand encoded as
// unpadded URL-safe base64, suitable for use in a URL path segment.
func MakeRandURLString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// ShortToken returns a log-safe prefix of a token value.
func ShortToken(value string) string {
	if len(value) <= 6 {
		return value
	}
	return value[:6] + "…"
}
