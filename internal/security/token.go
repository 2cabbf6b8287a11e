package security

import (
	"crypto/rand"
	"encoding/base64"
)

func NewRandomString(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func NewRefreshToken() (string, error) {
	return NewRandomString(32)
}
