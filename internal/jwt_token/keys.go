package jwttoken

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// AccessTokenKeyInfo binds derived keys to the access token purpose.
const AccessTokenKeyInfo = "scp-gateway/access-token"

// DeriveKey expands the operator secret into a 256-bit MAC key for one purpose.
func DeriveKey(secret, info string) ([]byte, error) {
	if secret == "" {
		return nil, fmt.Errorf("signing secret is required")
	}
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(info)), key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return key, nil
}
