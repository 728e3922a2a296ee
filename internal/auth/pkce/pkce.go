// Package pkce implements the S256 proof-of-possession check (RFC 7636).
package pkce

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
)

// MethodS256 is the only supported code_challenge_method.
const MethodS256 = "S256"

// RFC 7636 length bounds for a code_verifier.
const (
	MinVerifierLength = 43
	MaxVerifierLength = 128
	// ChallengeLength is the encoded length of a SHA-256 digest without padding.
	ChallengeLength = 43
)

var (
	ErrInvalidVerifier  = errors.New("code_verifier is malformed")
	ErrInvalidChallenge = errors.New("code_challenge is malformed")
	ErrMismatch         = errors.New("code_verifier does not match code_challenge")
)

// Challenge computes base64url(SHA-256(verifier)) without padding.
func Challenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// Verify reports whether verifier transforms to challenge. The comparison is
// constant time.
func Verify(verifier, challenge string) error {
	if err := ValidateVerifier(verifier); err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(Challenge(verifier)), []byte(challenge)) != 1 {
		return ErrMismatch
	}
	return nil
}

// ValidateVerifier enforces the RFC 7636 length and alphabet [A-Za-z0-9-._~].
func ValidateVerifier(verifier string) error {
	if len(verifier) < MinVerifierLength || len(verifier) > MaxVerifierLength {
		return ErrInvalidVerifier
	}
	for _, ch := range verifier {
		if !isUnreserved(ch) {
			return ErrInvalidVerifier
		}
	}
	return nil
}

// ValidateChallenge checks an S256 challenge is a well-formed encoded digest.
func ValidateChallenge(challenge string) error {
	if len(challenge) != ChallengeLength {
		return ErrInvalidChallenge
	}
	decoded, err := base64.RawURLEncoding.DecodeString(challenge)
	if err != nil || len(decoded) != sha256.Size {
		return ErrInvalidChallenge
	}
	return nil
}

func isUnreserved(ch rune) bool {
	return (ch >= 'A' && ch <= 'Z') || (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9') ||
		ch == '-' || ch == '.' || ch == '_' || ch == '~'
}
