package pkce

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RFC 7636 Appendix B test vector.
const (
	rfcVerifier  = "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
	rfcChallenge = "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM"
)

func TestChallengeMatchesRFCVector(t *testing.T) {
	assert.Equal(t, rfcChallenge, Challenge(rfcVerifier))
	require.NoError(t, ValidateChallenge(rfcChallenge))
}

func TestVerify(t *testing.T) {
	t.Run("matching verifier", func(t *testing.T) {
		assert.NoError(t, Verify(rfcVerifier, rfcChallenge))
	})

	t.Run("different verifier", func(t *testing.T) {
		other := strings.Repeat("a", 43)
		assert.ErrorIs(t, Verify(other, rfcChallenge), ErrMismatch)
	})

	t.Run("plain verifier equal to challenge is rejected", func(t *testing.T) {
		assert.ErrorIs(t, Verify(rfcChallenge, rfcChallenge), ErrMismatch)
	})

	t.Run("too short", func(t *testing.T) {
		assert.ErrorIs(t, Verify("short", rfcChallenge), ErrInvalidVerifier)
	})

	t.Run("too long", func(t *testing.T) {
		assert.ErrorIs(t, Verify(strings.Repeat("a", 129), rfcChallenge), ErrInvalidVerifier)
	})

	t.Run("illegal characters", func(t *testing.T) {
		assert.ErrorIs(t, Verify(strings.Repeat("a", 42)+"/", rfcChallenge), ErrInvalidVerifier)
	})
}

func TestValidateChallenge(t *testing.T) {
	assert.ErrorIs(t, ValidateChallenge(""), ErrInvalidChallenge)
	assert.ErrorIs(t, ValidateChallenge(strings.Repeat("*", 43)), ErrInvalidChallenge)
	assert.ErrorIs(t, ValidateChallenge(rfcChallenge+"="), ErrInvalidChallenge)
}
