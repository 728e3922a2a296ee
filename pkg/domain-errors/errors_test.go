package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeSurvivesWrapping(t *testing.T) {
	base := New(CodeInvalidGrant, "invalid authorization code")
	wrapped := fmt.Errorf("exchange: %w", base)

	assert.True(t, Is(wrapped, CodeInvalidGrant))
	assert.False(t, Is(wrapped, CodeInternal))
	assert.Equal(t, CodeInvalidGrant, CodeOf(wrapped))
}

func TestUntaggedErrorIsInternal(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	assert.False(t, HasCode(nil, CodeInternal))
}

func TestErrorsIsComparesCodeAndMessage(t *testing.T) {
	err := Wrap(errors.New("redis down"), CodeInternal, "failed to load request")

	require.ErrorIs(t, err, New(CodeInternal, "failed to load request"))
	require.ErrorIs(t, err, &Error{Code: CodeInternal})
	assert.NotErrorIs(t, err, New(CodeInternal, "other message"))
}

func TestWithDataDoesNotMutateOriginal(t *testing.T) {
	base := New(CodeForbiddenScope, "missing scope")
	withData := base.WithData("required_scope", "orders")

	assert.Nil(t, base.Data)
	assert.Equal(t, "orders", withData.Data["required_scope"])
}
