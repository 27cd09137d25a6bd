package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")

	err := Wrap(cause, CodeUnavailable, "failed to load origins")
	assert.EqualError(t, err, "failed to load origins: connection refused")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, CodeUnavailable, CodeOf(err))
	assert.True(t, HasCode(err, CodeUnavailable))

	assert.NoError(t, Wrap(nil, CodeInternal, "ignored"))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))

	wrapped := fmt.Errorf("handler: %w", New(CodeInvalidInput, "origin is required"))
	assert.Equal(t, CodeInvalidInput, CodeOf(wrapped))
	assert.False(t, HasCode(wrapped, CodeNotFound))
}
