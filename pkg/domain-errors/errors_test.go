package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	t.Run("matches direct code", func(t *testing.T) {
		err := New(CodeValidation, "phone must be exactly 10 digits")
		assert.True(t, HasCode(err, CodeValidation))
		assert.False(t, HasCode(err, CodeNotFound))
	})

	t.Run("matches code through fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("update: %w", New(CodeNotFound, "contact not found"))
		assert.True(t, HasCode(err, CodeNotFound))
	})

	t.Run("matches inner code of a rewrapped error", func(t *testing.T) {
		inner := New(CodeValidation, "address must be at most 30 characters")
		err := Wrap(inner, CodeBadRequest, "invalid update request")
		assert.True(t, HasCode(err, CodeBadRequest))
		assert.True(t, HasCode(err, CodeValidation))
	})

	t.Run("plain errors carry no code", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("boom"), CodeInternal))
		assert.False(t, HasCode(nil, CodeInternal))
	})
}

func TestWrap(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		require.NoError(t, Wrap(nil, CodeInternal, "ignored"))
	})

	t.Run("keeps cause reachable", func(t *testing.T) {
		cause := errors.New("not found")
		err := Wrap(cause, CodeInternal, "failed to load contact")
		require.ErrorIs(t, err, cause)
		assert.Equal(t, "failed to load contact: not found", err.Error())
	})
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeConflict, CodeOf(New(CodeConflict, "duplicate")))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	assert.Equal(t, "duplicate", MessageOf(New(CodeConflict, "duplicate")))
	assert.Empty(t, MessageOf(errors.New("boom")))
}
