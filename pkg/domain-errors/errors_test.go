package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	cause := errors.New("boom")
	inner := Wrap(cause, CodeConflict, "key reused").WithReason("IDEMPOTENCY_KEY_REUSED")
	outer := fmt.Errorf("create person: %w", inner)

	t.Run("finds code through fmt wrapping", func(t *testing.T) {
		assert.True(t, HasCode(outer, CodeConflict))
		assert.False(t, HasCode(outer, CodeInternal))
	})

	t.Run("keeps cause reachable", func(t *testing.T) {
		assert.ErrorIs(t, outer, cause)
	})

	t.Run("nested codes are all visible", func(t *testing.T) {
		wrapped := Wrap(inner, CodeInternal, "outer")
		assert.True(t, HasCode(wrapped, CodeInternal))
		assert.True(t, HasCode(wrapped, CodeConflict))
		assert.Equal(t, CodeInternal, CodeOf(wrapped))
		assert.Equal(t, "IDEMPOTENCY_KEY_REUSED", ReasonOf(wrapped))
	})

	t.Run("foreign errors default to internal", func(t *testing.T) {
		assert.Equal(t, CodeInternal, CodeOf(cause))
		assert.Empty(t, ReasonOf(cause))
	})
}
