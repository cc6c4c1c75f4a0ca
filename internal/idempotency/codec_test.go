package idempotency

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type partyResult struct {
	ID        string    `json:"id"`
	Risk      string    `json:"risk,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (partyResult) IdempotencyKind() string { return "test.party_result.v1" }

type blobResult struct {
	Data string `json:"data"`
}

func (blobResult) IdempotencyKind() string { return "test.blob_result.v1" }

type unregisteredResult struct{}

func (unregisteredResult) IdempotencyKind() string { return "test.unregistered.v1" }

func newTestCodec() *Codec {
	c := NewCodec()
	Register[partyResult](c)
	Register[blobResult](c)
	return c
}

func TestCodecRoundTrip(t *testing.T) {
	c := newTestCodec()

	values := []Cacheable{
		partyResult{ID: "p1", Risk: "LOW", CreatedAt: time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)},
		partyResult{},
		blobResult{Data: "café \x00 bytes"},
	}
	for _, v := range values {
		data, err := c.Encode(v)
		require.NoError(t, err)

		got, err := c.Decode(data)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestCodecDecodesWithoutExpectedType(t *testing.T) {
	c := newTestCodec()

	data, err := c.Encode(blobResult{Data: "x"})
	require.NoError(t, err)

	got, err := c.Decode(data)
	require.NoError(t, err)
	_, isBlob := got.(blobResult)
	assert.True(t, isBlob, "decoded value should carry its registered type, got %T", got)
}

func TestCodecFailsLoudly(t *testing.T) {
	c := newTestCodec()

	t.Run("encode rejects unregistered kind", func(t *testing.T) {
		_, err := c.Encode(unregisteredResult{})
		require.Error(t, err)
	})

	t.Run("encode rejects nil", func(t *testing.T) {
		_, err := c.Encode(nil)
		require.Error(t, err)
	})

	t.Run("decode rejects unknown kind", func(t *testing.T) {
		_, err := c.Decode([]byte(`{"kind":"test.other.v9","body":{}}`))
		require.Error(t, err)
	})

	t.Run("decode rejects corrupt payload", func(t *testing.T) {
		_, err := c.Decode([]byte(`[1,2`))
		require.Error(t, err)
	})

	t.Run("decode rejects mismatched body", func(t *testing.T) {
		_, err := c.Decode([]byte(`{"kind":"test.party_result.v1","body":{"id":42}}`))
		require.Error(t, err)
	})

	t.Run("duplicate registration panics", func(t *testing.T) {
		assert.Panics(t, func() { Register[partyResult](c) })
	})

	t.Run("pointer registration panics", func(t *testing.T) {
		assert.Panics(t, func() { Register[*blobResult](NewCodec()) })
	})
}
