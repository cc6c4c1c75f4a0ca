package tx

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithTxNilIsNoop(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, ctx, WithTx(ctx, nil))

	_, ok := From(ctx)
	assert.False(t, ok)
}

func TestFromReturnsStoredTx(t *testing.T) {
	stored := &sql.Tx{}
	ctx := WithTx(context.Background(), stored)

	got, ok := From(ctx)
	assert.True(t, ok)
	assert.Same(t, stored, got)
	assert.Same(t, stored, Exec(ctx, nil))
}

func TestRunJoinsOuterTx(t *testing.T) {
	outer := WithTx(context.Background(), &sql.Tx{})
	var called bool
	err := Run(outer, nil, func(ctx context.Context) error {
		called = true
		_, ok := From(ctx)
		assert.True(t, ok)
		return nil
	})
	assert.NoError(t, err)
	assert.True(t, called)
}
