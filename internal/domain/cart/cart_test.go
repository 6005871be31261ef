package cart

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stockroom/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCart_AddMergesQuantities(t *testing.T) {
	c := New("user:1")
	a, b := uuid.New(), uuid.New()

	require.NoError(t, c.Add(a, 2))
	require.NoError(t, c.Add(b, 1))
	require.NoError(t, c.Add(a, 3))

	assert.Len(t, c.Items, 2)
	assert.Equal(t, 5, c.Quantity(a))
	assert.Equal(t, 1, c.Quantity(b))
	assert.Equal(t, 6, c.TotalUnits())
	assert.Equal(t, []uuid.UUID{a, b}, c.ProductIDs())
}

func TestCart_AddRejectsBadQuantities(t *testing.T) {
	c := New("user:1")
	id := uuid.New()

	assert.ErrorIs(t, c.Add(id, 0), shared.ErrValidation)
	assert.ErrorIs(t, c.Add(id, -2), shared.ErrValidation)
	assert.ErrorIs(t, c.Add(id, MaxLineQuantity+1), shared.ErrValidation)

	require.NoError(t, c.Add(id, MaxLineQuantity))
	assert.ErrorIs(t, c.Add(id, 1), shared.ErrValidation)
	assert.Equal(t, MaxLineQuantity, c.Quantity(id))
}

func TestCart_SetQuantityAndRemove(t *testing.T) {
	c := New("anon:x")
	id := uuid.New()

	require.NoError(t, c.SetQuantity(id, 4))
	assert.Equal(t, 4, c.Quantity(id))

	require.NoError(t, c.SetQuantity(id, 1))
	assert.Equal(t, 1, c.Quantity(id))

	require.NoError(t, c.SetQuantity(id, 0))
	assert.True(t, c.IsEmpty())

	assert.False(t, c.Remove(id))
}

func TestCart_ClearAndSnapshot(t *testing.T) {
	c := New("user:1")
	require.NoError(t, c.Add(uuid.New(), 2))

	snap := c.Snapshot()
	c.Clear()

	assert.True(t, c.IsEmpty())
	assert.Len(t, snap, 1)
	assert.Equal(t, 0, c.TotalUnits())
}
