package notification

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stockroom/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	userID := uuid.New()

	n, err := New(userID, nil, KindLowStock, "  Stock bajo: Leche  ")
	require.NoError(t, err)
	assert.Equal(t, "Stock bajo: Leche", n.Message)
	assert.False(t, n.Read)
	assert.True(t, n.IsAddressedTo(userID))
	assert.False(t, n.IsAddressedTo(uuid.New()))

	_, err = New(uuid.Nil, nil, KindLowStock, "x")
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = New(userID, nil, KindLowStock, "   ")
	assert.ErrorIs(t, err, shared.ErrValidation)

	long, err := New(userID, nil, KindExpiry, strings.Repeat("á", 300))
	require.NoError(t, err)
	assert.Len(t, []rune(long.Message), MaxMessageLength)
}

func TestNotification_MarkRead(t *testing.T) {
	n, err := New(uuid.New(), nil, KindOrder, "Pedido enviado")
	require.NoError(t, err)

	n.MarkRead()
	require.NotNil(t, n.ReadAt)
	first := *n.ReadAt

	n.MarkRead()
	assert.True(t, n.Read)
	assert.Equal(t, first, *n.ReadAt)
}

func TestExpiryDedupKey(t *testing.T) {
	id := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	day := time.Date(2026, 3, 4, 18, 0, 0, 0, time.UTC)
	assert.Equal(t, "expiry:11111111-1111-1111-1111-111111111111:2026-03-04", ExpiryDedupKey(id, day))
}
