package catalog

import (
	"strings"
	"testing"
	"time"

	"github.com/stockroom/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCategory(t *testing.T) {
	c, err := NewCategory("  Lácteos ", "Leches y yogures")
	require.NoError(t, err)
	assert.Equal(t, "Lácteos", c.Name)
	assert.Equal(t, 1, c.GetVersion())

	_, err = NewCategory("", "x")
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = NewCategory(strings.Repeat("a", 101), "")
	assert.ErrorIs(t, err, shared.ErrValidation)

	// limits count characters, not bytes
	_, err = NewCategory(strings.Repeat("Ñ", 100), strings.Repeat("é", 100))
	assert.NoError(t, err)
}

func TestNutritionInfo(t *testing.T) {
	n, err := NewNutritionInfo(NutritionParams{Ingredients: "leche, cultivos", Gluten: "sin gluten"})
	require.NoError(t, err)
	assert.Equal(t, "sin gluten", n.Gluten)

	err = n.Update(NutritionParams{Proteins: strings.Repeat("9", 46)})
	assert.ErrorIs(t, err, shared.ErrValidation)
	assert.Equal(t, "sin gluten", n.Gluten)
}

func TestExpiryAlertRule(t *testing.T) {
	_, err := NewExpiryAlertRule("", "", 3)
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = NewExpiryAlertRule("Aviso", "", -1)
	assert.ErrorIs(t, err, shared.ErrValidation)

	rule, err := NewExpiryAlertRule("Aviso semanal", "Una semana antes", 7)
	require.NoError(t, err)

	product, err := NewProduct(validParams())
	require.NoError(t, err)

	assert.True(t, rule.Triggers(product, time.Date(2026, 2, 25, 0, 0, 0, 0, time.UTC)))
	assert.False(t, rule.Triggers(product, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)))

	product.MarkDeleted()
	assert.False(t, rule.Triggers(product, time.Date(2026, 2, 25, 0, 0, 0, 0, time.UTC)))
}
