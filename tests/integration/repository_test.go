//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stockroom/backend/internal/domain/catalog"
	"github.com/stockroom/backend/internal/domain/partner"
	"github.com/stockroom/backend/internal/domain/shared"
	"github.com/stockroom/backend/internal/infrastructure/migration"
	"github.com/stockroom/backend/internal/infrastructure/persistence"
	"github.com/stockroom/backend/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newProduct(t *testing.T, name string, stock int) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(catalog.ProductParams{
		Name:         name,
		Price:        decimal.NewFromInt(1000),
		CurrentStock: stock,
		MinStock:     0,
		MaxStock:     100,
		ExpiryDate:   time.Now().AddDate(0, 0, 10),
	})
	require.NoError(t, err)
	return p
}

func TestProductRepository_SearchIgnoresCase(t *testing.T) {
	tdb := NewTestDB(t)
	repo := persistence.NewGormProductRepository(tdb.DB)
	ctx := context.Background()

	for _, name := range []string{"Pan de Campo", "PAN AMASADO", "Kuchen de nuez"} {
		require.NoError(t, repo.Save(ctx, newProduct(t, name, 5)))
	}

	found, err := repo.FindAll(ctx, shared.Filter{Search: "pan", Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	count, err := repo.Count(ctx, shared.Filter{Search: "NUEZ"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestProductRepository_DecrementStockNeverGoesNegative(t *testing.T) {
	tdb := NewTestDB(t)
	repo := persistence.NewGormProductRepository(tdb.DB)
	ctx := context.Background()

	p := newProduct(t, "Berlín", 2)
	require.NoError(t, repo.Save(ctx, p))

	require.NoError(t, repo.DecrementStock(ctx, p.ID, 2))
	assert.ErrorIs(t, repo.DecrementStock(ctx, p.ID, 1), shared.ErrInsufficientStock)

	got, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.CurrentStock)
}

func TestSupplierRepository_UniquenessIgnoresCase(t *testing.T) {
	tdb := NewTestDB(t)
	repo := persistence.NewGormSupplierRepository(tdb.DB)
	ctx := context.Background()

	s, err := partner.NewSupplier(partner.SupplierParams{
		RUT:         "76.123.456-0",
		CompanyName: "Molinos del Sur",
		Email:       "ventas@molinos.cl",
		Phone:       "+56 9 1234 5678",
	})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, s))

	exists, err := repo.ExistsByCompanyName(ctx, "MOLINOS DEL SUR", nil)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByCompanyName(ctx, "molinos del sur", &s.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = repo.ExistsByEmail(ctx, "VENTAS@molinos.cl", nil)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMigrations_DownAndUp(t *testing.T) {
	tdb := NewTestDB(t)

	m, err := migration.New(tdb.SqlDB, migration.Source{FS: migrations.FS}, zap.NewNop())
	require.NoError(t, err)

	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, uint(5), version)

	require.NoError(t, m.Down(0))
	require.NoError(t, m.Up())

	version, _, err = m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(5), version)
}
