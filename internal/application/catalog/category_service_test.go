package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stockroom/backend/internal/domain/catalog"
	"github.com/stockroom/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCategoryService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates category", func(t *testing.T) {
		categoryRepo := new(MockCategoryRepository)
		svc := NewCategoryService(categoryRepo, new(MockProductRepository))
		categoryRepo.On("ExistsByName", ctx, "Panes", (*uuid.UUID)(nil)).Return(false, nil)
		categoryRepo.On("Save", ctx, mock.AnythingOfType("*catalog.Category")).Return(nil)

		resp, err := svc.Create(ctx, CategoryRequest{Name: "Panes", Description: "Pan del día"})

		require.NoError(t, err)
		assert.Equal(t, "Panes", resp.Name)
		categoryRepo.AssertExpectations(t)
	})

	t.Run("duplicate name is a field error", func(t *testing.T) {
		categoryRepo := new(MockCategoryRepository)
		svc := NewCategoryService(categoryRepo, new(MockProductRepository))
		categoryRepo.On("ExistsByName", ctx, "panes", (*uuid.UUID)(nil)).Return(true, nil)

		_, err := svc.Create(ctx, CategoryRequest{Name: "panes"})

		var verr *shared.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "name")
		categoryRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestCategoryService_Update(t *testing.T) {
	ctx := context.Background()
	categoryRepo := new(MockCategoryRepository)
	svc := NewCategoryService(categoryRepo, new(MockProductRepository))

	category, err := catalog.NewCategory("Pasteles", "")
	require.NoError(t, err)
	categoryRepo.On("FindByID", ctx, category.ID).Return(category, nil)
	categoryRepo.On("ExistsByName", ctx, "Pastelería", &category.ID).Return(false, nil)
	categoryRepo.On("Save", ctx, category).Return(nil)

	resp, err := svc.Update(ctx, category.ID, CategoryRequest{Name: "Pastelería", Description: "Dulces"})

	require.NoError(t, err)
	assert.Equal(t, "Pastelería", resp.Name)
	assert.Equal(t, "Dulces", resp.Description)
}

func TestCategoryService_GetByID(t *testing.T) {
	ctx := context.Background()
	categoryRepo := new(MockCategoryRepository)
	productRepo := new(MockProductRepository)
	svc := NewCategoryService(categoryRepo, productRepo)

	category, err := catalog.NewCategory("Panes", "")
	require.NoError(t, err)
	categoryRepo.On("FindByID", ctx, category.ID).Return(category, nil)
	productRepo.On("CountByCategory", ctx, category.ID).Return(int64(4), nil)

	resp, err := svc.GetByID(ctx, category.ID)

	require.NoError(t, err)
	require.NotNil(t, resp.ProductCount)
	assert.Equal(t, int64(4), *resp.ProductCount)

	missing := uuid.New()
	categoryRepo.On("FindByID", ctx, missing).Return(nil, shared.ErrNotFound)
	_, err = svc.GetByID(ctx, missing)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCategoryService_List(t *testing.T) {
	ctx := context.Background()
	categoryRepo := new(MockCategoryRepository)
	svc := NewCategoryService(categoryRepo, new(MockProductRepository))

	byName := mock.MatchedBy(func(f shared.Filter) bool {
		return f.OrderBy == "name" && f.OrderDir == "asc" && f.Page == 1 && f.PageSize == 20
	})
	categoryRepo.On("FindAll", ctx, byName).Return([]catalog.Category{{Name: "Panes"}}, nil)
	categoryRepo.On("Count", ctx, byName).Return(int64(1), nil)

	items, total, err := svc.List(ctx, ListFilter{})

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, items, 1)
}

func TestCategoryService_Delete(t *testing.T) {
	ctx := context.Background()
	categoryRepo := new(MockCategoryRepository)
	svc := NewCategoryService(categoryRepo, new(MockProductRepository))

	category, err := catalog.NewCategory("Panes", "")
	require.NoError(t, err)
	categoryRepo.On("FindByID", ctx, category.ID).Return(category, nil)
	categoryRepo.On("Delete", ctx, category.ID).Return(nil)

	require.NoError(t, svc.Delete(ctx, category.ID))
	categoryRepo.AssertExpectations(t)
}
