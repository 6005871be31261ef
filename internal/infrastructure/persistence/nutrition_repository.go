package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockroom/backend/internal/domain/catalog"
	"github.com/stockroom/backend/internal/domain/shared"
	"github.com/stockroom/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormNutritionRepository implements NutritionRepository using GORM
type GormNutritionRepository struct {
	db *gorm.DB
}

// NewGormNutritionRepository creates a new GormNutritionRepository
func NewGormNutritionRepository(db *gorm.DB) *GormNutritionRepository {
	return &GormNutritionRepository{db: db}
}

// FindByID finds nutrition info by ID
func (r *GormNutritionRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.NutritionInfo, error) {
	var model models.NutritionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists nutrition records, newest first
func (r *GormNutritionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.NutritionInfo, error) {
	var rows []models.NutritionModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.NutritionModel{}), filter)
	query = applyPagination(query.Order("created_at DESC"), filter)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]catalog.NutritionInfo, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Count counts nutrition records matching the filter
func (r *GormNutritionRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.NutritionModel{}), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates nutrition info
func (r *GormNutritionRepository) Save(ctx context.Context, info *catalog.NutritionInfo) error {
	var model models.NutritionModel
	model.FromDomain(info)
	return r.db.WithContext(ctx).Save(&model).Error
}

// Delete removes nutrition info and unlinks the products using it
func (r *GormNutritionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Model(&models.ProductModel{}).
			Where("nutrition_id = ?", id).
			UpdateColumn("nutrition_id", nil).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.NutritionModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func (r *GormNutritionRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("LOWER(ingredients) LIKE ?", likePattern(filter.Search))
	}
	return query
}

// Ensure GormNutritionRepository implements NutritionRepository
var _ catalog.NutritionRepository = (*GormNutritionRepository)(nil)
