package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockroom/backend/internal/domain/identity"
	"github.com/stockroom/backend/internal/domain/shared"
	"github.com/stockroom/backend/internal/domain/shared/valueobject"
	"github.com/stockroom/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormUserRepository implements UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByID finds a user by ID, with the role name loaded
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).Preload("Role").First(&model, "users.id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByEmail finds a user by (normalized) email
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).Preload("Role").
		Where("email = ?", valueobject.NormalizeEmail(email)).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll returns users matching the filter
func (r *GormUserRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.User, error) {
	var rows []models.UserModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.UserModel{}).Preload("Role"), filter)
	query = applyOrder(query, filter, UserSortFields, "created_at DESC")
	query = applyPagination(query, filter)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toUsers(rows), nil
}

// Count counts users matching the filter
func (r *GormUserRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.UserModel{}), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindStaff returns every active user holding a staff role
func (r *GormUserRepository) FindStaff(ctx context.Context) ([]identity.User, error) {
	var rows []models.UserModel
	if err := r.db.WithContext(ctx).
		Preload("Role").
		Joins("JOIN roles ON roles.id = users.role_id").
		Where("roles.name IN ? AND users.active = ?", []string{identity.RoleNameAdmin, identity.RoleNameWarehouse}, true).
		Order("users.email ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toUsers(rows), nil
}

// ExistsByEmail checks if an email is already registered
func (r *GormUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return existsFolded(ctx, r.db, &models.UserModel{}, "email", email, nil)
}

// ExistsByRUT checks if a RUT is already registered
func (r *GormUserRepository) ExistsByRUT(ctx context.Context, rut string) (bool, error) {
	return existsRUT(ctx, r.db, &models.UserModel{}, rut, nil)
}

// Create inserts a new user
func (r *GormUserRepository) Create(ctx context.Context, user *identity.User) error {
	return translateError(r.db.WithContext(ctx).Omit(clause.Associations).Create(models.UserModelFromDomain(user)).Error)
}

// Update saves an existing user
func (r *GormUserRepository) Update(ctx context.Context, user *identity.User) error {
	result := r.db.WithContext(ctx).Omit(clause.Associations).Save(models.UserModelFromDomain(user))
	return translateError(result.Error)
}

func (r *GormUserRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where(
			"LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(rut) LIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}
	for key, value := range filter.Filters {
		switch key {
		case identity.FilterRoleID:
			query = query.Where("role_id = ?", value)
		case identity.FilterActive:
			query = query.Where("active = ?", value)
		}
	}
	return query
}

func toUsers(rows []models.UserModel) []identity.User {
	out := make([]identity.User, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

// existsRUT compares the canonical form of a RUT, ignoring excludeID when set
func existsRUT(ctx context.Context, db *gorm.DB, model interface{}, rut string, excludeID *uuid.UUID) (bool, error) {
	canonical := rut
	if parsed, err := valueobject.ParseRUT(rut); err == nil {
		canonical = parsed.String()
	}
	var count int64
	query := db.WithContext(ctx).Model(model).Where("rut = ?", canonical)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Ensure GormUserRepository implements UserRepository
var _ identity.UserRepository = (*GormUserRepository)(nil)
