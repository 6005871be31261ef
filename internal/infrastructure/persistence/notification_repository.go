package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stockroom/backend/internal/domain/notification"
	"github.com/stockroom/backend/internal/domain/shared"
	"github.com/stockroom/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormNotificationRepository implements notification.Repository using GORM
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new GormNotificationRepository
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// FindByID finds a notification by ID
func (r *GormNotificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	var model models.NotificationModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByUser lists a user's notifications, newest first
func (r *GormNotificationRepository) FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]notification.Notification, error) {
	var rows []models.NotificationModel
	query := r.scope(r.db.WithContext(ctx).Model(&models.NotificationModel{}), userID, filter)
	query = applyPagination(query.Order("created_at DESC"), filter)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]notification.Notification, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// CountByUser counts a user's notifications matching the filter
func (r *GormNotificationRepository) CountByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.scope(r.db.WithContext(ctx).Model(&models.NotificationModel{}), userID, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create inserts notifications; rows whose (user, dedup key) already exists are skipped
func (r *GormNotificationRepository) Create(ctx context.Context, notifications ...*notification.Notification) (int64, error) {
	if len(notifications) == 0 {
		return 0, nil
	}
	rows := make([]models.NotificationModel, len(notifications))
	for i, n := range notifications {
		rows[i].FromDomain(n)
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(rows, 100)
	return result.RowsAffected, result.Error
}

// Save updates an existing notification
func (r *GormNotificationRepository) Save(ctx context.Context, n *notification.Notification) error {
	var model models.NotificationModel
	model.FromDomain(n)
	return r.db.WithContext(ctx).Save(&model).Error
}

// MarkAllRead flags every unread notification of the user and returns how many changed
func (r *GormNotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&models.NotificationModel{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": now, "updated_at": now})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *GormNotificationRepository) scope(query *gorm.DB, userID uuid.UUID, filter shared.Filter) *gorm.DB {
	query = query.Where("user_id = ?", userID)
	if unread, ok := filter.Filters[notification.FilterUnread].(bool); ok && unread {
		query = query.Where("is_read = ?", false)
	}
	return query
}

// Ensure GormNotificationRepository implements notification.Repository
var _ notification.Repository = (*GormNotificationRepository)(nil)
