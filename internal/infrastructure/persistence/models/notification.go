package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/stockroom/backend/internal/domain/notification"
)

// NotificationModel is the persistence model for user notifications.
// DedupKey is NULL for notifications that may repeat; NULLs never collide
// in the unique index.
type NotificationModel struct {
	BaseModel
	UserID    uuid.UUID         `gorm:"type:uuid;not null;index;uniqueIndex:idx_notification_dedup,priority:1"`
	ProductID *uuid.UUID        `gorm:"type:uuid;index"`
	Kind      notification.Kind `gorm:"type:varchar(20);not null"`
	Message   string            `gorm:"type:varchar(255);not null"`
	Read      bool              `gorm:"column:is_read;not null;default:false"`
	ReadAt    *time.Time
	DedupKey  *string `gorm:"type:varchar(100);uniqueIndex:idx_notification_dedup,priority:2"`
}

// TableName returns the table name for GORM
func (NotificationModel) TableName() string {
	return "notifications"
}

// ToDomain converts the persistence model to a domain Notification.
func (m *NotificationModel) ToDomain() *notification.Notification {
	n := &notification.Notification{
		BaseEntity: m.BaseModel.ToDomain(),
		UserID:     m.UserID,
		ProductID:  m.ProductID,
		Kind:       m.Kind,
		Message:    m.Message,
		Read:       m.Read,
		ReadAt:     m.ReadAt,
	}
	if m.DedupKey != nil {
		n.DedupKey = *m.DedupKey
	}
	return n
}

// FromDomain populates the persistence model from a domain Notification.
func (m *NotificationModel) FromDomain(n *notification.Notification) {
	m.FromDomainBaseEntity(n.BaseEntity)
	m.UserID = n.UserID
	m.ProductID = n.ProductID
	m.Kind = n.Kind
	m.Message = n.Message
	m.Read = n.Read
	m.ReadAt = n.ReadAt
	m.DedupKey = nil
	if n.DedupKey != "" {
		key := n.DedupKey
		m.DedupKey = &key
	}
}
