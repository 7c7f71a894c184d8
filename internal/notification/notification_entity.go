package notification

import (
	"time"

	"github.com/google/uuid"
)

// Notification.Kind carries the leave event type that produced it.
type Notification struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index"`
	LeaveID   *uuid.UUID `gorm:"column:leave_id;type:uuid"`
	Kind      string     `gorm:"column:kind;type:varchar(40);not null"`
	Title     string     `gorm:"column:title;type:varchar(255);not null"`
	Message   string     `gorm:"column:message;type:text;not null"`
	ReadAt    *time.Time `gorm:"column:read_at"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (Notification) TableName() string {
	return "notifications"
}
