package attachment

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LeaveFile struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey"`
	LeaveID     uuid.UUID      `gorm:"type:uuid;not null;index"`
	Name        string         `gorm:"type:varchar(255);not null"`
	Size        int64          `gorm:"not null"`
	ContentType string         `gorm:"type:varchar(127);not null"`
	ObjectKey   string         `gorm:"type:text;not null"`
	UploadedBy  uuid.UUID      `gorm:"type:uuid;not null"`
	CreatedAt   time.Time      `gorm:"not null;default:now()"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (LeaveFile) TableName() string {
	return "leave_files"
}
