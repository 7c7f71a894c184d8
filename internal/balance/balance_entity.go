package balance

import (
	"time"

	"github.com/google/uuid"
)

type UserBalance struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_user_balance_type"`
	LeaveType string    `gorm:"type:varchar(40);not null;uniqueIndex:uq_user_balance_type"`
	Remaining int       `gorm:"type:int;not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (UserBalance) TableName() string { return "user_balances" }
