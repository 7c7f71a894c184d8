package leave

import (
	"time"

	"flexileave/internal/leave/policy"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Leave struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Reference string    `gorm:"type:varchar(32);not null;uniqueIndex"`
	OwnerID   uuid.UUID `gorm:"type:uuid;not null;index:idx_leaves_owner_dates"`

	LeaveType string    `gorm:"type:varchar(40);not null"`
	StartDate time.Time `gorm:"type:date;not null;index:idx_leaves_owner_dates"`
	EndDate   time.Time `gorm:"type:date;not null;index:idx_leaves_owner_dates"`
	Days      int       `gorm:"type:int;not null"`
	Reason    string    `gorm:"type:text;not null"`

	Status           string     `gorm:"type:varchar(20);not null;default:'pending';index:idx_leaves_status"`
	RejectionReason  *string    `gorm:"type:text"`
	EmergencyContact *string    `gorm:"type:varchar(255)"`
	EmergencyPhone   *string    `gorm:"type:varchar(50)"`
	DecidedBy        *uuid.UUID `gorm:"type:uuid"`
	DecidedAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Leave) TableName() string { return "leaves" }

func (l Leave) Period() policy.Period {
	return policy.Period{Start: l.StartDate, End: l.EndDate}
}

func (l Leave) Subject() policy.Subject {
	return policy.Subject{
		OwnerID: l.OwnerID.String(),
		Status:  policy.Status(l.Status),
		EndDate: l.EndDate,
	}
}

func toExisting(leaves []Leave) []policy.ExistingRequest {
	out := make([]policy.ExistingRequest, len(leaves))
	for i, l := range leaves {
		out[i] = policy.ExistingRequest{
			ID:     l.ID.String(),
			Status: policy.Status(l.Status),
			Period: l.Period(),
		}
	}
	return out
}
