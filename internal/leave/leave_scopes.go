package leave

import (
	"flexileave/internal/leave/policy"

	"gorm.io/gorm"
)

func ownedBy(ownerID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("owner_id = ?", ownerID)
	}
}

// blocking keeps the requests that still hold their dates: pending and
// approved.
func blocking(db *gorm.DB) *gorm.DB {
	return db.Where("status NOT IN ?", []string{string(policy.StatusRejected), string(policy.StatusCancelled)})
}

func withStatus(status string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if status == "" {
			return db
		}
		return db.Where("status = ?", status)
	}
}
