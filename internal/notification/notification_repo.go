package notification

import (
	"context"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=notification_repo.go -destination=mock/notification_repo_mock.go -package=mock
type Repository interface {
	CreateMany(ctx context.Context, items []Notification) error
	ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]Notification, error)
	// MarkRead reports false when no unread notification of userID has that id.
	MarkRead(ctx context.Context, id, userID string, at time.Time) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateMany(ctx context.Context, items []Notification) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]Notification, error) {
	var items []Notification
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("read_at IS NULL")
	}
	err := q.Order("created_at DESC").Limit(limit).Find(&items).Error
	return items, err
}

func (r *repository) MarkRead(ctx context.Context, id, userID string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&Notification{}).
		Where("id = ? AND user_id = ? AND read_at IS NULL", id, userID).
		Update("read_at", at)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
