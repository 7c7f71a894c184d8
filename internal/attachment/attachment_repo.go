package attachment

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

//go:generate mockgen -source=attachment_repo.go -destination=mock/attachment_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, f *LeaveFile) error
	FindByID(ctx context.Context, id string) (*LeaveFile, error)
	ListByLeave(ctx context.Context, leaveID string) ([]LeaveFile, error)
	CountByLeave(ctx context.Context, leaveID string) (int, error)
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) conn(ctx context.Context) *gorm.DB {
	db := r.db.WithContext(ctx)
	if r.tx != nil {
		db.Statement.ConnPool = r.tx
	}
	return db
}

func (r *repository) Create(ctx context.Context, f *LeaveFile) error {
	return r.conn(ctx).Create(f).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*LeaveFile, error) {
	var f LeaveFile
	if err := r.conn(ctx).Where("id = ?", id).First(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *repository) ListByLeave(ctx context.Context, leaveID string) ([]LeaveFile, error) {
	var files []LeaveFile
	err := r.conn(ctx).
		Where("leave_id = ?", leaveID).
		Order("created_at ASC").
		Find(&files).Error
	return files, err
}

func (r *repository) CountByLeave(ctx context.Context, leaveID string) (int, error) {
	var count int64
	err := r.conn(ctx).Model(&LeaveFile{}).Where("leave_id = ?", leaveID).Count(&count).Error
	return int(count), err
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.conn(ctx).Where("id = ?", id).Delete(&LeaveFile{}).Error
}
