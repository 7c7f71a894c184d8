package counter

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

// Repository hands out gap-free sequence numbers, one series per
// (sequence, period) pair. A value taken inside a transaction is returned to
// the pool if that transaction rolls back.
//
//go:generate mockgen -destination=mock/counter_repo_mock.go -package=mock . Repository
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Next(ctx context.Context, sequence string, period int) (int64, error)
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

func (r *repository) Next(ctx context.Context, sequence string, period int) (int64, error) {
	var next int64

	// the row lock taken by the upsert serializes callers on the same series
	err := r.conn(ctx).Raw(`
		INSERT INTO reference_counters (sequence, period, last_value, updated_at)
		VALUES (?, ?, 1, now())
		ON CONFLICT (sequence, period) DO UPDATE
		SET last_value = reference_counters.last_value + 1, updated_at = now()
		RETURNING last_value
	`, sequence, period).Scan(&next).Error
	if err != nil {
		return 0, err
	}
	return next, nil
}
