package balance

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=balance_repo.go -destination=mock/balance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	FindByUser(ctx context.Context, userID string) ([]UserBalance, error)
	Upsert(ctx context.Context, b *UserBalance) error
	// Decrement subtracts days only when enough remain and reports whether a
	// row was updated.
	Decrement(ctx context.Context, userID, leaveType string, days int) (bool, error)
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

func (r *repository) FindByUser(ctx context.Context, userID string) ([]UserBalance, error) {
	var balances []UserBalance
	err := r.conn(ctx).
		Where("user_id = ?", userID).
		Order("leave_type ASC").
		Find(&balances).Error
	return balances, err
}

func (r *repository) Upsert(ctx context.Context, b *UserBalance) error {
	return r.conn(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "leave_type"}},
			DoUpdates: clause.AssignmentColumns([]string{"remaining", "updated_at"}),
		}).
		Create(b).Error
}

func (r *repository) Decrement(ctx context.Context, userID, leaveType string, days int) (bool, error) {
	res := r.conn(ctx).
		Model(&UserBalance{}).
		Where("user_id = ? AND leave_type = ? AND remaining >= ?", userID, leaveType, days).
		Updates(map[string]any{
			"remaining":  gorm.Expr("remaining - ?", days),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
