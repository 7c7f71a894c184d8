package leave

import (
	"context"
	"database/sql"

	"flexileave/internal/leave/policy"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	// LockOwner serializes writers for one owner until the transaction ends.
	LockOwner(ctx context.Context, ownerID string) error
	Create(ctx context.Context, l *Leave) error
	Update(ctx context.Context, l *Leave) error
	FindByID(ctx context.Context, id string) (*Leave, error)
	FindByIDForUpdate(ctx context.Context, id string) (*Leave, error)
	ListByOwner(ctx context.Context, ownerID, status string) ([]Leave, error)
	ListActiveByOwner(ctx context.Context, ownerID string) ([]Leave, error)
	ListPendingExcluding(ctx context.Context, ownerID string) ([]Leave, error)
	CountAttachments(ctx context.Context, leaveID string) (int, error)
	CountAttachmentsByLeave(ctx context.Context, leaveIDs []string) (map[string]int, error)
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

func (r *repository) LockOwner(ctx context.Context, ownerID string) error {
	return r.conn(ctx).Exec("SELECT pg_advisory_xact_lock(hashtext(?))", ownerID).Error
}

func (r *repository) Create(ctx context.Context, l *Leave) error {
	return r.conn(ctx).Create(l).Error
}

func (r *repository) Update(ctx context.Context, l *Leave) error {
	return r.conn(ctx).Save(l).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*Leave, error) {
	var l Leave
	err := r.conn(ctx).First(&l, "id = ?", id).Error
	return &l, err
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id string) (*Leave, error) {
	var l Leave
	err := r.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&l, "id = ?", id).Error
	return &l, err
}

func (r *repository) ListByOwner(ctx context.Context, ownerID, status string) ([]Leave, error) {
	var leaves []Leave
	err := r.conn(ctx).
		Scopes(ownedBy(ownerID), withStatus(status)).
		Order("start_date DESC").
		Find(&leaves).Error
	return leaves, err
}

func (r *repository) ListActiveByOwner(ctx context.Context, ownerID string) ([]Leave, error) {
	var leaves []Leave
	err := r.conn(ctx).
		Scopes(ownedBy(ownerID), blocking).
		Order("start_date ASC").
		Find(&leaves).Error
	return leaves, err
}

// ListPendingExcluding lists the approval queue without the caller's own
// requests.
func (r *repository) ListPendingExcluding(ctx context.Context, ownerID string) ([]Leave, error) {
	var leaves []Leave
	err := r.conn(ctx).
		Scopes(withStatus(string(policy.StatusPending))).
		Where("owner_id <> ?", ownerID).
		Order("start_date ASC").
		Find(&leaves).Error
	return leaves, err
}

func (r *repository) CountAttachments(ctx context.Context, leaveID string) (int, error) {
	var count int64
	err := r.conn(ctx).
		Table("leave_files").
		Where("leave_id = ?", leaveID).
		Where("deleted_at IS NULL").
		Count(&count).Error
	return int(count), err
}

type attachmentCount struct {
	LeaveID string
	Count   int
}

// CountAttachmentsByLeave returns live attachment counts keyed by leave id.
// Leaves without files are absent from the map.
func (r *repository) CountAttachmentsByLeave(ctx context.Context, leaveIDs []string) (map[string]int, error) {
	counts := make(map[string]int, len(leaveIDs))
	if len(leaveIDs) == 0 {
		return counts, nil
	}

	var rows []attachmentCount
	err := r.conn(ctx).
		Table("leave_files").
		Select("leave_id, count(*) AS count").
		Where("leave_id IN ?", leaveIDs).
		Where("deleted_at IS NULL").
		Group("leave_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.LeaveID] = row.Count
	}
	return counts, nil
}
