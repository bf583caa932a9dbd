package leave

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, l *Leave) error
	FindByID(ctx context.Context, id string) (*Leave, error)
	FindAll(ctx context.Context, limit, offset int) ([]Leave, int64, error)
	FindAllByEmployee(ctx context.Context, employeeID string) ([]Leave, error)
	// ApprovePending flips a PENDING request to APPROVED and records the
	// approver. Returns the number of rows changed, zero when the request
	// is missing or no longer pending.
	ApprovePending(ctx context.Context, id, approverID string, at time.Time) (int64, error)
	// SetDecision stamps a decision regardless of the current status.
	SetDecision(ctx context.Context, id, status, approverID string, at time.Time) (int64, error)
	// SetStatus updates the status only, used for cancellation.
	SetStatus(ctx context.Context, id, status string) (int64, error)
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

// exec routes write statements through the enlisted transaction when one is
// present, falling back to the shared pool otherwise.
func (r *repository) exec(ctx context.Context, query string, args ...any) (int64, error) {
	if r.tx != nil {
		res, err := r.tx.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, err
		}
		return res.RowsAffected()
	}
	res := r.db.WithContext(ctx).Exec(query, args...)
	return res.RowsAffected, res.Error
}

func (r *repository) Create(ctx context.Context, l *Leave) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*Leave, error) {
	var l Leave
	if err := r.db.WithContext(ctx).First(&l, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repository) FindAll(ctx context.Context, limit, offset int) ([]Leave, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&Leave{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var leaves []Leave
	err := r.db.WithContext(ctx).
		Order("requested_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&leaves).Error
	if err != nil {
		return nil, 0, err
	}
	return leaves, total, nil
}

func (r *repository) FindAllByEmployee(ctx context.Context, employeeID string) ([]Leave, error) {
	var leaves []Leave
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("requested_at DESC").
		Find(&leaves).Error
	if err != nil {
		return nil, err
	}
	return leaves, nil
}

func (r *repository) ApprovePending(ctx context.Context, id, approverID string, at time.Time) (int64, error) {
	return r.exec(ctx, `
		UPDATE leaves
		SET status = $1, approved_by = $2, approved_at = $3
		WHERE id = $4 AND status = $5`,
		StatusApproved, approverID, at, id, StatusPending,
	)
}

func (r *repository) SetDecision(ctx context.Context, id, status, approverID string, at time.Time) (int64, error) {
	return r.exec(ctx, `
		UPDATE leaves
		SET status = $1, approved_by = $2, approved_at = $3
		WHERE id = $4`,
		status, approverID, at, id,
	)
}

func (r *repository) SetStatus(ctx context.Context, id, status string) (int64, error) {
	return r.exec(ctx, `
		UPDATE leaves
		SET status = $1
		WHERE id = $2`,
		status, id,
	)
}
