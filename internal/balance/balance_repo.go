package balance

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// balanceColumn maps a leave category to its ledger column. Only the three
// tracked categories have a column; anything else carries no balance.
func balanceColumn(category string) (string, bool) {
	switch category {
	case "PAID":
		return "paid_balance", true
	case "UNPAID":
		return "unpaid_balance", true
	case "SICK":
		return "sick_balance", true
	default:
		return "", false
	}
}

//go:generate mockgen -source=balance_repo.go -destination=mock/balance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository

	// GetOrCreate returns the employee's balance, inserting a zero-balance
	// row first if none exists. The insert uses ON CONFLICT DO NOTHING so
	// concurrent first reads cannot create duplicates.
	GetOrCreate(ctx context.Context, employeeID string) (*LeaveBalance, error)
	FindByEmployee(ctx context.Context, employeeID string) (*LeaveBalance, error)
	Create(ctx context.Context, b *LeaveBalance) error
	Overwrite(ctx context.Context, employeeID string, paid, unpaid, sick float64) (int64, error)
	Delete(ctx context.Context, employeeID string) (int64, error)

	// DebitIfSufficient atomically decrements the category's balance by days
	// only when the current balance covers it. Returns false when the
	// conditional update matched no row. Unrecognized categories are a no-op
	// reported as success.
	DebitIfSufficient(ctx context.Context, employeeID, category string, days float64) (bool, error)

	// CreditPaid upserts the balance row and increments the paid balance.
	CreditPaid(ctx context.Context, employeeID string, days float64) error
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

// exec routes writes through the transaction when one is attached, matching
// the outbox repository so a service can bundle ledger writes with its own.
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

func (r *repository) GetOrCreate(ctx context.Context, employeeID string) (*LeaveBalance, error) {
	query := `
INSERT INTO leave_balances (id, employee_id, paid_balance, unpaid_balance, sick_balance, created_at, updated_at)
VALUES ($1, $2, 0, 0, 0, NOW(), NOW())
ON CONFLICT (employee_id) DO NOTHING
`
	if _, err := r.exec(ctx, query, uuid.New(), employeeID); err != nil {
		return nil, err
	}

	return r.FindByEmployee(ctx, employeeID)
}

func (r *repository) FindByEmployee(ctx context.Context, employeeID string) (*LeaveBalance, error) {
	var b LeaveBalance
	err := r.db.WithContext(ctx).First(&b, "employee_id = ?", employeeID).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repository) Create(ctx context.Context, b *LeaveBalance) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *repository) Overwrite(ctx context.Context, employeeID string, paid, unpaid, sick float64) (int64, error) {
	query := `
UPDATE leave_balances
SET paid_balance = $2, unpaid_balance = $3, sick_balance = $4, updated_at = NOW()
WHERE employee_id = $1
`
	return r.exec(ctx, query, employeeID, paid, unpaid, sick)
}

func (r *repository) Delete(ctx context.Context, employeeID string) (int64, error) {
	return r.exec(ctx, `DELETE FROM leave_balances WHERE employee_id = $1`, employeeID)
}

func (r *repository) DebitIfSufficient(ctx context.Context, employeeID, category string, days float64) (bool, error) {
	column, ok := balanceColumn(category)
	if !ok {
		return true, nil
	}

	query := fmt.Sprintf(`
UPDATE leave_balances
SET %[1]s = %[1]s - $1, updated_at = NOW()
WHERE employee_id = $2 AND %[1]s >= $1
`, column)

	rows, err := r.exec(ctx, query, days, employeeID)
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *repository) CreditPaid(ctx context.Context, employeeID string, days float64) error {
	query := `
INSERT INTO leave_balances (id, employee_id, paid_balance, unpaid_balance, sick_balance, created_at, updated_at)
VALUES ($1, $2, $3, 0, 0, NOW(), NOW())
ON CONFLICT (employee_id) DO UPDATE
SET paid_balance = leave_balances.paid_balance + EXCLUDED.paid_balance, updated_at = NOW()
`
	_, err := r.exec(ctx, query, uuid.New(), employeeID, days)
	return err
}
