package balance

import (
	"time"

	"github.com/google/uuid"
)

// Accrual rates in days of paid leave per month of tenure.
const (
	MonthlyCreditFullTime = 2.5
	MonthlyCreditPartTime = 1.25

	// MaxPaidBalance caps the recomputed paid balance in AutoAccrue.
	MaxPaidBalance = 90.0
)

// LeaveBalance is the per-employee ledger record. At most one row exists per
// employee, enforced by the unique index.
type LeaveBalance struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmployeeID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_leave_balances_employee"`
	PaidBalance   float64   `gorm:"not null;default:0"`
	UnpaidBalance float64   `gorm:"not null;default:0"`
	SickBalance   float64   `gorm:"not null;default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
