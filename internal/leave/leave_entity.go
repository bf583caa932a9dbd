package leave

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending   = "PENDING"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
	StatusCancelled = "CANCELLED"
)

const (
	TypePaid     = "PAID"
	TypeUnpaid   = "UNPAID"
	TypeSick     = "SICK"
	TypeParental = "PARENTAL"
	TypeOther    = "OTHER"
)

type Leave struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index:idx_leaves_employee_dates"`

	LeaveType string    `gorm:"type:varchar(20);not null;default:'PAID'"`
	StartDate time.Time `gorm:"type:date;not null;index:idx_leaves_employee_dates"`
	EndDate   time.Time `gorm:"type:date;not null;index:idx_leaves_employee_dates"`
	Comment   string    `gorm:"type:text"`
	Reason    string    `gorm:"type:text"`

	Status      string `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_leaves_status"`
	RequestedAt time.Time
	ApprovedBy  *uuid.UUID `gorm:"type:uuid"`
	ApprovedAt  *time.Time
}
