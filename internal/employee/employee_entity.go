package employee

import (
	"time"

	"github.com/google/uuid"
)

type Employee struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	FullName   string
	Email      string    `gorm:"uniqueIndex"`
	HireDate   time.Time `gorm:"type:date;not null"`
	IsPartTime bool      `gorm:"not null;default:false"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
