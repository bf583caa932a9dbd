package holiday

import (
	"time"

	"github.com/google/uuid"
)

type PublicHoliday struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"type:varchar(120);not null"`
	Date        time.Time `gorm:"type:date;not null;index:idx_public_holidays_date"`
	CountryCode string    `gorm:"type:varchar(5)"`
	CreatedAt   time.Time
}
