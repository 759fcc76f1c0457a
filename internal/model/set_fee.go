package model

import "time"

// SetFee is a tenant's price for one visit reason, looked up at booking time.
type SetFee struct {
	ID        uint    `gorm:"primaryKey"`
	DoctorID  uint    `gorm:"not null;index"`
	FeesFor   string  `gorm:"not null"`
	Fees      float64 `gorm:"type:decimal(10,2);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Doctor *Doctor `gorm:"foreignKey:DoctorID"`
}
