package model

import "time"

// Medicine is one entry in a tenant's drug catalog, picked from when writing
// prescriptions. Catalog data is not PII and is stored in plaintext so the
// list can be narrowed with a plain LIKE.
type Medicine struct {
	ID        uint   `gorm:"primaryKey"`
	DoctorID  uint   `gorm:"not null;index"`
	Name      string `gorm:"column:medicine_name;not null"`
	Strength  string `gorm:"not null"`
	Form      string `gorm:"not null"`
	Category  string `gorm:"not null"`
	Brand     string `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Doctor *Doctor `gorm:"foreignKey:DoctorID"`
}
