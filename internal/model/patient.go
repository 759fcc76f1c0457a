package model

import "time"

// Patient belongs to a tenant. Name and mobile are stored encrypted; the
// *Search columns carry their substitution-transformed plaintext so the
// front desk can search by partial name or number.
type Patient struct {
	ID           uint   `gorm:"primaryKey"`
	DoctorID     uint   `gorm:"not null;index"`
	Name         string `gorm:"not null"`
	NameSearch   string `gorm:"index"`
	MobileSearch string `gorm:"index"`
	// PatientCode is the human-facing id (name initials plus five digits).
	PatientCode  string `gorm:"column:patient_code;not null;index"`
	MobileNumber string `gorm:"not null"`
	Address      string `gorm:"not null"`
	Email        *string
	Age          string `gorm:"not null"`
	DateOfBirth  string `gorm:"not null"`
	BloodGroup   string `gorm:"not null"`
	Gender       string `gorm:"not null"`
	Toxicity     bool   `gorm:"default:false"`
	ReferredBy   *string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Doctor *Doctor `gorm:"foreignKey:DoctorID"`
}
