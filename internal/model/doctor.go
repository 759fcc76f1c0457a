package model

import "time"

// Doctor is the tenant root. Every receptionist, sub-doctor, patient, slot
// and appointment hangs off a Doctor row.
type Doctor struct {
	ID         uint   `gorm:"primaryKey"`
	Name       string `gorm:"type:text;not null"`
	ClinicName string `gorm:"not null"`
	// DoctorCode is the human-facing practitioner id shown on documents.
	DoctorCode           string  `gorm:"column:doctor_code;not null"`
	MobileNumber         string  `gorm:"type:text;not null"`
	Address              string  `gorm:"type:text;not null"`
	Email                string  `gorm:"not null;uniqueIndex"`
	DateOfBirth          *string `gorm:"type:text"`
	ClinicStartTime      *string
	ClinicEndTime        *string
	OpenDays             []string `gorm:"serializer:json"`
	ClosedDays           []string `gorm:"serializer:json"`
	ClinicAddress        string   `gorm:"not null"`
	Experience           string   `gorm:"not null"`
	Gender               string   `gorm:"not null"`
	Password             string   `gorm:"not null"`
	MedicalLicenceNumber string   `gorm:"type:text;not null"`
	MedicalDegree        string   `gorm:"not null"`
	// Mapping is the tenant's search index mapping, stored as encrypted JSON.
	// Generated exactly once at registration and never regenerated; changing
	// it would orphan every *Search column written under the old mapping.
	Mapping   string `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SubDoctor is a practitioner added under a tenant. Identified by UUID so
// slot and appointment references can tell the two practitioner kinds apart.
type SubDoctor struct {
	ID                    string `gorm:"primaryKey;type:uuid"`
	AddedBy               uint   `gorm:"not null;index"`
	Name                  string `gorm:"not null"`
	NameSearch            string `gorm:"index"`
	Email                 string `gorm:"not null;uniqueIndex"`
	MobileNumber          string `gorm:"not null"`
	MobileSearch          string `gorm:"index"`
	AlternateMobileNumber *string
	Password              *string
	Gender                string `gorm:"not null"`
	Specialization        string `gorm:"not null"`
	Qualification         *string
	Experience            *int
	DateOfBirth           *string
	Address               *string
	City                  *string
	State                 *string
	Country               *string
	PinCode               *string
	CreatedAt             time.Time
	UpdatedAt             time.Time

	Doctor *Doctor `gorm:"foreignKey:AddedBy"`
}

// Receptionist is front-desk staff under a tenant.
type Receptionist struct {
	ID               uint   `gorm:"primaryKey"`
	DoctorID         uint   `gorm:"not null;index"`
	Name             string `gorm:"not null"`
	ReceptionistCode string `gorm:"column:receptionist_code;not null"`
	MobileNumber     string `gorm:"not null"`
	Address          string `gorm:"not null"`
	Email            string `gorm:"not null;uniqueIndex"`
	DateOfBirth      *string
	Age              *int
	DateOfJoining    time.Time `gorm:"not null"`
	Gender           string    `gorm:"not null"`
	Qualification    string    `gorm:"type:text;not null"`
	Password         string    `gorm:"not null"`
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Doctor *Doctor `gorm:"foreignKey:DoctorID"`
}
