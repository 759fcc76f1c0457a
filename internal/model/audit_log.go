package model

import "time"

// AuditLog outcome values.
const (
	AuditSuccess = "success"
	AuditFailure = "failure"
	AuditDenied  = "denied"
)

// AuditLog records one actor action. OldValue and NewValue hold masked
// snapshots; writing the log never blocks the operation that produced it.
type AuditLog struct {
	ID             uint           `gorm:"primaryKey"`
	HospitalID     uint           `gorm:"not null;index"`
	DoctorID       *uint          `gorm:"index"`
	ReceptionistID *uint          `gorm:"index"`
	SubDoctorID    *string        `gorm:"type:uuid;index"`
	Role           string         `gorm:"size:25;not null"`
	Entity         *string        `gorm:"size:25"`
	EntityID       *string
	Status         string         `gorm:"not null"`
	Module         *string        `gorm:"size:40"`
	Endpoint       string         `gorm:"not null"`
	Action         string         `gorm:"not null"`
	Details        *string        `gorm:"type:text"`
	OldValue       map[string]any `gorm:"serializer:json"`
	NewValue       map[string]any `gorm:"serializer:json"`
	IPAddress      string
	UserAgent      string
	CreatedAt      time.Time
}
