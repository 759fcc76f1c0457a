package model

import "time"

// Notification is a short message on the tenant's dashboard bell. Rows are
// written by services (receptionist check-in and check-out), fanned out over
// the realtime stream, and read and cleared by the doctor.
type Notification struct {
	ID        uint   `gorm:"primaryKey"`
	DoctorID  uint   `gorm:"not null;index"`
	Message   string `gorm:"not null"`
	IsRead    bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
