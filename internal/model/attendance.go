package model

import "time"

// Attendance is one working day of a receptionist. CheckOutTime stays nil
// until they check out.
type Attendance struct {
	ID             uint      `gorm:"primaryKey"`
	ReceptionistID uint      `gorm:"not null;index"`
	CheckInTime    time.Time `gorm:"not null"`
	CheckOutTime   *time.Time
	Date           string `gorm:"not null;index"`
	CreatedAt      time.Time

	Receptionist *Receptionist `gorm:"foreignKey:ReceptionistID"`
}
