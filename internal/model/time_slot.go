package model

import "time"

// TimeSlot is a bookable window owned by exactly one practitioner: either a
// Doctor (DoctorID set) or a SubDoctor (SubDoctorID set), never both.
//
// StartTime and EndTime are "HH:mm:ss" strings. AvailabilityDays holds the
// weekdays the slot is open, 0=Sunday through 6=Saturday. MaxCapacity nil
// means unlimited.
//
// SlotName is unique per owner. The two composite unique indexes close the
// race left open by the service-level existence check; the NULL half of the
// owner pair keeps doctor and sub-doctor slots from colliding.
type TimeSlot struct {
	ID               uint    `gorm:"primaryKey"`
	DoctorID         *uint   `gorm:"uniqueIndex:idx_slot_doctor_name"`
	SubDoctorID      *string `gorm:"type:uuid;uniqueIndex:idx_slot_subdoctor_name"`
	SlotName         string  `gorm:"not null;uniqueIndex:idx_slot_doctor_name;uniqueIndex:idx_slot_subdoctor_name"`
	StartTime        string  `gorm:"not null"`
	EndTime          string  `gorm:"not null"`
	MaxCapacity      *int
	AvailabilityDays []int `gorm:"serializer:json;not null"`
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Doctor    *Doctor    `gorm:"foreignKey:DoctorID"`
	SubDoctor *SubDoctor `gorm:"foreignKey:SubDoctorID"`
}
