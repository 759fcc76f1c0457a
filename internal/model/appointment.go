package model

import "time"

// Appointment is a booked visit. Rows are never hard-deleted: cancelling
// sets Status to "cancel" and keeps the row for history and numbering.
//
// Date is a "2006-01-02" string and AppointmentTime the "HH:mm - HH:mm"
// window label the visit was booked into. AppointmentNumber is the 1-based
// position of this booking within its practitioner's day.
//
// Exactly one of DoctorID/SubDoctorID is set. Clinical fields (Reason, Note,
// ChiefComplaints, Investigation, Diagnosis, Prescription, Parameters,
// FollowUp, Document) are stored encrypted; JSON values are serialized
// before encryption.
type Appointment struct {
	ID                uint    `gorm:"primaryKey"`
	PatientID         uint    `gorm:"not null;index"`
	DoctorID          *uint   `gorm:"index:idx_appt_doctor_date"`
	SubDoctorID       *string `gorm:"type:uuid;index:idx_appt_subdoctor_date"`
	AppointmentNumber int     `gorm:"not null"`
	Reason            string  `gorm:"type:text;not null"`
	Date              string  `gorm:"not null;index:idx_appt_doctor_date;index:idx_appt_subdoctor_date"`
	Process           string  `gorm:"not null"`
	Fees              int     `gorm:"not null"`
	ExtraFees         int     `gorm:"not null"`
	Status            *AppointmentStatus
	PaymentStatus     string `gorm:"default:pending"`
	Document          []byte
	DocumentType      *string
	PaymentMode       *string
	Parameters        *string `gorm:"type:text"`
	Note              *string `gorm:"type:text"`
	ChiefComplaints   *string `gorm:"type:text"`
	Investigation     *string `gorm:"type:text"`
	Diagnosis         *string `gorm:"type:text"`
	Prescription      *string `gorm:"type:text"`
	FollowUp          *string `gorm:"type:text"`
	AppointmentTime   *string
	CreatedAt         time.Time
	UpdatedAt         time.Time

	Patient   *Patient   `gorm:"foreignKey:PatientID"`
	Doctor    *Doctor    `gorm:"foreignKey:DoctorID"`
	SubDoctor *SubDoctor `gorm:"foreignKey:SubDoctorID"`
}
