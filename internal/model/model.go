// Package model defines the persistence models shared by all services.
//
// Columns holding patient or practitioner PII (names, mobile numbers,
// addresses, clinical notes) store AES-CBC ciphertext in the "ivHex:cipherHex"
// format; the services encrypt before writing and decrypt after reading.
// The *Search columns hold the substitution-transformed plaintext used for
// LIKE queries, recomputed on every write with the owning tenant's mapping.
package model

// Gender values accepted across the models.
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// AppointmentStatus is the visit lifecycle state. A fresh booking has no
// status (NULL) until the patient checks in.
type AppointmentStatus string

const (
	StatusIn     AppointmentStatus = "in"
	StatusOut    AppointmentStatus = "out"
	StatusCancel AppointmentStatus = "cancel"
)

// PaymentStatus values for an appointment.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentCancelled = "cancelled"
)

// All returns every model for auto-migration, ordered so foreign key targets
// are created first.
func All() []any {
	return []any{
		&Doctor{},
		&SubDoctor{},
		&Receptionist{},
		&Patient{},
		&TimeSlot{},
		&Appointment{},
		&SetFee{},
		&Medicine{},
		&Notification{},
		&Attendance{},
		&AuditLog{},
	}
}
