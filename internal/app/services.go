package app

import (
	"github.com/nats-io/nats.go"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/cliniva/cliniva_backend/config"
	"github.com/cliniva/cliniva_backend/internal/service/appointment"
	"github.com/cliniva/cliniva_backend/internal/service/attendance"
	"github.com/cliniva/cliniva_backend/internal/service/audit"
	"github.com/cliniva/cliniva_backend/internal/service/availability"
	"github.com/cliniva/cliniva_backend/internal/service/fees"
	"github.com/cliniva/cliniva_backend/internal/service/medicine"
	"github.com/cliniva/cliniva_backend/internal/service/notification"
	"github.com/cliniva/cliniva_backend/internal/service/patient"
	"github.com/cliniva/cliniva_backend/internal/service/practitioner"
	"github.com/cliniva/cliniva_backend/internal/service/realtime"
	"github.com/cliniva/cliniva_backend/internal/service/slot"
	"github.com/cliniva/cliniva_backend/pkg/constants"
	"github.com/cliniva/cliniva_backend/pkg/crypto"
)

// EncryptionKey is the tenant field-encryption key decoded from config.
// A named type keeps fx from confusing it with other []byte values.
type EncryptionKey []byte

// ServiceModule provides all application service dependencies.
var ServiceModule = fx.Module("services",
	fx.Provide(
		ProvideEncryptionKey,
		ProvideSlotService,
		ProvideAvailabilityService,
		ProvideAppointmentService,
		ProvidePatientService,
		ProvidePractitionerService,
		ProvideFeesService,
		ProvideMedicineService,
		ProvideNotificationService,
		ProvideAuditService,
		ProvideAttendanceService,
		ProvideRealtimeRegistry,
	),
)

func ProvideEncryptionKey(cfg *config.Config) (EncryptionKey, error) {
	key, err := crypto.KeyFromHex(cfg.Security.EncryptionKey)
	if err != nil {
		return nil, err
	}
	return EncryptionKey(key), nil
}

func ProvideSlotService(db *gorm.DB) slot.Service {
	return slot.New(db)
}

func ProvideAvailabilityService(db *gorm.DB, cfg *config.Config) availability.Service {
	return availability.New(db, cfg.Booking.CountCancelled)
}

func ProvideAppointmentService(db *gorm.DB, avail availability.Service, key EncryptionKey, nc *nats.Conn) appointment.Service {
	return appointment.New(db, avail, []byte(key), nc)
}

func ProvidePatientService(db *gorm.DB, appts appointment.Service, key EncryptionKey) patient.Service {
	return patient.New(db, appts, []byte(key), constants.PhoneRegion)
}

func ProvidePractitionerService(db *gorm.DB, key EncryptionKey) practitioner.Service {
	return practitioner.New(db, []byte(key), constants.PhoneRegion)
}

func ProvideFeesService(db *gorm.DB) fees.Service {
	return fees.New(db)
}

func ProvideMedicineService(db *gorm.DB) medicine.Service {
	return medicine.New(db)
}

func ProvideNotificationService(db *gorm.DB, nc *nats.Conn) notification.Service {
	return notification.New(db, nc)
}

func ProvideAuditService(db *gorm.DB) audit.Service {
	return audit.New(db)
}

func ProvideAttendanceService(db *gorm.DB, notifier notification.Service, key EncryptionKey) attendance.Service {
	return attendance.New(db, notifier, []byte(key))
}

func ProvideRealtimeRegistry() *realtime.Registry {
	return realtime.NewRegistry()
}
