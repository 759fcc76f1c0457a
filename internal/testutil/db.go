// Package testutil provides the in-memory database the service tests run on.
package testutil

import (
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cliniva/cliniva_backend/internal/model"
)

// NewDB opens a fresh in-memory SQLite database migrated to the current
// models. The single-connection pool keeps every session on the same
// in-memory instance.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap database: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// SeedDoctor inserts a tenant with placeholder profile fields.
func SeedDoctor(t *testing.T, db *gorm.DB, email string) *model.Doctor {
	t.Helper()

	doc := &model.Doctor{
		Name:                 "Dr. Test",
		ClinicName:           "Test Clinic",
		DoctorCode:           "DT00001",
		MobileNumber:         "+989121234567",
		Address:              "1 Test St",
		Email:                email,
		ClinicAddress:        "1 Test St",
		Experience:           "10",
		Gender:               model.GenderFemale,
		Password:             "x",
		MedicalLicenceNumber: "ML-1",
		MedicalDegree:        "MD",
	}
	if err := db.Create(doc).Error; err != nil {
		t.Fatalf("seed doctor: %v", err)
	}
	return doc
}

// SeedSlot inserts a time slot for the given doctor tenant.
func SeedSlot(t *testing.T, db *gorm.DB, doctorID uint, name, start, end string, capacity *int, days []int) *model.TimeSlot {
	t.Helper()

	ts := &model.TimeSlot{
		DoctorID:         &doctorID,
		SlotName:         name,
		StartTime:        start,
		EndTime:          end,
		MaxCapacity:      capacity,
		AvailabilityDays: days,
	}
	if err := db.Create(ts).Error; err != nil {
		t.Fatalf("seed slot: %v", err)
	}
	return ts
}

// SeedPatient inserts a patient under the given tenant. Name is stored as
// given; tests that exercise decryption pass ciphertext themselves.
func SeedPatient(t *testing.T, db *gorm.DB, doctorID uint, name, code string) *model.Patient {
	t.Helper()

	p := &model.Patient{
		DoctorID:     doctorID,
		Name:         name,
		PatientCode:  code,
		MobileNumber: "enc",
		Address:      "enc",
		Age:          "30",
		DateOfBirth:  "1996-01-01",
		BloodGroup:   "O+",
		Gender:       model.GenderMale,
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("seed patient: %v", err)
	}
	return p
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }

// UniqueEmail derives a throwaway unique address from a counter.
func UniqueEmail(n int) string { return fmt.Sprintf("test%d@example.com", n) }
