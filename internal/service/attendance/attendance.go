// Package attendance tracks receptionist working days.
package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/cliniva/cliniva_backend/internal/model"
	"github.com/cliniva/cliniva_backend/internal/service/notification"
	"github.com/cliniva/cliniva_backend/pkg/crypto"
)

const dateLayout = "2006-01-02"

var (
	ErrAlreadyCheckedIn = errors.New("already checked in today")
	ErrNotCheckedIn     = errors.New("not checked in today")
	ErrNotFound         = errors.New("receptionist not found")
)

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	// CheckIn opens today's attendance row. One row per receptionist per day.
	CheckIn(ctx context.Context, receptionistID uint) (*model.Attendance, error)
	CheckOut(ctx context.Context, receptionistID uint) (*model.Attendance, error)
	// ForDate lists the attendance of every receptionist of the tenant.
	ForDate(ctx context.Context, hospitalID uint, date string) ([]model.Attendance, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type attendanceService struct {
	db       *gorm.DB
	notifier notification.Service
	key      []byte
	now      func() time.Time
}

// New builds the service. notifier may be nil; attendance then changes
// without raising dashboard messages.
func New(db *gorm.DB, notifier notification.Service, key []byte) Service {
	return &attendanceService{db: db, notifier: notifier, key: key, now: time.Now}
}

func (s *attendanceService) CheckIn(ctx context.Context, receptionistID uint) (*model.Attendance, error) {
	var rec model.Receptionist
	if err := s.db.WithContext(ctx).First(&rec, receptionistID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get receptionist: %w", err)
	}

	now := s.now()
	today := now.Format(dateLayout)

	var count int64
	err := s.db.WithContext(ctx).Model(&model.Attendance{}).
		Where("receptionist_id = ? AND date = ?", receptionistID, today).
		Count(&count).Error
	if err != nil {
		return nil, fmt.Errorf("check attendance: %w", err)
	}
	if count > 0 {
		return nil, ErrAlreadyCheckedIn
	}

	row := &model.Attendance{
		ReceptionistID: receptionistID,
		CheckInTime:    now,
		Date:           today,
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, fmt.Errorf("create attendance: %w", err)
	}

	s.notifyDesk(ctx, &rec, "checked in", now)
	return row, nil
}

func (s *attendanceService) CheckOut(ctx context.Context, receptionistID uint) (*model.Attendance, error) {
	var rec model.Receptionist
	if err := s.db.WithContext(ctx).First(&rec, receptionistID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get receptionist: %w", err)
	}

	now := s.now()
	today := now.Format(dateLayout)

	var row model.Attendance
	err := s.db.WithContext(ctx).
		Where("receptionist_id = ? AND date = ?", receptionistID, today).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotCheckedIn
		}
		return nil, fmt.Errorf("get attendance: %w", err)
	}

	// Repeated check-outs keep the first time.
	if row.CheckOutTime == nil {
		row.CheckOutTime = &now
		if err := s.db.WithContext(ctx).Save(&row).Error; err != nil {
			return nil, fmt.Errorf("update attendance: %w", err)
		}
		s.notifyDesk(ctx, &rec, "checked out", now)
	}
	return &row, nil
}

func (s *attendanceService) ForDate(ctx context.Context, hospitalID uint, date string) ([]model.Attendance, error) {
	var rows []model.Attendance
	err := s.db.WithContext(ctx).
		Joins("JOIN receptionists ON receptionists.id = attendances.receptionist_id").
		Where("receptionists.doctor_id = ?", hospitalID).
		Where("attendances.date = ?", date).
		Preload("Receptionist").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return rows, nil
}

// notifyDesk raises the tenant dashboard message. Best effort: a failed
// notification never fails the attendance change.
func (s *attendanceService) notifyDesk(ctx context.Context, rec *model.Receptionist, verb string, at time.Time) {
	if s.notifier == nil {
		return
	}

	name := "Receptionist"
	if s.key != nil {
		if n, err := crypto.Decrypt(s.key, rec.Name); err == nil {
			name = "Receptionist " + n
		}
	}
	msg := fmt.Sprintf("%s %s at %s.", name, verb, at.Format("03:04 PM, 02 Jan 2006"))

	if _, err := s.notifier.Notify(ctx, rec.DoctorID, msg); err != nil {
		slog.Warn("attendance notification failed", "receptionist_id", rec.ID, "err", err)
	}
}
