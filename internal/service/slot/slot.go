// Package slot manages the bookable time windows a practitioner offers.
package slot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/cliniva/cliniva_backend/internal/model"
)

// ---------------------------------------------------------------------------
// Owner
// ---------------------------------------------------------------------------

// Owner identifies the practitioner a slot or appointment belongs to:
// exactly one of DoctorID and SubDoctorID is set.
type Owner struct {
	DoctorID    *uint
	SubDoctorID *string
}

func (o Owner) Validate() error {
	if (o.DoctorID == nil) == (o.SubDoctorID == nil) {
		return ErrInvalidOwner
	}
	return nil
}

// Scope restricts a query to rows owned by this practitioner. The column
// names are shared by time_slots and appointments.
func (o Owner) Scope() func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if o.DoctorID != nil {
			return db.Where("doctor_id = ?", *o.DoctorID)
		}
		return db.Where("sub_doctor_id = ?", *o.SubDoctorID)
	}
}

// NormalizeTime accepts "HH:mm" or "HH:mm:ss" and returns the "HH:mm:ss"
// form slots are stored in.
func NormalizeTime(t string) (string, error) {
	parts := strings.Split(t, ":")
	switch len(parts) {
	case 2:
		parts = append(parts, "00")
	case 3:
	default:
		return "", ErrInvalidTime
	}
	for _, p := range parts {
		if len(p) != 2 || p[0] < '0' || p[0] > '9' || p[1] < '0' || p[1] > '9' {
			return "", ErrInvalidTime
		}
	}
	hh, mm, ss := parts[0], parts[1], parts[2]
	if hh > "23" || mm > "59" || ss > "59" {
		return "", ErrInvalidTime
	}
	return hh + ":" + mm + ":" + ss, nil
}

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreateRequest struct {
	Owner            Owner
	SlotName         string
	StartTime        string // HH:mm or HH:mm:ss
	EndTime          string
	MaxCapacity      *int // nil means unlimited
	AvailabilityDays []int
}

type UpdateRequest struct {
	SlotName         string
	StartTime        string
	EndTime          string
	MaxCapacity      *int
	AvailabilityDays []int
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*model.TimeSlot, error)
	Update(ctx context.Context, owner Owner, slotID uint, req UpdateRequest) (*model.TimeSlot, error)
	// Delete removes a slot. Deleting a slot that does not exist is a no-op;
	// appointments booked into the slot keep their time label.
	Delete(ctx context.Context, owner Owner, slotID uint) error
	List(ctx context.Context, owner Owner) ([]*model.TimeSlot, error)

	// FindMatching returns the slot whose window equals [start, end] exactly,
	// or ErrNotFound. Times accept HH:mm and HH:mm:ss.
	FindMatching(ctx context.Context, owner Owner, start, end string) (*model.TimeSlot, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type slotService struct {
	db *gorm.DB
}

func New(db *gorm.DB) Service {
	return &slotService{db: db}
}

func (s *slotService) Create(ctx context.Context, req CreateRequest) (*model.TimeSlot, error) {
	if err := req.Owner.Validate(); err != nil {
		return nil, err
	}

	start, err := NormalizeTime(req.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := NormalizeTime(req.EndTime)
	if err != nil {
		return nil, err
	}
	if end <= start {
		return nil, ErrInvalidTimeRange
	}
	if err := validateDays(req.AvailabilityDays); err != nil {
		return nil, err
	}

	var count int64
	err = s.db.WithContext(ctx).Model(&model.TimeSlot{}).
		Scopes(req.Owner.Scope()).
		Where("slot_name = ?", req.SlotName).
		Count(&count).Error
	if err != nil {
		return nil, fmt.Errorf("check slot name: %w", err)
	}
	if count > 0 {
		return nil, ErrDuplicateName
	}

	ts := &model.TimeSlot{
		DoctorID:         req.Owner.DoctorID,
		SubDoctorID:      req.Owner.SubDoctorID,
		SlotName:         req.SlotName,
		StartTime:        start,
		EndTime:          end,
		MaxCapacity:      req.MaxCapacity,
		AvailabilityDays: req.AvailabilityDays,
	}
	if err := s.db.WithContext(ctx).Create(ts).Error; err != nil {
		return nil, fmt.Errorf("create slot: %w", err)
	}
	return ts, nil
}

func (s *slotService) Update(ctx context.Context, owner Owner, slotID uint, req UpdateRequest) (*model.TimeSlot, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	start, err := NormalizeTime(req.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := NormalizeTime(req.EndTime)
	if err != nil {
		return nil, err
	}
	if end <= start {
		return nil, ErrInvalidTimeRange
	}
	if err := validateDays(req.AvailabilityDays); err != nil {
		return nil, err
	}

	var ts model.TimeSlot
	err = s.db.WithContext(ctx).
		Scopes(owner.Scope()).
		First(&ts, slotID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get slot: %w", err)
	}

	var count int64
	err = s.db.WithContext(ctx).Model(&model.TimeSlot{}).
		Scopes(owner.Scope()).
		Where("slot_name = ? AND id <> ?", req.SlotName, slotID).
		Count(&count).Error
	if err != nil {
		return nil, fmt.Errorf("check slot name: %w", err)
	}
	if count > 0 {
		return nil, ErrDuplicateName
	}

	ts.SlotName = req.SlotName
	ts.StartTime = start
	ts.EndTime = end
	ts.MaxCapacity = req.MaxCapacity
	ts.AvailabilityDays = req.AvailabilityDays

	if err := s.db.WithContext(ctx).Save(&ts).Error; err != nil {
		return nil, fmt.Errorf("update slot: %w", err)
	}
	return &ts, nil
}

func (s *slotService) Delete(ctx context.Context, owner Owner, slotID uint) error {
	if err := owner.Validate(); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).
		Scopes(owner.Scope()).
		Delete(&model.TimeSlot{}, slotID).Error
	if err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}
	return nil
}

func (s *slotService) List(ctx context.Context, owner Owner) ([]*model.TimeSlot, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	var slots []*model.TimeSlot
	err := s.db.WithContext(ctx).
		Scopes(owner.Scope()).
		Order("start_time ASC").
		Find(&slots).Error
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	return slots, nil
}

func (s *slotService) FindMatching(ctx context.Context, owner Owner, start, end string) (*model.TimeSlot, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	start, err := NormalizeTime(start)
	if err != nil {
		return nil, err
	}
	end, err = NormalizeTime(end)
	if err != nil {
		return nil, err
	}

	var ts model.TimeSlot
	err = s.db.WithContext(ctx).
		Scopes(owner.Scope()).
		Where("start_time = ? AND end_time = ?", start, end).
		First(&ts).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find matching slot: %w", err)
	}
	return &ts, nil
}

func validateDays(days []int) error {
	for _, d := range days {
		if d < 0 || d > 6 {
			return ErrInvalidWeekday
		}
	}
	return nil
}
