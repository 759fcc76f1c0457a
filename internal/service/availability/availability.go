// Package availability decides whether a practitioner can take one more
// booking in a given window on a given date. The decision is advisory on its
// own; the appointment service repeats it inside a locking transaction to
// make admission race-safe.
package availability

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cliniva/cliniva_backend/internal/model"
	"github.com/cliniva/cliniva_backend/internal/service/slot"
)

// Reason explains a denial.
type Reason string

const (
	// ReasonNoMatchingSlot covers both "no slot with that exact window" and
	// "slot exists but is closed on that weekday". Callers are deliberately
	// not told which.
	ReasonNoMatchingSlot   Reason = "NoMatchingSlot"
	ReasonSlotCapacityFull Reason = "SlotCapacityFull"
)

// Message returns the operator-facing denial text.
func (r Reason) Message() string {
	switch r {
	case ReasonSlotCapacityFull:
		return "Slot is full for this time"
	default:
		return "No matching slot for this time"
	}
}

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CheckRequest struct {
	Owner slot.Owner
	Date  string // YYYY-MM-DD
	// Window is the requested "HH:mm - HH:mm" label. Occupancy is counted
	// against this exact label, not against the slot's stored times.
	Window string
}

// Result is the admission decision. When Available is false, Reason says why;
// Slot and AppointmentCount are set whenever a matching slot was found.
type Result struct {
	Available        bool
	Reason           Reason
	Slot             *model.TimeSlot
	AppointmentCount int
}

// SequenceNumber is the number the next booking admitted by this result
// should carry: bookings within a practitioner's day count up from 1.
func (r Result) SequenceNumber() int {
	return r.AppointmentCount + 1
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	// Check runs the admission decision without locking. Denials are values,
	// not errors; err is reserved for malformed input and storage failures.
	Check(ctx context.Context, req CheckRequest) (Result, error)

	// CheckForUpdate runs the same decision inside the caller's transaction,
	// taking a FOR UPDATE lock on the matched slot row so a concurrent
	// booking for the same slot serializes behind it.
	CheckForUpdate(tx *gorm.DB, req CheckRequest) (Result, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type availabilityService struct {
	db *gorm.DB
	// countCancelled keeps cancelled appointments in the occupancy count,
	// matching the historical behavior where a cancelled seat is not
	// reopened for the day.
	countCancelled bool
}

func New(db *gorm.DB, countCancelled bool) Service {
	return &availabilityService{db: db, countCancelled: countCancelled}
}

// ParseWindow splits an "HH:mm - HH:mm" label into its start and end times.
// The separator is exactly " - ".
func ParseWindow(window string) (start, end string, err error) {
	start, end, ok := strings.Cut(window, " - ")
	if !ok || start == "" || end == "" || strings.Contains(end, " - ") {
		return "", "", ErrInvalidWindow
	}
	return start, end, nil
}

func (s *availabilityService) Check(ctx context.Context, req CheckRequest) (Result, error) {
	return s.check(s.db.WithContext(ctx), req, false)
}

func (s *availabilityService) CheckForUpdate(tx *gorm.DB, req CheckRequest) (Result, error) {
	return s.check(tx, req, true)
}

func (s *availabilityService) check(db *gorm.DB, req CheckRequest, lock bool) (Result, error) {
	if err := req.Owner.Validate(); err != nil {
		return Result{}, err
	}

	day, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return Result{}, ErrInvalidDate
	}

	startRaw, endRaw, err := ParseWindow(req.Window)
	if err != nil {
		return Result{}, err
	}
	start, err := slot.NormalizeTime(startRaw)
	if err != nil {
		return Result{}, ErrInvalidWindow
	}
	end, err := slot.NormalizeTime(endRaw)
	if err != nil {
		return Result{}, ErrInvalidWindow
	}

	// Exact window match against the practitioner's slots. SQLite has no
	// FOR UPDATE; writes there serialize on the database lock instead.
	q := db.Scopes(req.Owner.Scope()).
		Where("start_time = ? AND end_time = ?", start, end)
	if lock && db.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var ts model.TimeSlot
	if err := q.First(&ts).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Result{Available: false, Reason: ReasonNoMatchingSlot}, nil
		}
		return Result{}, fmt.Errorf("find matching slot: %w", err)
	}

	// Weekday gate: 0=Sunday .. 6=Saturday.
	if !slices.Contains(ts.AvailabilityDays, int(day.Weekday())) {
		return Result{Available: false, Reason: ReasonNoMatchingSlot}, nil
	}

	count, err := s.occupancy(db, req)
	if err != nil {
		return Result{}, err
	}

	if ts.MaxCapacity != nil && count >= *ts.MaxCapacity {
		return Result{Available: false, Reason: ReasonSlotCapacityFull, Slot: &ts, AppointmentCount: count}, nil
	}

	return Result{Available: true, Slot: &ts, AppointmentCount: count}, nil
}

func (s *availabilityService) occupancy(db *gorm.DB, req CheckRequest) (int, error) {
	q := db.Model(&model.Appointment{}).
		Scopes(req.Owner.Scope()).
		Where("date = ? AND appointment_time = ?", req.Date, req.Window)
	if !s.countCancelled {
		q = q.Where("status IS NULL OR status <> ?", model.StatusCancel)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count appointments: %w", err)
	}
	return int(count), nil
}
