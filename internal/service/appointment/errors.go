package appointment

import (
	"errors"

	"github.com/cliniva/cliniva_backend/internal/service/availability"
)

var (
	ErrNotFound         = errors.New("appointment not found")
	ErrDuplicateForDay  = errors.New("patient already has an appointment on this date")
	ErrAlreadyCancelled = errors.New("appointment is cancelled")
	ErrAlreadyProceeded = errors.New("appointment has already been proceeded")
	ErrAlreadyOut       = errors.New("appointment is already out")
	ErrNotCheckedIn     = errors.New("appointment must be set to in before out")
	ErrInvalidStatus    = errors.New("status must be in or out")
	ErrFutureDate       = errors.New("appointment date is in the future")
	ErrPastDate         = errors.New("appointment date cannot be in the past")
	ErrSameDay          = errors.New("cannot reschedule to the same day")
	ErrInvalidPayment   = errors.New("payment mode must be Cash or Online")
	ErrInvalidFees      = errors.New("fees must be greater than zero")
	ErrPastFollowUp     = errors.New("follow-up date cannot be in the past")
)

// NotAvailableError reports a booking denied by the availability check.
// The embedded result carries the reason and, when known, the slot and
// current occupancy.
type NotAvailableError struct {
	Result availability.Result
}

func (e *NotAvailableError) Error() string { return e.Result.Reason.Message() }
