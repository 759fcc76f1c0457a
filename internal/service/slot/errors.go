package slot

import "errors"

var (
	ErrNotFound         = errors.New("time slot not found")
	ErrDuplicateName    = errors.New("slot name already exists for this practitioner")
	ErrInvalidTimeRange = errors.New("slot end time must be after start time")
	ErrInvalidTime      = errors.New("time must be HH:mm or HH:mm:ss")
	ErrInvalidWeekday   = errors.New("availability days must be between 0 (Sunday) and 6 (Saturday)")
	ErrInvalidOwner     = errors.New("exactly one of doctor id and sub-doctor id must be set")
)
