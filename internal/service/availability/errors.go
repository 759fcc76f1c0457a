package availability

import "errors"

var (
	ErrInvalidWindow = errors.New(`appointment time must be "HH:mm - HH:mm"`)
	ErrInvalidDate   = errors.New(`date must be "YYYY-MM-DD"`)
)
