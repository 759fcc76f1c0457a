package patient

import "errors"

var (
	ErrNotFound      = errors.New("patient not found")
	ErrDuplicate     = errors.New("patient with this name and mobile already exists")
	ErrInvalidMobile = errors.New("invalid mobile number")
	ErrInvalidName   = errors.New("name is required")
	ErrCodeExhausted = errors.New("could not allocate a unique patient code")
)
