package practitioner

import "errors"

var (
	ErrDoctorNotFound    = errors.New("doctor not found")
	ErrSubDoctorNotFound = errors.New("sub doctor not found")
	ErrEmailTaken        = errors.New("email is already registered")
	ErrInvalidMobile     = errors.New("invalid mobile number")
	ErrInvalidName       = errors.New("name is required")
	ErrWeakPassword      = errors.New("password must be at least 8 characters")
)
