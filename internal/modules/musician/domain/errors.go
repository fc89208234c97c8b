package domain

import "errors"

var (
	ErrProfileNotFound      = errors.New("musician profile not found")
	ErrAvailabilityNotFound = errors.New("availability not found")
	ErrUserNotFound         = errors.New("user not found")
)
