package domain

import "errors"

var (
	ErrEventNotFound   = errors.New("event not found")
	ErrEventClosed     = errors.New("event is already closed")
	ErrNotAllowed      = errors.New("caller may not modify this event")
	ErrMusicianOnly    = errors.New("only musicians may perform this action")
	ErrPaymentRequired = errors.New("active musician profile required")
)
