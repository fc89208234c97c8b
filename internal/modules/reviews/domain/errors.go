package domain

import "errors"

var (
	ErrReviewNotFound   = errors.New("review not found")
	ErrMusicianNotFound = errors.New("musician not found")
	ErrNotAllowed       = errors.New("caller may not modify this review")
)
