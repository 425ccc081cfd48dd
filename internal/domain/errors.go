package domain

import "errors"

var (
	ErrInvalidImageCount = errors.New("invalid image count")
	ErrInvalidImage      = errors.New("invalid or unreadable image")
	ErrInvalidOption     = errors.New("invalid option")
	ErrStitchingFailed   = errors.New("stitching failed")
	ErrInternal          = errors.New("internal error")
)
