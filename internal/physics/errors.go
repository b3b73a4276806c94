package physics

import "errors"

var (
	ErrInvalidBody     = errors.New("invalid body")
	ErrDuplicateBody   = errors.New("duplicate body id")
	ErrBodyNotFound    = errors.New("body not found")
	ErrInvalidSettings = errors.New("invalid physics settings")
	ErrUnknownSetting  = errors.New("unknown physics setting")
	ErrInvalidBounds   = errors.New("invalid world bounds")
)
