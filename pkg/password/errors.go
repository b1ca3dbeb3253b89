package password

import "errors"

var (
	// ErrInvalidParameter is returned when a generation parameter is out of bounds.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrGeneratorUnavailable is returned when the word corpus is empty.
	ErrGeneratorUnavailable = errors.New("generator unavailable")
)
