package probability

import "errors"

var (
	// ErrUnknownModel is returned for an unsupported model kind.
	ErrUnknownModel = errors.New("unknown probability model")
	// ErrInvalidCap is returned for a negative goal cap.
	ErrInvalidCap = errors.New("goal cap must not be negative")
)
