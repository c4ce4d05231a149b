package types

import "errors"

// Error kinds shared by the service and its transports.
var (
	ErrNotStarted     = errors.New("service not started")
	ErrInvalidRequest = errors.New("invalid forecast request")
	ErrQueueFull      = errors.New("forecast queue is full")
	ErrNotFound       = errors.New("not found")
)
