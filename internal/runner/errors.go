package runner

import "errors"

// Sentinel kinds for runner errors.
var (
	ErrUnhealthy = errors.New("service is not healthy")
	ErrJobFailed = errors.New("forecast job failed")
	ErrTimeout   = errors.New("timed out waiting for forecast job")
)
