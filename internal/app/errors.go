package service

import "github.com/okian/leaguecast/internal/domain/types"

// Sentinel kinds returned by Service.
var (
	ErrNotStarted     = types.ErrNotStarted
	ErrInvalidRequest = types.ErrInvalidRequest
	ErrQueueFull      = types.ErrQueueFull
	ErrNotFound       = types.ErrNotFound
)
