package model

import "errors"

var (
	// ErrUnknownOutcome is returned when a result cannot be mapped to win, draw or loss.
	ErrUnknownOutcome = errors.New("unknown match outcome")
	// ErrEmptyLeague is returned for a league without fixtures.
	ErrEmptyLeague = errors.New("league has no matches")
)
