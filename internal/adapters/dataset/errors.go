package dataset

import "errors"

// Sentinel error kinds for this package.
var (
	ErrInvalidDate   = errors.New("invalid match date")
	ErrNoDatasets    = errors.New("no dataset files configured")
	ErrDecode        = errors.New("decode dataset")
	ErrUnknownLeague = errors.New("unknown league")
)
