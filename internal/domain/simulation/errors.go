package simulation

import "errors"

var (
	// ErrUndefinedDistribution is returned when a distribution has no finite positive mass.
	ErrUndefinedDistribution = errors.New("distribution has no finite positive mass")
	// ErrInvalidWorlds is returned for a non-positive number of worlds.
	ErrInvalidWorlds = errors.New("number of worlds must be positive")
)
