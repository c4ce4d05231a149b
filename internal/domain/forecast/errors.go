package forecast

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrEmptyMerge         = errors.New("no metrics to merge")
	ErrNoWorlds           = errors.New("no simulated worlds")
	ErrLeagueMismatch     = errors.New("metrics belong to different leagues")
	ErrNoFixtures         = errors.New("league has no fixtures")
	ErrInvalidSimulations = errors.New("simulation count must be positive")
)
