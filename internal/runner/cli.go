package runner

import (
	"fmt"
	"os"

	"github.com/okian/leaguecast/pkg/logger"
)

// SetupLogging initializes the logger with the given format and level.
func SetupLogging(format, level string, verbose bool) error {
	if err := logger.Init(logger.WithFormat(format)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		level = "debug"
	}
	if err := logger.SetLevelString(level); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	return nil
}

// ShowHelp prints usage information for the forecast tool.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`League Forecast Tool
====================

Simulates the remaining seasons of one or more leagues and writes a CSV
report of champion, top five and bottom six probabilities.

Usage:
  forecast [options]

Options:
  -datasets string
        Comma separated league JSON files (default $LEAGUECAST_DATASET_PATHS)
  -leagues string
        Comma separated league names (default: every league)
  -simulations int
        Simulated seasons per league (default 10000)
  -model string
        Probability model: goal or rating (default "goal")
  -seed uint
        Seed for reproducible runs, 0 for random
  -report string
        CSV report path (default "forecast.csv")
  -url string
        Submit to a running service instead of forecasting locally
  -wait duration
        How long to wait for a remote job (default 10m)
  -verbose
        Enable debug logging
  -help
        Show this help message

Examples:
  # Forecast every league with the goal model
  forecast -datasets data/2023.json

  # Reproducible rating model forecast of one league
  forecast -datasets data/2023.json -leagues "Premier League" -model rating -seed 7

  # Let a running service do the work
  forecast -url http://localhost:9080 -leagues "Premier League"
`)
}
