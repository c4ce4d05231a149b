package runner

import (
	"time"

	"github.com/okian/leaguecast/internal/config"
)

// Config holds configuration for one forecast run.
type Config struct {
	Service *config.Config // model, dataset and simulation settings

	Leagues    []string      // empty means every loaded league
	BaseURL    string        // when set, submit to a running service instead of forecasting locally
	Timeout    time.Duration // HTTP request timeout in remote mode
	Wait       time.Duration // how long to wait for a remote job
	ReportPath string
	Verbose    bool
}

// Stats holds run statistics.
type Stats struct {
	Leagues     int
	Matches     int
	Simulations int
	Persisted   bool
	Remote      bool
	JobID       string
	StartTime   time.Time
	EndTime     time.Time
	Duration    time.Duration
}
