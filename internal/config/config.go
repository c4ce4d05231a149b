// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and LEAGUECAST_* environment variables on top.
// - Validation errors wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"runtime"
	"strings"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// CORSOrigins lists allowed browser origins, comma separated.
	CORSOrigins string `koanf:"cors_origins"`

	// JobQueueSize bounds the in-memory forecast job queue.
	JobQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of forecast workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the request id deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// Simulations is the default number of simulated seasons per league.
	Simulations int `koanf:"simulations"`

	// BatchSize is how many seasons are simulated and aggregated at once.
	BatchSize int `koanf:"batch_size"`

	// HistoryLimit keeps the most recent N matches before a league starts; -1 keeps all.
	HistoryLimit int `koanf:"history_limit"`

	// Parallelism bounds how many leagues are forecast at once.
	Parallelism int `koanf:"parallelism"`

	// Seed makes forecasts reproducible; 0 draws a fresh seed per run.
	Seed uint64 `koanf:"seed"`

	// Model is the default probability model: goal or rating.
	Model string `koanf:"model"`

	// GoalCap is the inclusive goal cap of the goal model's score table.
	GoalCap int `koanf:"goal_cap"`

	// DefaultRating, DefaultK and DrawWeight tune the rating model.
	DefaultRating float64 `koanf:"default_rating"`
	DefaultK      float64 `koanf:"default_k"`
	DrawWeight    float64 `koanf:"draw_weight"`

	// DatasetPaths lists league JSON files, comma separated.
	DatasetPaths string `koanf:"dataset_paths"`

	// KOverride replaces the K of every loaded match when positive.
	KOverride float64 `koanf:"k_override"`

	// ReportPath is where the offline CLI writes its CSV report.
	ReportPath string `koanf:"report_path"`

	// DatabaseURL enables persistence of simulated matches to Postgres.
	DatabaseURL string `koanf:"database_url"`

	// AMQPURL and AMQPExchange enable publishing finished forecasts.
	AMQPURL      string `koanf:"amqp_url"`
	AMQPExchange string `koanf:"amqp_exchange"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:      "info",
		LogFormat:     "text",
		Addr:          ":9080",
		CORSOrigins:   "*",
		JobQueueSize:  1_000,
		WorkerCount:   2,
		DedupeSize:    10_000,
		Simulations:   10_000,
		BatchSize:     100,
		HistoryLimit:  -1,
		Parallelism:   runtime.NumCPU(),
		Model:         "goal",
		GoalCap:       10,
		DefaultRating: 1500,
		DefaultK:      20,
		DrawWeight:    1,
		ReportPath:    "forecast.csv",
		AMQPExchange:  "leaguecast.forecasts",
	}
}

// Datasets returns DatasetPaths split on commas with blanks removed.
func (c *Config) Datasets() []string {
	return splitList(c.DatasetPaths)
}

// Origins returns CORSOrigins split on commas with blanks removed.
func (c *Config) Origins() []string {
	return splitList(c.CORSOrigins)
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.Simulations <= 0:
		return fmt.Errorf("%w: simulations must be positive", ErrInvalidConfig)
	case c.BatchSize <= 0:
		return fmt.Errorf("%w: batch_size must be positive", ErrInvalidConfig)
	case c.GoalCap < 0:
		return fmt.Errorf("%w: goal_cap must not be negative", ErrInvalidConfig)
	case c.DrawWeight < 0:
		return fmt.Errorf("%w: draw_weight must not be negative", ErrInvalidConfig)
	}
	switch strings.ToLower(c.Model) {
	case "goal", "poisson", "rating", "elo":
	default:
		return fmt.Errorf("%w: unknown model %q", ErrInvalidConfig, c.Model)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
