// Package repository stores forecast jobs, league metrics and simulated matches.
package repository

import (
	"context"

	"github.com/okian/leaguecast/internal/domain/model"
)

// Store provides read/write access to forecast results.
type Store interface {
	// PutJob inserts or replaces the state of a job.
	PutJob(ctx context.Context, res model.JobResult) error
	// Job returns the stored state of a job, or ErrNotFound.
	Job(ctx context.Context, id string) (model.JobResult, error)

	// PutMetrics records the latest forecast of a league.
	PutMetrics(ctx context.Context, m model.LeagueMetrics) error
	// Metrics returns the latest forecast of a league, or ErrNotFound.
	Metrics(ctx context.Context, league string) (model.LeagueMetrics, error)

	// Count returns the number of stored jobs.
	Count(ctx context.Context) int
}
