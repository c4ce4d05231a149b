package forecast

import (
	"context"
	"runtime"
	"time"

	"github.com/okian/leaguecast/internal/domain/model"
	"github.com/okian/leaguecast/pkg/logger"
)

// Default forecaster configuration constants.
const (
	DefaultSimulations = 10_000
	DefaultBatchSize   = 100
)

// Sink receives the simulated matches of every batch, indexed [fixture][world].
type Sink interface {
	Save(ctx context.Context, league string, matches [][]model.SimulatedMatch) error
}

// BatchObserver is told about every finished batch.
type BatchObserver func(league string, worlds int, elapsed time.Duration)

// Option applies a configuration option to the Forecaster.
type Option func(*Forecaster)

// WithSimulations sets the number of simulated worlds per league.
func WithSimulations(n int) Option {
	return func(f *Forecaster) {
		f.simulations = n
	}
}

// WithBatchSize sets how many worlds are built and aggregated at once.
func WithBatchSize(n int) Option {
	return func(f *Forecaster) {
		if n > 0 {
			f.batchSize = n
		}
	}
}

// WithHistoryLimit keeps only the most recent n matches before a league starts.
// Negative means all of them.
func WithHistoryLimit(n int) Option {
	return func(f *Forecaster) {
		f.historyLimit = n
	}
}

// WithParallelism bounds how many leagues run at once.
func WithParallelism(n int) Option {
	return func(f *Forecaster) {
		if n > 0 {
			f.parallelism = n
		}
	}
}

// WithSeed makes forecasts reproducible.
func WithSeed(seed uint64) Option {
	return func(f *Forecaster) {
		f.seed = seed
		f.seeded = true
	}
}

// WithSink persists simulated matches.
func WithSink(s Sink) Option {
	return func(f *Forecaster) {
		f.sink = s
	}
}

// WithBatchObserver registers a hook called after each batch.
func WithBatchObserver(o BatchObserver) Option {
	return func(f *Forecaster) {
		f.observer = o
	}
}

// WithClock sets the clock used for simulation timestamps and timings.
func WithClock(now func() time.Time) Option {
	return func(f *Forecaster) {
		if now != nil {
			f.now = now
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(f *Forecaster) {
		if l != nil {
			f.logger = l
		}
	}
}

func defaults() *Forecaster {
	return &Forecaster{
		simulations:  DefaultSimulations,
		batchSize:    DefaultBatchSize,
		historyLimit: -1,
		parallelism:  runtime.NumCPU(),
		now:          time.Now,
		logger:       logger.Get().Named("forecast"),
	}
}
