package simulation

import (
	"runtime"
	"time"
)

const defaultChunkSize = 1024

// Option applies a configuration option to the Simulator.
type Option func(*Simulator)

// WithSeed makes draws reproducible.
func WithSeed(seed uint64) Option {
	return func(s *Simulator) {
		s.seed = seed
	}
}

// WithClock sets the clock used to stamp simulated matches.
func WithClock(now func() time.Time) Option {
	return func(s *Simulator) {
		if now != nil {
			s.now = now
		}
	}
}

// WithParallelism bounds the goroutines used for drawing.
func WithParallelism(n int) Option {
	return func(s *Simulator) {
		if n > 0 {
			s.parallelism = n
		}
	}
}

// WithChunkSize sets how many worlds one goroutine draws with one generator.
func WithChunkSize(n int) Option {
	return func(s *Simulator) {
		if n > 0 {
			s.chunkSize = n
		}
	}
}

// WithRunID tags every simulated match with id.
func WithRunID(id string) Option {
	return func(s *Simulator) {
		s.runID = id
	}
}

// WithHistoryLimit bounds the rolling history window. Negative means unbounded.
func WithHistoryLimit(n int) Option {
	return func(s *Simulator) {
		s.historyLimit = n
	}
}

func defaults() *Simulator {
	return &Simulator{
		seed:         uint64(time.Now().UnixNano()),
		now:          time.Now,
		parallelism:  runtime.NumCPU(),
		chunkSize:    defaultChunkSize,
		historyLimit: -1,
	}
}
