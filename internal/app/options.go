package service

import (
	"github.com/okian/leaguecast/internal/adapters/dataset"
	"github.com/okian/leaguecast/internal/adapters/notify"
	"github.com/okian/leaguecast/internal/adapters/repository"
	"github.com/okian/leaguecast/internal/config"
	"github.com/okian/leaguecast/internal/domain/forecast"
	"github.com/okian/leaguecast/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithConfig replaces the default configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithDataset uses ds instead of loading the configured dataset files.
func WithDataset(ds *dataset.Dataset) Option {
	return func(s *Service) {
		s.dataset = ds
	}
}

// WithStore sets the job and metrics store. Defaults to an in-memory store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithSink persists simulated matches instead of connecting to DatabaseURL.
func WithSink(sink forecast.Sink) Option {
	return func(s *Service) {
		s.sink = sink
	}
}

// WithNotifier adds a notifier called for every finished job.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifiers = append(s.notifiers, n)
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
