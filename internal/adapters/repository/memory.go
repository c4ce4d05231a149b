package repository

import (
	"context"
	"sync"

	"github.com/okian/leaguecast/internal/domain/model"
)

const defaultMaxJobs = 10_000

// MemoryStore is an in-memory Store safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	jobs    map[string]model.JobResult
	order   []string // job ids in insertion order
	metrics map[string]model.LeagueMetrics
	maxJobs int
}

// NewMemoryStore creates a MemoryStore.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		jobs:    make(map[string]model.JobResult),
		metrics: make(map[string]model.LeagueMetrics),
		maxJobs: defaultMaxJobs,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) PutJob(_ context.Context, res model.JobResult) error {
	if res.Job.ID == "" {
		return ErrInvalidJobID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[res.Job.ID]; !ok {
		s.order = append(s.order, res.Job.ID)
	}
	s.jobs[res.Job.ID] = res

	for s.maxJobs > 0 && len(s.order) > s.maxJobs {
		delete(s.jobs, s.order[0])
		s.order = s.order[1:]
	}
	return nil
}

func (s *MemoryStore) Job(_ context.Context, id string) (model.JobResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res, ok := s.jobs[id]
	if !ok {
		return model.JobResult{}, ErrNotFound
	}
	return res, nil
}

func (s *MemoryStore) PutMetrics(_ context.Context, m model.LeagueMetrics) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics[m.League] = m
	return nil
}

func (s *MemoryStore) Metrics(_ context.Context, league string) (model.LeagueMetrics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.metrics[league]
	if !ok {
		return model.LeagueMetrics{}, ErrNotFound
	}
	return m, nil
}

func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

var _ Store = (*MemoryStore)(nil)
