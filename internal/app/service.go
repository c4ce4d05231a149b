// Package service wires the dataset, forecaster, job queue, workers, storage
// and notifiers into the operations the HTTP API exposes.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/leaguecast/internal/adapters/dataset"
	"github.com/okian/leaguecast/internal/adapters/mq/queue"
	"github.com/okian/leaguecast/internal/adapters/mq/worker"
	"github.com/okian/leaguecast/internal/adapters/notify"
	"github.com/okian/leaguecast/internal/adapters/repository"
	"github.com/okian/leaguecast/internal/config"
	"github.com/okian/leaguecast/internal/domain/dedupe"
	"github.com/okian/leaguecast/internal/domain/forecast"
	"github.com/okian/leaguecast/internal/domain/model"
	"github.com/okian/leaguecast/internal/domain/probability"
	"github.com/okian/leaguecast/internal/domain/types"
	"github.com/okian/leaguecast/pkg/logger"
	"github.com/okian/leaguecast/pkg/metrics"
)

// Service runs forecast jobs in the background and serves their results.
type Service struct {
	mu sync.RWMutex

	cfg     *config.Config
	dataset *dataset.Dataset
	store   repository.Store
	sink    forecast.Sink
	deduper dedupe.Deduper
	queue   *queue.InMemoryQueue
	pool    *worker.Pool
	hub     *notify.Hub

	notifiers []notify.Notifier
	publisher *notify.AMQPPublisher
	db        *sql.DB

	started bool
	cancel  context.CancelFunc
	now     func() time.Time
	logger  logger.Logger
}

// New constructs a Service. Nothing runs until Start.
func New(opts ...Option) *Service {
	s := &Service{
		cfg: config.New(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	return s
}

// Start loads the dataset, connects optional backends and starts the workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting forecast service...")

	if s.dataset == nil {
		ds, err := dataset.Load(s.cfg.Datasets(), dataset.WithKOverride(s.cfg.KOverride))
		if err != nil {
			return fmt.Errorf("load dataset: %w", err)
		}
		s.dataset = ds
	}
	metrics.UpdateDatasetSize(len(s.dataset.Leagues), len(s.dataset.History))

	if s.sink == nil && s.cfg.DatabaseURL != "" {
		db, err := repository.Connect(ctx, s.cfg.DatabaseURL)
		if err != nil {
			return err
		}
		if err := repository.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return err
		}
		s.db = db
		s.sink = repository.NewPostgresSink(db)
		s.logger.Info(ctx, "persisting simulated matches to postgres")
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	s.hub = notify.NewHub()
	go s.hub.Run(runCtx)
	notifiers := append(notify.Multi{s.hub}, s.notifiers...)

	if s.cfg.AMQPURL != "" {
		pub, err := notify.DialAMQP(s.cfg.AMQPURL, s.cfg.AMQPExchange)
		if err != nil {
			// forecasts still work without the broker
			s.logger.Error(ctx, "amqp publisher disabled", logger.Error(err))
			metrics.RecordErrorByComponent("service", "amqp_dial")
		} else {
			s.publisher = pub
			notifiers = append(notifiers, pub)
		}
	}

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.cfg.DedupeSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.cfg.JobQueueSize))
	s.pool = worker.NewPool(s.cfg.WorkerCount, s.queue, s, s.store,
		worker.WithNotifier(notifiers),
		worker.WithClock(s.now),
	)
	s.pool.Start(runCtx)
	go metrics.StartSystemCollector(runCtx)

	s.started = true
	s.logger.Info(ctx, "forecast service started",
		logger.Int("leagues", len(s.dataset.Leagues)),
		logger.Int("history", len(s.dataset.History)),
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.cfg.JobQueueSize),
		logger.String("model", s.cfg.Model),
	)
	return nil
}

// Stop drains the workers and releases backends.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping forecast service...")

	var errs []error
	if err := s.pool.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	s.cancel()
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close amqp: %w", err))
		}
		s.publisher = nil
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
		s.db = nil
		s.sink = nil
	}

	s.started = false
	s.logger.Info(ctx, "forecast service stopped")
	return errors.Join(errs...)
}

// Submit validates req and queues a forecast job. A request ID that was seen
// before returns the job it created.
func (s *Service) Submit(ctx context.Context, req types.ForecastRequest) (types.SubmitResponse, error) { //nolint:gocritic // hugeParam
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return types.SubmitResponse{}, ErrNotStarted
	}

	if err := s.validate(req); err != nil {
		return types.SubmitResponse{}, err
	}

	jobID := uuid.NewString()
	if req.RequestID != "" {
		owner, seen := s.deduper.Claim(ctx, req.RequestID, jobID)
		if seen {
			metrics.RecordJobDuplicate()
			status := model.JobQueued
			if res, err := s.store.Job(ctx, owner); err == nil {
				status = res.Status
			}
			s.logger.Debug(ctx, "duplicate forecast request",
				logger.String("request_id", req.RequestID),
				logger.String("job_id", owner),
			)
			return types.SubmitResponse{JobID: owner, Status: string(status), Duplicate: true}, nil
		}
	}

	job := model.Job{
		ID:          jobID,
		RequestID:   req.RequestID,
		Leagues:     req.Leagues,
		Simulations: req.Simulations,
		Model:       strings.ToLower(req.Model),
		Seed:        req.Seed,
		SubmittedAt: s.now(),
	}
	if err := s.store.PutJob(ctx, model.JobResult{Job: job, Status: model.JobQueued}); err != nil {
		s.release(ctx, req.RequestID)
		return types.SubmitResponse{}, fmt.Errorf("store job: %w", err)
	}

	if err := s.queue.Enqueue(ctx, job); err != nil {
		s.release(ctx, req.RequestID)
		_ = s.store.PutJob(ctx, model.JobResult{Job: job, Status: model.JobFailed, Error: err.Error(), FinishedAt: s.now()})
		if errors.Is(err, queue.ErrFull) || errors.Is(err, queue.ErrClosed) {
			return types.SubmitResponse{}, fmt.Errorf("%w: %w", ErrQueueFull, err)
		}
		return types.SubmitResponse{}, err
	}

	metrics.RecordJobSubmitted()
	s.logger.Info(ctx, "forecast job queued",
		logger.String("job_id", jobID),
		logger.Int("leagues", len(job.Leagues)),
	)
	return types.SubmitResponse{JobID: jobID, Status: string(model.JobQueued)}, nil
}

func (s *Service) release(ctx context.Context, requestID string) {
	if requestID != "" {
		s.deduper.Release(ctx, requestID)
	}
}

func (s *Service) validate(req types.ForecastRequest) error { //nolint:gocritic // hugeParam
	if req.Simulations < 0 {
		return fmt.Errorf("%w: simulations must not be negative", ErrInvalidRequest)
	}
	if req.Model != "" {
		if _, err := s.factory(req.Model); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
	}
	if _, err := s.dataset.Select(req.Leagues); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return nil
}

func (s *Service) factory(kind string) (probability.Factory, error) {
	if kind == "" {
		kind = s.cfg.Model
	}
	return probability.NewFactory(probability.Kind(strings.ToLower(kind)),
		[]probability.GoalOption{probability.WithGoalCap(s.cfg.GoalCap)},
		[]probability.RatingOption{
			probability.WithDefaultRating(s.cfg.DefaultRating),
			probability.WithDefaultK(s.cfg.DefaultK),
			probability.WithDrawWeight(s.cfg.DrawWeight),
		},
	)
}

// Run forecasts every league of job. Workers call it.
func (s *Service) Run(ctx context.Context, job model.Job) ([]model.LeagueMetrics, error) { //nolint:gocritic // hugeParam
	leagues, err := s.dataset.Select(job.Leagues)
	if err != nil {
		return nil, err
	}
	factory, err := s.factory(job.Model)
	if err != nil {
		return nil, err
	}

	simulations := job.Simulations
	if simulations == 0 {
		simulations = s.cfg.Simulations
	}
	opts := []forecast.Option{
		forecast.WithSimulations(simulations),
		forecast.WithBatchSize(s.cfg.BatchSize),
		forecast.WithHistoryLimit(s.cfg.HistoryLimit),
		forecast.WithParallelism(s.cfg.Parallelism),
		forecast.WithClock(s.now),
		forecast.WithBatchObserver(func(league string, worlds int, elapsed time.Duration) {
			metrics.RecordBatch(league, worlds, float64(elapsed.Milliseconds()))
		}),
	}
	switch {
	case job.Seed != 0:
		opts = append(opts, forecast.WithSeed(job.Seed))
	case s.cfg.Seed != 0:
		opts = append(opts, forecast.WithSeed(s.cfg.Seed))
	}
	if s.sink != nil {
		opts = append(opts, forecast.WithSink(s.sink))
	}

	out, err := forecast.New(factory, opts...).ForecastAll(ctx, leagues, s.dataset.History)
	if err != nil {
		return nil, err
	}
	for _, m := range out {
		for team, p := range m.Champion {
			metrics.UpdateChampionProbability(m.League, team, p)
		}
	}
	return out, nil
}

// Job returns the state of a submitted job.
func (s *Service) Job(ctx context.Context, id string) (types.JobResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return types.JobResponse{}, fmt.Errorf("%w: %w: %w", ErrInvalidRequest, repository.ErrInvalidJobID, err)
	}
	res, err := s.store.Job(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return types.JobResponse{}, fmt.Errorf("job %s: %w", id, ErrNotFound)
		}
		return types.JobResponse{}, err
	}
	return types.NewJobResponse(res), nil
}

// LeagueForecast returns the latest completed forecast of a league.
func (s *Service) LeagueForecast(ctx context.Context, league string) (types.LeagueForecast, error) {
	m, err := s.store.Metrics(ctx, league)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return types.LeagueForecast{}, fmt.Errorf("forecast for %s: %w", league, ErrNotFound)
		}
		return types.LeagueForecast{}, err
	}
	return types.NewLeagueForecast(m), nil
}

// Leagues lists the loaded leagues.
func (s *Service) Leagues(_ context.Context) []types.LeagueSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dataset == nil {
		return nil
	}
	out := make([]types.LeagueSummary, 0, len(s.dataset.Leagues))
	for _, l := range s.dataset.Leagues {
		out = append(out, types.NewLeagueSummary(l))
	}
	return out
}

// WebsocketHandler returns the handler streaming finished jobs, or nil before Start.
func (s *Service) WebsocketHandler() http.Handler {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.hub == nil {
		return nil
	}
	return s.hub
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.cfg.WorkerCount,
		"queueSize":   s.cfg.JobQueueSize,
		"dedupeSize":  s.cfg.DedupeSize,
		"model":       s.cfg.Model,
		"simulations": s.cfg.Simulations,
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		stats["queueLength"] = queueLen
		stats["jobs"] = s.store.Count(ctx)
		stats["processed"] = s.pool.Processed()
		stats["leagues"] = len(s.dataset.Leagues)
		stats["websocketClients"] = s.hub.Clients()
		stats["persistence"] = s.sink != nil
		stats["amqp"] = s.publisher != nil

		metrics.UpdateQueueSize(queueLen)
	}
	return stats
}
