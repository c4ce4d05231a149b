// Package worker runs forecast jobs taken from the job queue.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/okian/leaguecast/internal/adapters/mq/queue"
	"github.com/okian/leaguecast/internal/domain/model"
	"github.com/okian/leaguecast/pkg/logger"
	"github.com/okian/leaguecast/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount  = 2
	poolShutdownTimeout = 30 * time.Second
)

// Runner executes the forecast described by a job.
type Runner interface {
	Run(ctx context.Context, job model.Job) ([]model.LeagueMetrics, error)
}

// ResultWriter stores job state and the resulting league forecasts.
type ResultWriter interface {
	PutJob(ctx context.Context, res model.JobResult) error
	PutMetrics(ctx context.Context, m model.LeagueMetrics) error
}

// Notifier announces finished jobs.
type Notifier interface {
	Notify(ctx context.Context, res model.JobResult) error
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan model.Job
}

// Worker processes jobs until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker after its current job.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue    Queue
	runner   Runner
	results  ResultWriter
	notifier Notifier
	name     string
	now      func() time.Time

	shutdown chan struct{}
	drain    chan struct{}
	done     chan struct{}

	processed atomic.Int64
	abandoned atomic.Int64

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, runner Runner, results ResultWriter, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    queue,
		runner:   runner,
		results:  results,
		name:     "worker",
		now:      time.Now,
		shutdown: make(chan struct{}),
		drain:    make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		// a pending drain wins over a ready job
		select {
		case <-w.drain:
			w.abandonAll(ctx, jobs)
			return
		default:
		}

		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case <-w.drain:
			w.abandonAll(ctx, jobs)
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.process(ctx, job); err != nil {
				w.logger.Error(ctx, "error processing job", logger.String("job_id", job.ID), logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Processed returns the number of jobs this worker has finished.
func (w *InMemoryWorker) Processed() int64 { return w.processed.Load() }

// Abandoned returns the number of jobs failed unrun at shutdown.
func (w *InMemoryWorker) Abandoned() int64 { return w.abandoned.Load() }

// abandonAll fails every job left in a closed queue until it runs dry.
func (w *InMemoryWorker) abandonAll(ctx context.Context, jobs <-chan model.Job) {
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			w.abandon(ctx, job)
		}
	}
}

func (w *InMemoryWorker) abandon(ctx context.Context, job model.Job) { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	w.abandoned.Add(1)
	res := model.JobResult{
		Job:        job,
		Status:     model.JobFailed,
		Error:      fmt.Errorf("shut down before start: %w", queue.ErrClosed).Error(),
		FinishedAt: w.now(),
	}
	metrics.RecordJobFailed()
	metrics.RecordErrorByComponent("worker", "abandoned")
	if err := w.results.PutJob(ctx, res); err != nil {
		w.logger.Error(ctx, "error storing abandoned job", logger.String("job_id", job.ID), logger.Error(err))
		return
	}
	if w.notifier != nil {
		if err := w.notifier.Notify(ctx, res); err != nil {
			w.logger.Warn(ctx, "notification failed", logger.String("job_id", job.ID), logger.Error(err))
		}
	}
	w.logger.Warn(ctx, "job abandoned at shutdown", logger.String("job_id", job.ID))
}

// process runs one job and records its outcome. The returned error is the
// forecast failure, already stored on the job.
func (w *InMemoryWorker) process(ctx context.Context, job model.Job) error { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	start := w.now()
	defer func() {
		w.processed.Add(1)
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	res := model.JobResult{Job: job, Status: model.JobRunning, StartedAt: start}
	if err := w.results.PutJob(ctx, res); err != nil {
		metrics.RecordWorkerError()
		return fmt.Errorf("store running job: %w", err)
	}

	out, runErr := w.runner.Run(ctx, job)
	res.FinishedAt = w.now()
	if runErr != nil {
		res.Status = model.JobFailed
		res.Error = runErr.Error()
		metrics.RecordJobFailed()
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "forecast_error")
	} else {
		res.Status = model.JobCompleted
		res.Metrics = out
		for _, m := range out {
			if err := w.results.PutMetrics(ctx, m); err != nil {
				metrics.RecordErrorByComponent("worker", "store_error")
				return fmt.Errorf("store metrics for %s: %w", m.League, err)
			}
		}
		metrics.RecordJobCompleted(float64(res.FinishedAt.Sub(start).Milliseconds()))
	}

	if err := w.results.PutJob(ctx, res); err != nil {
		metrics.RecordErrorByComponent("worker", "store_error")
		return fmt.Errorf("store finished job: %w", err)
	}

	if w.notifier != nil {
		if err := w.notifier.Notify(ctx, res); err != nil {
			w.logger.Warn(ctx, "notification failed", logger.String("job_id", job.ID), logger.Error(err))
		}
	}

	w.logger.Info(ctx, "job finished",
		logger.String("job_id", job.ID),
		logger.String("status", string(res.Status)),
		logger.Int("leagues", len(res.Metrics)),
		logger.Duration("elapsed", res.FinishedAt.Sub(start)),
	)
	return runErr
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates a pool of workerCount workers sharing opts.
func NewPool(workerCount int, queue Queue, runner Runner, results ResultWriter, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   queue,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(queue, runner, results,
			append(opts, WithName("worker-"+strconv.Itoa(i)))...,
		)
	}

	metrics.UpdateWorkerActiveCount(workerCount)
	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, worker := range p.workers {
		go worker.Run(ctx)
	}
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Processed returns the number of jobs finished by all workers.
func (p *Pool) Processed() int64 {
	var n int64
	for _, w := range p.workers {
		n += w.Processed()
	}
	return n
}

// Abandoned returns the number of queued jobs failed at shutdown.
func (p *Pool) Abandoned() int64 {
	var n int64
	for _, w := range p.workers {
		n += w.Abandoned()
	}
	return n
}

// Shutdown closes the queue, lets running jobs finish and fails every job still
// queued with queue.ErrClosed, then waits for every worker to stop.
func (p *Pool) Shutdown(ctx context.Context) error {
	// only a closed queue runs dry, so draining needs a closer
	stop := func(w *InMemoryWorker) { close(w.shutdown) }
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		} else {
			stop = func(w *InMemoryWorker) { close(w.drain) }
		}
	}

	for _, w := range p.workers {
		stop(w)
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			return fmt.Errorf("worker %d: %w", i, shutdownCtx.Err())
		}
	}
	metrics.UpdateWorkerActiveCount(0)
	return nil
}
