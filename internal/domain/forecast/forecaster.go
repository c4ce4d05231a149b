package forecast

import (
	"context"
	"fmt"
	"hash/fnv"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/okian/leaguecast/internal/domain/model"
	"github.com/okian/leaguecast/internal/domain/probability"
	"github.com/okian/leaguecast/internal/domain/simulation"
	"github.com/okian/leaguecast/internal/domain/standings"
	"github.com/okian/leaguecast/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// Forecaster runs the batched simulate, rank and aggregate pipeline.
type Forecaster struct {
	factory probability.Factory

	simulations  int
	batchSize    int
	historyLimit int
	parallelism  int
	seed         uint64
	seeded       bool

	sink     Sink
	observer BatchObserver
	now      func() time.Time
	logger   logger.Logger
}

// New creates a Forecaster. factory is called once per league run.
func New(factory probability.Factory, opts ...Option) *Forecaster {
	f := defaults()
	f.factory = factory
	for _, opt := range opts {
		opt(f)
	}
	if !f.seeded {
		f.seed = uint64(f.now().UnixNano())
	}
	return f
}

// Forecast simulates the league's fixtures and returns the merged metrics.
// history may hold any matches; only those played strictly before the
// league's first fixture are used as the starting context.
func (f *Forecaster) Forecast(ctx context.Context, league *model.League, history []*model.Match) (model.LeagueMetrics, error) {
	if f.simulations <= 0 {
		return model.LeagueMetrics{}, ErrInvalidSimulations
	}
	start, err := league.StartDate()
	if err != nil {
		return model.LeagueMetrics{}, fmt.Errorf("%w: %s", ErrNoFixtures, league.Name)
	}

	sorted := slices.Clone(history)
	model.SortByDate(sorted)
	past := model.Before(sorted, start)

	fixtures := slices.Clone(league.Matches)
	model.SortByDate(fixtures)

	runID := uuid.NewString()
	sim := simulation.New(f.factory(),
		simulation.WithSeed(f.leagueSeed(league.Name)),
		simulation.WithHistoryLimit(f.historyLimit),
		simulation.WithRunID(runID),
		simulation.WithClock(f.now),
	)

	began := f.now()
	plan, err := sim.Plan(ctx, fixtures, past)
	if err != nil {
		return model.LeagueMetrics{}, fmt.Errorf("plan %s: %w", league.Name, err)
	}

	batches := make([]model.LeagueMetrics, 0, (f.simulations+f.batchSize-1)/f.batchSize)
	for batch, remaining := 0, f.simulations; remaining > 0; batch++ {
		if err := ctx.Err(); err != nil {
			return model.LeagueMetrics{}, fmt.Errorf("forecast %s: %w", league.Name, err)
		}
		n := min(remaining, f.batchSize)
		m, err := f.runBatch(ctx, sim, plan, league.Name, batch, n)
		if err != nil {
			return model.LeagueMetrics{}, err
		}
		batches = append(batches, m)
		remaining -= n
	}

	merged, err := Merge(batches)
	if err != nil {
		return model.LeagueMetrics{}, err
	}

	champion, p, _ := merged.MostLikelyChampion()
	f.logger.Info(ctx, "league forecast complete",
		logger.String("league", league.Name),
		logger.String("run_id", runID),
		logger.Int("simulations", merged.Simulations),
		logger.Int("batches", len(batches)),
		logger.String("champion", champion),
		logger.Float64("probability", p),
		logger.Duration("elapsed", f.now().Sub(began)),
	)
	return merged, nil
}

func (f *Forecaster) runBatch(ctx context.Context, sim *simulation.Simulator, plan *simulation.Plan, league string, batch, n int) (model.LeagueMetrics, error) {
	t0 := f.now()

	byMatch, err := sim.Draw(ctx, league, plan, batch, n)
	if err != nil {
		return model.LeagueMetrics{}, fmt.Errorf("draw %s batch %d: %w", league, batch, err)
	}
	if f.sink != nil {
		if err := f.sink.Save(ctx, league, byMatch); err != nil {
			return model.LeagueMetrics{}, fmt.Errorf("save %s batch %d: %w", league, batch, err)
		}
	}

	worlds := simulation.Worlds(byMatch)
	tables := make([][]model.Standing, len(worlds))
	for i, w := range worlds {
		tables[i] = standings.Build(w)
	}
	m, err := FromStandings(league, tables)
	if err != nil {
		return model.LeagueMetrics{}, fmt.Errorf("aggregate %s batch %d: %w", league, batch, err)
	}

	if f.observer != nil {
		f.observer(league, n, f.now().Sub(t0))
	}
	f.logger.Debug(ctx, "batch complete",
		logger.String("league", league),
		logger.Int("batch", batch),
		logger.Int("worlds", n),
	)
	return m, nil
}

// ForecastAll forecasts every league in parallel. Results keep the order of leagues.
func (f *Forecaster) ForecastAll(ctx context.Context, leagues []*model.League, history []*model.Match) ([]model.LeagueMetrics, error) {
	sorted := slices.Clone(history)
	model.SortByDate(sorted)

	out := make([]model.LeagueMetrics, len(leagues))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.parallelism)
	for i, l := range leagues {
		g.Go(func() error {
			m, err := f.Forecast(gctx, l, sorted)
			if err != nil {
				return err
			}
			out[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// leagueSeed gives every league its own random stream under one seed.
func (f *Forecaster) leagueSeed(league string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(league))
	return f.seed ^ h.Sum64()
}
