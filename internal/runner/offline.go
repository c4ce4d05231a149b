package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/okian/leaguecast/internal/adapters/dataset"
	"github.com/okian/leaguecast/internal/adapters/repository"
	service "github.com/okian/leaguecast/internal/app"
	"github.com/okian/leaguecast/internal/domain/model"
	"github.com/okian/leaguecast/pkg/logger"
)

// Run forecasts locally, or remotely when BaseURL is set, and writes the report.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	if cfg.BaseURL != "" {
		return runRemote(ctx, cfg)
	}
	return runLocal(ctx, cfg)
}

func runLocal(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get().Named("runner")

	ds, err := dataset.Load(cfg.Service.Datasets(), dataset.WithKOverride(cfg.Service.KOverride))
	if err != nil {
		return nil, fmt.Errorf("dataset load failed: %w", err)
	}
	leagues, err := ds.Select(cfg.Leagues)
	if err != nil {
		return nil, err
	}
	stats.Leagues = len(leagues)
	stats.Matches = len(ds.History)

	opts := []service.Option{service.WithConfig(cfg.Service), service.WithDataset(ds)}
	if cfg.Service.DatabaseURL != "" {
		db, err := repository.Connect(ctx, cfg.Service.DatabaseURL)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Error(context.Background(), "failed to close database", logger.Error(err))
			}
		}()
		if err := repository.Migrate(ctx, db); err != nil {
			return nil, err
		}
		opts = append(opts, service.WithSink(repository.NewPostgresSink(db)))
		stats.Persisted = true
	}

	log.Info(ctx, "starting local forecast",
		logger.Int("leagues", len(leagues)),
		logger.Int("history", len(ds.History)),
		logger.Int("simulations", cfg.Service.Simulations),
		logger.String("model", cfg.Service.Model),
	)

	job := model.Job{
		ID:          uuid.NewString(),
		Leagues:     cfg.Leagues,
		Simulations: cfg.Service.Simulations,
		SubmittedAt: stats.StartTime,
	}
	out, err := service.New(opts...).Run(ctx, job)
	if err != nil {
		return nil, fmt.Errorf("forecast failed: %w", err)
	}
	stats.JobID = job.ID
	stats.Simulations = cfg.Service.Simulations

	return finish(ctx, cfg, stats, out)
}

func finish(ctx context.Context, cfg *Config, stats *Stats, out []model.LeagueMetrics) (*Stats, error) {
	if err := dataset.WriteReportFile(cfg.ReportPath, out); err != nil {
		return nil, err
	}
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, cfg, stats, out)
	return stats, nil
}

// displayFinalStats logs the most likely champion of each league and run totals.
func displayFinalStats(ctx context.Context, cfg *Config, stats *Stats, out []model.LeagueMetrics) {
	log := logger.Get().Named("runner")
	for _, m := range out {
		team, p, ok := m.MostLikelyChampion()
		if !ok {
			continue
		}
		log.Info(ctx, "forecast",
			logger.String("league", m.League),
			logger.String("champion", team),
			logger.Float64("probability", p),
		)
	}
	log.Info(ctx, "final statistics",
		logger.Int("leagues", stats.Leagues),
		logger.Int("simulations", stats.Simulations),
		logger.Bool("remote", stats.Remote),
		logger.Bool("persisted", stats.Persisted),
		logger.String("report", cfg.ReportPath),
		logger.Duration("duration", stats.Duration),
	)
}
