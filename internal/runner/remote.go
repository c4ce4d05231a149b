package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/leaguecast/internal/domain/model"
	"github.com/okian/leaguecast/internal/domain/types"
	"github.com/okian/leaguecast/pkg/logger"
)

const pollInterval = 500 * time.Millisecond

// httpClient wraps http.Client with the service base URL.
type httpClient struct {
	client  *http.Client
	baseURL string
}

func newHTTPClient(baseURL string, timeout time.Duration) *httpClient {
	return &httpClient{client: &http.Client{Timeout: timeout}, baseURL: baseURL}
}

func (c *httpClient) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	if out != nil && resp.StatusCode < http.StatusBadRequest {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

func runRemote(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now(), Remote: true}
	log := logger.Get().Named("runner")
	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)

	if err := checkServiceHealth(ctx, client); err != nil {
		return nil, err
	}

	req := types.ForecastRequest{
		Leagues:     cfg.Leagues,
		Simulations: cfg.Service.Simulations,
		Model:       cfg.Service.Model,
		Seed:        cfg.Service.Seed,
	}
	var ack types.SubmitResponse
	status, err := client.do(ctx, http.MethodPost, "/forecasts", req, &ack)
	if err != nil {
		return nil, fmt.Errorf("submit failed: %w", err)
	}
	if status != http.StatusAccepted && status != http.StatusOK {
		return nil, fmt.Errorf("submit failed with status: %d", status)
	}
	stats.JobID = ack.JobID
	log.Info(ctx, "forecast submitted", logger.String("job_id", ack.JobID), logger.String("url", cfg.BaseURL))

	res, err := waitForJob(ctx, client, ack.JobID, cfg.Wait)
	if err != nil {
		return nil, err
	}

	out := make([]model.LeagueMetrics, 0, len(res.Forecasts))
	for _, f := range res.Forecasts {
		out = append(out, toMetrics(f))
	}
	stats.Leagues = len(out)
	stats.Simulations = res.Simulations
	return finish(ctx, cfg, stats, out)
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *httpClient) error {
	status, err := client.do(ctx, http.MethodGet, "/healthz", nil, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, status)
	}
	return nil
}

func waitForJob(ctx context.Context, client *httpClient, id string, wait time.Duration) (types.JobResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		var res types.JobResponse
		if _, err := client.do(ctx, http.MethodGet, "/forecasts/"+id, nil, &res); err != nil && ctx.Err() == nil {
			return res, fmt.Errorf("poll failed: %w", err)
		}
		switch res.Status {
		case string(model.JobCompleted):
			return res, nil
		case string(model.JobFailed):
			return res, fmt.Errorf("%w: %s", ErrJobFailed, res.Error)
		}

		select {
		case <-ctx.Done():
			return res, fmt.Errorf("%w: %s", ErrTimeout, id)
		case <-ticker.C:
		}
	}
}

func toMetrics(f types.LeagueForecast) model.LeagueMetrics { //nolint:gocritic // hugeParam
	m := model.NewLeagueMetrics(f.League)
	m.Simulations = f.Simulations
	for _, p := range f.Champion {
		m.Champion[p.Team] = p.Probability
	}
	for _, p := range f.HighRanking {
		m.HighRanking[p.Team] = p.Probability
	}
	for _, p := range f.LowRanking {
		m.LowRanking[p.Team] = p.Probability
	}
	return m
}
