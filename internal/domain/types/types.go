// Package types contains the JSON shapes shared by the HTTP API and notifiers.
package types

import (
	"time"

	"github.com/okian/leaguecast/internal/domain/model"
)

// ForecastRequest is the body of POST /forecasts.
type ForecastRequest struct {
	RequestID   string   `json:"request_id,omitempty"`
	Leagues     []string `json:"leagues,omitempty"`
	Simulations int      `json:"simulations,omitempty"`
	Model       string   `json:"model,omitempty"`
	Seed        uint64   `json:"seed,omitempty"`
}

// SubmitResponse acknowledges an accepted forecast request.
type SubmitResponse struct {
	JobID     string `json:"job_id"`
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate,omitempty"`
}

// TeamProbability is one team's chance of finishing in a band.
type TeamProbability struct {
	Team        string  `json:"team"`
	Probability float64 `json:"probability"`
}

// LeagueForecast is the public view of model.LeagueMetrics. Each list is
// ordered by probability, highest first.
type LeagueForecast struct {
	League             string            `json:"league"`
	Simulations        int               `json:"simulations"`
	MostLikelyChampion string            `json:"most_likely_champion,omitempty"`
	Champion           []TeamProbability `json:"champion"`
	HighRanking        []TeamProbability `json:"high_ranking"`
	LowRanking         []TeamProbability `json:"low_ranking"`
}

// JobResponse is the public view of model.JobResult.
type JobResponse struct {
	JobID       string           `json:"job_id"`
	RequestID   string           `json:"request_id,omitempty"`
	Status      string           `json:"status"`
	Leagues     []string         `json:"leagues,omitempty"`
	Model       string           `json:"model,omitempty"`
	Simulations int              `json:"simulations,omitempty"`
	Error       string           `json:"error,omitempty"`
	SubmittedAt time.Time        `json:"submitted_at"`
	StartedAt   *time.Time       `json:"started_at,omitempty"`
	FinishedAt  *time.Time       `json:"finished_at,omitempty"`
	Forecasts   []LeagueForecast `json:"forecasts,omitempty"`
}

// LeagueSummary describes a loaded league.
type LeagueSummary struct {
	Name     string    `json:"name"`
	Season   string    `json:"season,omitempty"`
	Champion string    `json:"champion,omitempty"`
	Teams    int       `json:"teams"`
	Fixtures int       `json:"fixtures"`
	Start    time.Time `json:"start"`
}

// NewTeamProbabilities orders probs highest first, ties by team name.
func NewTeamProbabilities(probs map[string]float64) []TeamProbability {
	ranked := model.RankTeams(probs)
	out := make([]TeamProbability, len(ranked))
	for i, team := range ranked {
		out[i] = TeamProbability{Team: team, Probability: probs[team]}
	}
	return out
}

// NewLeagueForecast converts aggregated metrics into their JSON form.
func NewLeagueForecast(m model.LeagueMetrics) LeagueForecast { //nolint:gocritic // hugeParam: metrics are read-only maps
	f := LeagueForecast{
		League:      m.League,
		Simulations: m.Simulations,
		Champion:    NewTeamProbabilities(m.Champion),
		HighRanking: NewTeamProbabilities(m.HighRanking),
		LowRanking:  NewTeamProbabilities(m.LowRanking),
	}
	if team, _, ok := m.MostLikelyChampion(); ok {
		f.MostLikelyChampion = team
	}
	return f
}

// NewJobResponse converts a stored job into its JSON form.
func NewJobResponse(res model.JobResult) JobResponse { //nolint:gocritic // hugeParam
	out := JobResponse{
		JobID:       res.Job.ID,
		RequestID:   res.Job.RequestID,
		Status:      string(res.Status),
		Leagues:     res.Job.Leagues,
		Model:       res.Job.Model,
		Simulations: res.Job.Simulations,
		Error:       res.Error,
		SubmittedAt: res.Job.SubmittedAt,
	}
	if !res.StartedAt.IsZero() {
		t := res.StartedAt
		out.StartedAt = &t
	}
	if !res.FinishedAt.IsZero() {
		t := res.FinishedAt
		out.FinishedAt = &t
	}
	for _, m := range res.Metrics {
		out.Forecasts = append(out.Forecasts, NewLeagueForecast(m))
	}
	return out
}

// NewLeagueSummary describes l. Leagues without fixtures get a zero Start.
func NewLeagueSummary(l *model.League) LeagueSummary {
	s := LeagueSummary{
		Name:     l.Name,
		Season:   l.Season,
		Champion: l.Champion,
		Teams:    len(l.Teams()),
		Fixtures: len(l.Matches),
	}
	if start, err := l.StartDate(); err == nil {
		s.Start = start
	}
	return s
}
