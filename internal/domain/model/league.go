package model

import "time"

// League is one season of a round-robin competition.
type League struct {
	Name     string
	Season   string
	Champion string // actual champion when known
	Matches  []*Match
}

// StartDate returns the date of the earliest fixture.
func (l *League) StartDate() (time.Time, error) {
	if len(l.Matches) == 0 {
		return time.Time{}, ErrEmptyLeague
	}
	start := l.Matches[0].Date
	for _, m := range l.Matches[1:] {
		if m.Date.Before(start) {
			start = m.Date
		}
	}
	return start, nil
}

// Teams returns team names in first-seen order.
func (l *League) Teams() []string {
	seen := make(map[string]struct{})
	teams := make([]string, 0)
	for _, m := range l.Matches {
		for _, t := range [2]string{m.Home, m.Away} {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			teams = append(teams, t)
		}
	}
	return teams
}

// SimulatedMatch is one sampled scoreline for a fixture in one simulated world.
type SimulatedMatch struct {
	RunID       string
	League      string
	SimulatedAt time.Time
	Home        string
	Away        string
	HomeGoals   int
	AwayGoals   int
	MatchDate   time.Time
}
