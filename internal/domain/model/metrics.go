package model

import "sort"

// LeagueMetrics holds per-team rank probabilities for one league.
type LeagueMetrics struct {
	League      string
	Champion    map[string]float64
	HighRanking map[string]float64
	LowRanking  map[string]float64
	Simulations int
}

// NewLeagueMetrics returns empty metrics for league.
func NewLeagueMetrics(league string) LeagueMetrics {
	return LeagueMetrics{
		League:      league,
		Champion:    make(map[string]float64),
		HighRanking: make(map[string]float64),
		LowRanking:  make(map[string]float64),
	}
}

// MostLikelyChampion returns the team with the highest title probability.
// Ties go to the alphabetically first team. ok is false when no team has a title chance.
func (m LeagueMetrics) MostLikelyChampion() (team string, p float64, ok bool) {
	ranked := RankTeams(m.Champion)
	if len(ranked) == 0 {
		return "", 0, false
	}
	return ranked[0], m.Champion[ranked[0]], true
}

// RankTeams returns the teams of probs ordered by probability desc, then name.
func RankTeams(probs map[string]float64) []string {
	teams := make([]string, 0, len(probs))
	for t := range probs {
		teams = append(teams, t)
	}
	sort.Slice(teams, func(i, j int) bool {
		if probs[teams[i]] != probs[teams[j]] {
			return probs[teams[i]] > probs[teams[j]]
		}
		return teams[i] < teams[j]
	})
	return teams
}
