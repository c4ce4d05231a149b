// Package forecast turns simulated seasons into rank probabilities.
package forecast

import (
	"github.com/okian/leaguecast/internal/domain/model"
)

// Band sizes of the ranking probabilities.
const (
	HighBand = 5 // positions 0..4
	LowBand  = 6 // positions last-5..last
)

// FromStandings computes per-team position probabilities over worlds, each a
// ranked table. Positions a small league does not have are skipped.
func FromStandings(league string, worlds [][]model.Standing) (model.LeagueMetrics, error) {
	if len(worlds) == 0 {
		return model.LeagueMetrics{}, ErrNoWorlds
	}
	m := model.NewLeagueMetrics(league)
	m.Simulations = len(worlds)
	w := 1 / float64(len(worlds))

	for _, table := range worlds {
		if len(table) == 0 {
			continue
		}
		m.Champion[table[0].Team] += w
		for i := 0; i < HighBand && i < len(table); i++ {
			m.HighRanking[table[i].Team] += w
		}
		last := len(table) - 1
		for i := max(0, last-(LowBand-1)); i <= last; i++ {
			m.LowRanking[table[i].Team] += w
		}
	}
	return m, nil
}

// Merge combines partial metrics of one league into a single result, weighting
// each batch by its simulation count. A team missing from a batch counts as 0
// in that batch.
func Merge(batches []model.LeagueMetrics) (model.LeagueMetrics, error) {
	if len(batches) == 0 {
		return model.LeagueMetrics{}, ErrEmptyMerge
	}
	out := model.NewLeagueMetrics(batches[0].League)
	for _, b := range batches {
		if b.League != out.League {
			return model.LeagueMetrics{}, ErrLeagueMismatch
		}
		total := out.Simulations + b.Simulations
		mergeInto(out.Champion, b.Champion, out.Simulations, b.Simulations)
		mergeInto(out.HighRanking, b.HighRanking, out.Simulations, b.Simulations)
		mergeInto(out.LowRanking, b.LowRanking, out.Simulations, b.Simulations)
		out.Simulations = total
	}
	return out, nil
}

// mergeInto folds next (weight m) into acc (weight n) as a running average.
func mergeInto(acc, next map[string]float64, n, m int) {
	if n == 0 && len(acc) == 0 {
		for team, p := range next {
			acc[team] = p
		}
		return
	}
	for team := range next {
		if _, ok := acc[team]; !ok {
			acc[team] = 0
		}
	}
	total := float64(n + m)
	for team, p := range acc {
		if total <= 0 {
			acc[team] = 0
			continue
		}
		acc[team] = (p*float64(n) + next[team]*float64(m)) / total
	}
}
