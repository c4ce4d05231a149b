// Package standings builds league tables from simulated results.
package standings

import (
	"sort"

	"github.com/okian/leaguecast/internal/domain/model"
)

// Build folds one world's matches into a ranked table. Teams are ordered by
// points, goal difference and goals scored, all descending; teams still tied
// keep the order in which they first appeared.
func Build(matches []model.SimulatedMatch) []model.Standing {
	index := make(map[string]int)
	table := make([]model.Standing, 0)

	row := func(team string) *model.Standing {
		i, ok := index[team]
		if !ok {
			i = len(table)
			index[team] = i
			table = append(table, model.Standing{Team: team})
		}
		return &table[i]
	}

	for i := range matches {
		m := &matches[i]
		row(m.Home).Record(m.HomeGoals, m.AwayGoals)
		row(m.Away).Record(m.AwayGoals, m.HomeGoals)
	}

	sort.SliceStable(table, func(i, j int) bool {
		return Less(&table[i], &table[j])
	})
	return table
}

// Less reports whether a ranks above b.
func Less(a, b *model.Standing) bool {
	if a.Points() != b.Points() {
		return a.Points() > b.Points()
	}
	if a.GoalDifference() != b.GoalDifference() {
		return a.GoalDifference() > b.GoalDifference()
	}
	return a.GoalsFor > b.GoalsFor
}

// Position returns the zero-based rank of team, or -1 when absent.
func Position(table []model.Standing, team string) int {
	for i := range table {
		if table[i].Team == team {
			return i
		}
	}
	return -1
}
