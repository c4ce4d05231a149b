// Package model contains domain models passed between layers.
package model

import (
	"sort"
	"time"
)

// Outcome is the result of a match from the home side's point of view.
type Outcome int

const (
	Loss Outcome = iota - 1
	Draw
	Win
)

// String returns a short label for the outcome.
func (o Outcome) String() string {
	switch o {
	case Win:
		return "win"
	case Draw:
		return "draw"
	case Loss:
		return "loss"
	default:
		return "unknown"
	}
}

// Score returns the points-style value used by rating updates: 1, 0.5 or 0.
func (o Outcome) Score() (float64, error) {
	switch o {
	case Win:
		return 1, nil
	case Draw:
		return 0.5, nil
	case Loss:
		return 0, nil
	default:
		return 0, ErrUnknownOutcome
	}
}

// Match is a played (or scheduled) fixture between two teams.
// Team identity is the team name.
type Match struct {
	Home      string
	Away      string
	HomeGoals int
	AwayGoals int
	Date      time.Time
	K         float64 // rating weight, 0 means "use the model default"
}

// GoalDifference returns home goals minus away goals.
func (m *Match) GoalDifference() int { return m.HomeGoals - m.AwayGoals }

// Outcome reports the home side's result.
func (m *Match) Outcome() Outcome {
	switch d := m.GoalDifference(); {
	case d > 0:
		return Win
	case d < 0:
		return Loss
	default:
		return Draw
	}
}

// EffectiveK returns the match weight or def when the match carries none.
func (m *Match) EffectiveK(def float64) float64 {
	if m.K == 0 {
		return def
	}
	return m.K
}

// SortByDate orders matches by date only, keeping the input order for equal dates.
func SortByDate(matches []*Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Date.Before(matches[j].Date)
	})
}

// Before returns the prefix of a date-sorted slice holding matches played
// strictly before t.
func Before(sorted []*Match, t time.Time) []*Match {
	n := sort.Search(len(sorted), func(i int) bool {
		return !sorted[i].Date.Before(t)
	})
	return sorted[:n]
}
