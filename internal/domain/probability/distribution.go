// Package probability turns match history into per-fixture outcome distributions.
package probability

// Cell is one sampleable scoreline and its (unnormalized) weight.
type Cell struct {
	HomeGoals int
	AwayGoals int
	Weight    float64
}

// Distribution is the outcome distribution for a single fixture.
// Implementations are ScoreTable and WinTable.
type Distribution interface {
	// Cells returns every cell in the one fixed order used for sampling.
	Cells() []Cell
	// Summary returns the win/draw/loss mass of the distribution.
	Summary() Summary

	sealed()
}

// Summary aggregates a distribution into result masses.
// Values are not renormalized.
type Summary struct {
	HomeWin float64
	Draw    float64
	AwayWin float64
}

// Summarize is a convenience wrapper around d.Summary.
func Summarize(d Distribution) Summary { return d.Summary() }

// ScoreTable is a full (cap+1)x(cap+1) table of scoreline weights indexed
// [home goals][away goals]. Mass beyond the cap is truncated.
type ScoreTable struct {
	Weights [][]float64
}

// NewScoreTable returns a zeroed table for goal counts 0..goalCap.
func NewScoreTable(goalCap int) *ScoreTable {
	w := make([][]float64, goalCap+1)
	for i := range w {
		w[i] = make([]float64, goalCap+1)
	}
	return &ScoreTable{Weights: w}
}

// Cap returns the inclusive goal cap of the table.
func (t *ScoreTable) Cap() int { return len(t.Weights) - 1 }

// Cells walks the table row-major: home goals outer, away goals inner.
func (t *ScoreTable) Cells() []Cell {
	cells := make([]Cell, 0, len(t.Weights)*len(t.Weights))
	for h, row := range t.Weights {
		for a, w := range row {
			cells = append(cells, Cell{HomeGoals: h, AwayGoals: a, Weight: w})
		}
	}
	return cells
}

func (t *ScoreTable) Summary() Summary {
	var s Summary
	for h, row := range t.Weights {
		for a, w := range row {
			switch {
			case h > a:
				s.HomeWin += w
			case h < a:
				s.AwayWin += w
			default:
				s.Draw += w
			}
		}
	}
	return s
}

func (*ScoreTable) sealed() {}

// WinTable is the degenerate distribution of a rating model: a home-win mass,
// an away-win mass and the weight given to the remaining "draw" outcome.
// Sampled scorelines are 1-0, 0-1 and 0-0.
type WinTable struct {
	HomeWin float64
	AwayWin float64
	Draw    float64
}

// Cells returns home win, away win and draw, in that order.
func (t *WinTable) Cells() []Cell {
	return []Cell{
		{HomeGoals: 1, AwayGoals: 0, Weight: t.HomeWin},
		{HomeGoals: 0, AwayGoals: 1, Weight: t.AwayWin},
		{HomeGoals: 0, AwayGoals: 0, Weight: t.Draw},
	}
}

func (t *WinTable) Summary() Summary {
	return Summary{HomeWin: t.HomeWin, Draw: t.Draw, AwayWin: t.AwayWin}
}

func (*WinTable) sealed() {}
