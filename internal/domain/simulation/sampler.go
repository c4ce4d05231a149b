// Package simulation samples concrete scorelines from match distributions.
package simulation

import (
	"math"
	"math/rand/v2"

	"github.com/okian/leaguecast/internal/domain/probability"
	"gonum.org/v1/gonum/floats"
)

// Sampler draws cells from a distribution. The cell slice is captured once so
// the total and every draw walk the same order.
type Sampler struct {
	cells []probability.Cell
	total float64
	last  int // index of the last positive-weight cell
}

// NewSampler prepares d for sampling.
func NewSampler(d probability.Distribution) (*Sampler, error) {
	cells := d.Cells()
	weights := make([]float64, len(cells))
	last := -1
	for i, c := range cells {
		if c.Weight < 0 || math.IsNaN(c.Weight) {
			return nil, ErrUndefinedDistribution
		}
		if c.Weight > 0 {
			last = i
		}
		weights[i] = c.Weight
	}
	total := floats.Sum(weights)
	if last < 0 || math.IsInf(total, 0) || total <= 0 {
		return nil, ErrUndefinedDistribution
	}
	return &Sampler{cells: cells, total: total, last: last}, nil
}

// Total returns the summed weight of all cells.
func (s *Sampler) Total() float64 { return s.total }

// Cells returns the cells in walk order.
func (s *Sampler) Cells() []probability.Cell { return s.cells }

// Draw picks a cell with probability weight/total. The walk stops at the first
// positive cell where the remainder reaches zero, so a draw landing exactly on a
// cumulative boundary belongs to the cell that boundary closes.
func (s *Sampler) Draw(rng *rand.Rand) probability.Cell {
	u := rng.Float64() * s.total
	for _, c := range s.cells {
		if c.Weight <= 0 {
			continue
		}
		u -= c.Weight
		if u <= 0 {
			return c
		}
	}
	// rounding left a sliver of u
	return s.cells[s.last]
}
