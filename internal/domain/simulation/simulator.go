package simulation

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/okian/leaguecast/internal/domain/model"
	"github.com/okian/leaguecast/internal/domain/probability"
	"golang.org/x/sync/errgroup"
)

// golden ratio increment used to spread batch seeds apart
const seedStride = 0x9E3779B97F4A7C15

// Plan holds one frozen sampler per fixture, in fixture order.
type Plan struct {
	Matches  []*model.Match
	Samplers []*Sampler
}

// Simulator turns fixtures into simulated worlds using a probability model.
type Simulator struct {
	model probability.Model

	seed         uint64
	now          func() time.Time
	parallelism  int
	chunkSize    int
	runID        string
	historyLimit int
}

// New creates a Simulator around m.
func New(m probability.Model, opts ...Option) *Simulator {
	s := defaults()
	s.model = m
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Plan computes the distribution of every fixture in order. Before moving to
// the next fixture the real result of the current one joins the history
// window; with a history limit the oldest match leaves it.
//
// Plan is sequential by construction: stateful models see history in date order.
func (s *Simulator) Plan(ctx context.Context, matches, past []*model.Match) (*Plan, error) {
	window := slices.Clone(past)
	if s.historyLimit >= 0 && len(window) > s.historyLimit {
		window = window[len(window)-s.historyLimit:]
	}

	plan := &Plan{
		Matches:  matches,
		Samplers: make([]*Sampler, len(matches)),
	}
	for i, m := range matches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		d, err := s.model.Distribution(m, window)
		if err != nil {
			return nil, fmt.Errorf("distribution for %s vs %s: %w", m.Home, m.Away, err)
		}
		sampler, err := NewSampler(d)
		if err != nil {
			return nil, fmt.Errorf("%s vs %s on %s: %w", m.Home, m.Away, m.Date.Format(time.DateOnly), err)
		}
		plan.Samplers[i] = sampler

		window = append(window, m)
		if s.historyLimit >= 0 && len(window) > s.historyLimit {
			window = window[1:]
		}
	}
	return plan, nil
}

// Draw samples n worlds from plan. The result is indexed [fixture][world].
// batch selects an independent random stream so batches over the same plan differ.
func (s *Simulator) Draw(ctx context.Context, league string, plan *Plan, batch, n int) ([][]model.SimulatedMatch, error) {
	if n <= 0 {
		return nil, ErrInvalidWorlds
	}
	out := make([][]model.SimulatedMatch, len(plan.Matches))
	for i := range out {
		out[i] = make([]model.SimulatedMatch, n)
	}

	stamp := s.now()
	base := s.seed + uint64(batch)*seedStride

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)
	for i := range plan.Matches {
		for lo := 0; lo < n; lo += s.chunkSize {
			hi := min(lo+s.chunkSize, n)
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				rng := rand.New(rand.NewPCG(base, uint64(i)<<32|uint64(lo)))
				s.fill(out[i][lo:hi], league, stamp, plan.Matches[i], plan.Samplers[i], rng)
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Simulator) fill(dst []model.SimulatedMatch, league string, stamp time.Time, m *model.Match, sampler *Sampler, rng *rand.Rand) {
	for w := range dst {
		c := sampler.Draw(rng)
		dst[w] = model.SimulatedMatch{
			RunID:       s.runID,
			League:      league,
			SimulatedAt: stamp,
			Home:        m.Home,
			Away:        m.Away,
			HomeGoals:   c.HomeGoals,
			AwayGoals:   c.AwayGoals,
			MatchDate:   m.Date,
		}
	}
}

// Simulate plans matches against past and draws n worlds.
func (s *Simulator) Simulate(ctx context.Context, league string, matches, past []*model.Match, n int) ([][]model.SimulatedMatch, error) {
	plan, err := s.Plan(ctx, matches, past)
	if err != nil {
		return nil, err
	}
	return s.Draw(ctx, league, plan, 0, n)
}

// SimulateMatch draws n outcomes of a single fixture.
func (s *Simulator) SimulateMatch(ctx context.Context, league string, match *model.Match, past []*model.Match, n int) ([]model.SimulatedMatch, error) {
	worlds, err := s.Simulate(ctx, league, []*model.Match{match}, past, n)
	if err != nil {
		return nil, err
	}
	return worlds[0], nil
}

// Worlds transposes a [fixture][world] result into per-world match lists.
func Worlds(byMatch [][]model.SimulatedMatch) [][]model.SimulatedMatch {
	if len(byMatch) == 0 {
		return nil
	}
	worlds := make([][]model.SimulatedMatch, len(byMatch[0]))
	for w := range worlds {
		worlds[w] = make([]model.SimulatedMatch, len(byMatch))
		for i := range byMatch {
			worlds[w][i] = byMatch[i][w]
		}
	}
	return worlds
}
