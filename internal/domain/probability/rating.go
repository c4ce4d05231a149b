package probability

import (
	"fmt"
	"maps"
	"math"
	"sync"

	"github.com/okian/leaguecast/internal/domain/model"
)

// Rating model defaults.
const (
	DefaultRating     = 1500.0
	DefaultK          = 20.0
	DefaultDrawWeight = 1.0
)

// RatingOption configures a RatingModel.
type RatingOption func(*RatingModel)

// WithDefaultRating sets the rating given to a team the first time it is seen.
func WithDefaultRating(rating float64) RatingOption {
	return func(r *RatingModel) {
		r.defaultRating = rating
	}
}

// WithDefaultK sets the update weight used for matches without their own K.
func WithDefaultK(k float64) RatingOption {
	return func(r *RatingModel) {
		if k > 0 {
			r.defaultK = k
		}
	}
}

// WithDrawWeight sets the weight of the implicit draw cell. Zero makes every
// sampled match decisive.
func WithDrawWeight(w float64) RatingOption {
	return func(r *RatingModel) {
		if w >= 0 {
			r.drawWeight = w
		}
	}
}

// RatingModel is an Elo model weighted by goal difference.
//
// The model is stateful: every past match is folded into the ratings exactly
// once, tracked by pointer identity, so repeated calls with overlapping
// histories only apply the new matches. Safe for concurrent use.
type RatingModel struct {
	mu      sync.Mutex
	ratings map[string]float64
	applied map[*model.Match]struct{}

	defaultRating float64
	defaultK      float64
	drawWeight    float64
}

// Ratings is a point-in-time copy of a RatingModel's state.
type Ratings struct {
	// Version is the number of matches applied when the copy was taken.
	Version int
	Teams   map[string]float64
}

// NewRatingModel creates a RatingModel with the provided options.
func NewRatingModel(opts ...RatingOption) *RatingModel {
	r := &RatingModel{
		ratings:       make(map[string]float64),
		applied:       make(map[*model.Match]struct{}),
		defaultRating: DefaultRating,
		defaultK:      DefaultK,
		drawWeight:    DefaultDrawWeight,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Distribution applies any unseen past matches, then returns the win
// expectancies of both sides from the updated ratings.
func (r *RatingModel) Distribution(match *model.Match, past []*model.Match) (Distribution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range past {
		if _, ok := r.applied[m]; ok {
			continue
		}
		if err := r.apply(m); err != nil {
			return nil, err
		}
	}

	home, away := r.rating(match.Home), r.rating(match.Away)
	return &WinTable{
		HomeWin: WinExpectancy(home - away),
		AwayWin: WinExpectancy(away - home),
		Draw:    r.drawWeight,
	}, nil
}

// apply updates both sides from their pre-match ratings. Caller holds mu.
func (r *RatingModel) apply(m *model.Match) error {
	home, away := r.rating(m.Home), r.rating(m.Away)

	actual, err := m.Outcome().Score()
	if err != nil {
		return fmt.Errorf("%s vs %s: %w", m.Home, m.Away, err)
	}
	weight := m.EffectiveK(r.defaultK) * GoalDiffIndex(m.GoalDifference())

	r.ratings[m.Home] = home + weight*(actual-WinExpectancy(home-away))
	r.ratings[m.Away] = away + weight*((1-actual)-WinExpectancy(away-home))
	r.applied[m] = struct{}{}
	return nil
}

// rating returns the team's rating, seeding the default on first sight. Caller holds mu.
func (r *RatingModel) rating(team string) float64 {
	v, ok := r.ratings[team]
	if !ok {
		v = r.defaultRating
		r.ratings[team] = v
	}
	return v
}

// Rating returns the current rating of team without seeding it.
func (r *RatingModel) Rating(team string) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.ratings[team]; ok {
		return v
	}
	return r.defaultRating
}

// Snapshot returns a copy of the current ratings.
func (r *RatingModel) Snapshot() Ratings {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Ratings{Version: len(r.applied), Teams: maps.Clone(r.ratings)}
}

// WinExpectancy returns the expected score of a side rated diff points above its opponent.
func WinExpectancy(diff float64) float64 {
	return 1 / (math.Pow(10, -diff/400) + 1)
}

// GoalDiffIndex scales a rating update by the margin of victory.
func GoalDiffIndex(goalDiff int) float64 {
	if goalDiff < 0 {
		goalDiff = -goalDiff
	}
	switch {
	case goalDiff <= 1:
		return 1
	case goalDiff == 2:
		return 1.5
	default:
		return (11 + float64(goalDiff)) / 8
	}
}
