package probability

import (
	"fmt"

	"github.com/okian/leaguecast/internal/domain/model"
)

// Model computes the outcome distribution of a fixture given prior matches.
// past must be sorted by date and hold only matches played before match.
type Model interface {
	Distribution(match *model.Match, past []*model.Match) (Distribution, error)
}

// Distributions computes one distribution per match, all conditioned on the same past.
func Distributions(m Model, matches, past []*model.Match) ([]Distribution, error) {
	out := make([]Distribution, 0, len(matches))
	for _, match := range matches {
		d, err := m.Distribution(match, past)
		if err != nil {
			return nil, fmt.Errorf("%s vs %s: %w", match.Home, match.Away, err)
		}
		out = append(out, d)
	}
	return out, nil
}

// Kind names a model implementation.
type Kind string

const (
	KindGoal   Kind = "goal"
	KindRating Kind = "rating"
)

// Factory builds a fresh model. Rating models are stateful so each forecast
// run needs its own instance.
type Factory func() Model

// NewFactory returns a factory for kind.
func NewFactory(kind Kind, goalOpts []GoalOption, ratingOpts []RatingOption) (Factory, error) {
	switch kind {
	case KindGoal, "poisson":
		return func() Model { return NewGoalModel(goalOpts...) }, nil
	case KindRating, "elo":
		return func() Model { return NewRatingModel(ratingOpts...) }, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, kind)
	}
}
