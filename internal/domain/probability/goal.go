package probability

import (
	"math"

	"github.com/okian/leaguecast/internal/domain/model"
	"gonum.org/v1/gonum/stat"
)

// DefaultGoalCap is the inclusive goal cap of score tables.
const DefaultGoalCap = 10

// GoalOption configures a GoalModel.
type GoalOption func(*GoalModel)

// WithGoalCap sets the inclusive goal cap of generated score tables.
func WithGoalCap(goalCap int) GoalOption {
	return func(g *GoalModel) {
		g.goalCap = goalCap
	}
}

// GoalModel is a venue-aware Poisson model. Each side's expected goals come
// from its attack strength, the opponent's defensive strength and the league
// average at the venue; the two sides are treated as independent.
//
// Every team in a fixture must have history at the relevant venue in past.
// Without it the strengths divide by zero and the table holds NaN.
type GoalModel struct {
	goalCap int
}

// NewGoalModel creates a GoalModel with the provided options.
func NewGoalModel(opts ...GoalOption) *GoalModel {
	g := &GoalModel{goalCap: DefaultGoalCap}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Distribution returns the Poisson score table for match.
func (g *GoalModel) Distribution(match *model.Match, past []*model.Match) (Distribution, error) {
	if g.goalCap < 0 {
		return nil, ErrInvalidCap
	}
	homeXG, awayXG := g.ExpectedGoals(match.Home, match.Away, past)

	homeMass := make([]float64, g.goalCap+1)
	awayMass := make([]float64, g.goalCap+1)
	for k := 0; k <= g.goalCap; k++ {
		homeMass[k] = PoissonMass(k, homeXG)
		awayMass[k] = PoissonMass(k, awayXG)
	}

	t := NewScoreTable(g.goalCap)
	for h := range t.Weights {
		for a := range t.Weights[h] {
			t.Weights[h][a] = homeMass[h] * awayMass[a]
		}
	}
	return t, nil
}

// ExpectedGoals returns the Poisson means for home playing at home against away.
func (g *GoalModel) ExpectedGoals(home, away string, past []*model.Match) (homeXG, awayXG float64) {
	var (
		leagueHome, leagueAway   []float64
		homeScored, homeConceded []float64
		awayScored, awayConceded []float64
	)
	for _, m := range past {
		hg, ag := float64(m.HomeGoals), float64(m.AwayGoals)
		leagueHome = append(leagueHome, hg)
		leagueAway = append(leagueAway, ag)
		if m.Home == home {
			homeScored = append(homeScored, hg)
			homeConceded = append(homeConceded, ag)
		}
		if m.Away == away {
			awayScored = append(awayScored, ag)
			awayConceded = append(awayConceded, hg)
		}
	}

	avgHome := stat.Mean(leagueHome, nil)
	avgAway := stat.Mean(leagueAway, nil)

	homeAttack := stat.Mean(homeScored, nil) / avgHome
	homeDefence := stat.Mean(homeConceded, nil) / avgAway
	awayAttack := stat.Mean(awayScored, nil) / avgAway
	awayDefence := stat.Mean(awayConceded, nil) / avgHome

	return homeAttack * awayDefence * avgHome, awayAttack * homeDefence * avgAway
}

// PoissonMass returns P(X = k) for X ~ Poisson(lambda), computed in log space.
func PoissonMass(k int, lambda float64) float64 {
	if k < 0 {
		return 0
	}
	if lambda <= 0 {
		if k == 0 {
			return 1
		}
		return 0
	}
	lf, _ := math.Lgamma(float64(k + 1))
	return math.Exp(float64(k)*math.Log(lambda) - lambda - lf)
}
