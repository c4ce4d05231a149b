package probability_test

import (
	"math"
	"testing"
	"time"

	"github.com/okian/leaguecast/internal/domain/model"
	"github.com/okian/leaguecast/internal/domain/probability"
	. "github.com/smartystreets/goconvey/convey"
	"gonum.org/v1/gonum/stat/distuv"
)

func match(home, away string, hg, ag, d int) *model.Match {
	return &model.Match{
		Home: home, Away: away, HomeGoals: hg, AwayGoals: ag,
		Date: time.Date(2021, time.March, d, 0, 0, 0, 0, time.UTC),
	}
}

// threeTeamHistory has league averages of 1.5 home goals and 1 away goal.
func threeTeamHistory() []*model.Match {
	return []*model.Match{
		match("A", "B", 2, 1, 1),
		match("B", "C", 1, 1, 2),
		match("C", "A", 0, 2, 3),
		match("A", "C", 3, 0, 4),
		match("B", "A", 1, 0, 5),
		match("C", "B", 2, 2, 6),
	}
}

func TestGoalModel(t *testing.T) {
	Convey("Given a three team history", t, func() {
		past := threeTeamHistory()
		g := probability.NewGoalModel(probability.WithGoalCap(2))

		Convey("When computing expected goals for A at home to B", func() {
			homeXG, awayXG := g.ExpectedGoals("A", "B", past)

			Convey("Then they match the hand computed strengths", func() {
				// A: attack 2.5/1.5, B away defence 2/1.5, league home avg 1.5.
				So(homeXG, ShouldAlmostEqual, 10.0/3.0, 1e-6)
				// B: attack 1.5/1, A home defence 0.5/1, league away avg 1.
				So(awayXG, ShouldAlmostEqual, 0.75, 1e-6)
			})
		})

		Convey("When building the score table", func() {
			d, err := g.Distribution(&model.Match{Home: "A", Away: "B"}, past)
			So(err, ShouldBeNil)

			table, ok := d.(*probability.ScoreTable)
			So(ok, ShouldBeTrue)
			So(table.Cap(), ShouldEqual, 2)

			Convey("Then every cell is the product of the two Poisson masses", func() {
				home := distuv.Poisson{Lambda: 10.0 / 3.0}
				away := distuv.Poisson{Lambda: 0.75}
				for h := 0; h <= 2; h++ {
					for a := 0; a <= 2; a++ {
						want := home.Prob(float64(h)) * away.Prob(float64(a))
						So(table.Weights[h][a], ShouldAlmostEqual, want, 1e-9)
					}
				}
			})

			Convey("Then cells walk the table row-major", func() {
				cells := d.Cells()
				So(len(cells), ShouldEqual, 9)
				So(cells[0].HomeGoals, ShouldEqual, 0)
				So(cells[0].AwayGoals, ShouldEqual, 0)
				So(cells[1].HomeGoals, ShouldEqual, 0)
				So(cells[1].AwayGoals, ShouldEqual, 1)
				So(cells[3].HomeGoals, ShouldEqual, 1)
				So(cells[3].AwayGoals, ShouldEqual, 0)
				So(cells[8].Weight, ShouldEqual, table.Weights[2][2])
			})

			Convey("Then the truncated table sums to less than one", func() {
				s := probability.Summarize(d)
				total := s.HomeWin + s.Draw + s.AwayWin
				So(total, ShouldBeLessThan, 1.0)
				So(total, ShouldBeGreaterThan, 0.0)
			})
		})

		Convey("When a team has no history at the venue", func() {
			homeXG, _ := g.ExpectedGoals("D", "A", past)

			Convey("Then the result is not a number", func() {
				So(math.IsNaN(homeXG), ShouldBeTrue)
			})
		})

		Convey("When the goal cap is negative", func() {
			_, err := probability.NewGoalModel(probability.WithGoalCap(-1)).Distribution(past[0], past)

			Convey("Then it fails", func() {
				So(err, ShouldEqual, probability.ErrInvalidCap)
			})
		})
	})

	Convey("Given the Poisson mass function", t, func() {
		Convey("Then it agrees with gonum", func() {
			p := distuv.Poisson{Lambda: 1.7}
			for k := 0; k <= 12; k++ {
				So(probability.PoissonMass(k, 1.7), ShouldAlmostEqual, p.Prob(float64(k)), 1e-12)
			}
		})

		Convey("Then a zero mean puts all mass on zero goals", func() {
			So(probability.PoissonMass(0, 0), ShouldEqual, 1.0)
			So(probability.PoissonMass(3, 0), ShouldEqual, 0.0)
			So(probability.PoissonMass(-1, 2), ShouldEqual, 0.0)
		})
	})
}

func TestRatingHelpers(t *testing.T) {
	Convey("Given the rating helpers", t, func() {
		Convey("Then equal ratings give an even expectancy", func() {
			So(probability.WinExpectancy(0), ShouldEqual, 0.5)
			So(probability.WinExpectancy(400), ShouldAlmostEqual, 10.0/11.0, 1e-12)
		})

		Convey("Then the goal difference index follows the margin", func() {
			So(probability.GoalDiffIndex(0), ShouldEqual, 1.0)
			So(probability.GoalDiffIndex(-1), ShouldEqual, 1.0)
			So(probability.GoalDiffIndex(2), ShouldEqual, 1.5)
			So(probability.GoalDiffIndex(-2), ShouldEqual, 1.5)
			So(probability.GoalDiffIndex(5), ShouldEqual, 2.0)
		})
	})
}

func TestRatingModel(t *testing.T) {
	Convey("Given a fresh rating model", t, func() {
		r := probability.NewRatingModel()
		win := match("A", "B", 1, 0, 1)
		fixture := &model.Match{Home: "A", Away: "B"}

		Convey("When no history has been applied", func() {
			d, err := r.Distribution(fixture, nil)
			So(err, ShouldBeNil)

			Convey("Then both sides are evenly matched", func() {
				s := d.Summary()
				So(s.HomeWin, ShouldEqual, 0.5)
				So(s.AwayWin, ShouldEqual, 0.5)
				So(s.Draw, ShouldEqual, probability.DefaultDrawWeight)
			})
		})

		Convey("When a one goal win is applied", func() {
			_, err := r.Distribution(fixture, []*model.Match{win})
			So(err, ShouldBeNil)

			Convey("Then both sides move by K/2 from their pre-match ratings", func() {
				So(r.Rating("A"), ShouldEqual, 1510.0)
				So(r.Rating("B"), ShouldEqual, 1490.0)
			})

			Convey("Then replaying the same match is a no-op", func() {
				_, err := r.Distribution(fixture, []*model.Match{win, win})
				So(err, ShouldBeNil)
				So(r.Rating("A"), ShouldEqual, 1510.0)
				So(r.Snapshot().Version, ShouldEqual, 1)
			})

			Convey("Then an equal but distinct match is applied again", func() {
				again := *win
				_, err := r.Distribution(fixture, []*model.Match{win, &again})
				So(err, ShouldBeNil)
				So(r.Rating("A"), ShouldBeGreaterThan, 1510.0)
				So(r.Snapshot().Version, ShouldEqual, 2)
			})

			Convey("Then the distribution uses the updated ratings", func() {
				d, _ := r.Distribution(fixture, []*model.Match{win})
				cells := d.Cells()
				So(cells[0].Weight, ShouldAlmostEqual, probability.WinExpectancy(20), 1e-12)
				So(cells[1].Weight, ShouldAlmostEqual, probability.WinExpectancy(-20), 1e-12)
				So(cells[2].HomeGoals, ShouldEqual, 0)
				So(cells[2].AwayGoals, ShouldEqual, 0)
			})
		})

		Convey("When a long history is applied", func() {
			_, err := r.Distribution(fixture, threeTeamHistory())
			So(err, ShouldBeNil)

			Convey("Then the total rating is conserved", func() {
				snap := r.Snapshot()
				sum := 0.0
				for _, v := range snap.Teams {
					sum += v
				}
				So(sum, ShouldAlmostEqual, 3*probability.DefaultRating, 1e-9)
			})

			Convey("Then the snapshot is detached from the model", func() {
				snap := r.Snapshot()
				snap.Teams["A"] = 0
				So(r.Rating("A"), ShouldNotEqual, 0.0)
			})
		})

		Convey("When a match carries its own K", func() {
			heavy := match("A", "B", 3, 0, 1)
			heavy.K = 40
			_, err := r.Distribution(fixture, []*model.Match{heavy})
			So(err, ShouldBeNil)

			Convey("Then the update is scaled by K and the margin", func() {
				// 40 * (11+3)/8 * 0.5
				So(r.Rating("A"), ShouldAlmostEqual, 1535.0, 1e-9)
			})
		})

		Convey("When the draw weight is zero", func() {
			d, _ := probability.NewRatingModel(probability.WithDrawWeight(0)).Distribution(fixture, nil)

			Convey("Then the draw cell carries no mass", func() {
				So(d.Summary().Draw, ShouldEqual, 0.0)
			})
		})
	})
}

func TestFactory(t *testing.T) {
	Convey("Given model kinds", t, func() {
		Convey("Then known kinds build fresh models", func() {
			f, err := probability.NewFactory(probability.KindRating, nil, nil)
			So(err, ShouldBeNil)
			So(f(), ShouldNotPointTo, f())

			f, err = probability.NewFactory(probability.KindGoal, nil, nil)
			So(err, ShouldBeNil)
			_, ok := f().(*probability.GoalModel)
			So(ok, ShouldBeTrue)
		})

		Convey("Then unknown kinds fail", func() {
			_, err := probability.NewFactory("coin", nil, nil)
			So(err, ShouldNotBeNil)
		})

		Convey("Then batch distributions keep fixture order", func() {
			fixtures := []*model.Match{{Home: "A", Away: "B"}, {Home: "B", Away: "A"}}
			ds, err := probability.Distributions(probability.NewRatingModel(), fixtures, []*model.Match{match("A", "B", 2, 0, 1)})
			So(err, ShouldBeNil)
			So(len(ds), ShouldEqual, 2)
			So(ds[0].Summary().HomeWin, ShouldBeGreaterThan, ds[1].Summary().HomeWin)
		})
	})
}
