package config_test

import (
	"errors"
	"runtime"
	"testing"

	"github.com/okian/leaguecast/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.JobQueueSize, convey.ShouldEqual, 1_000)
			convey.So(cfg.Simulations, convey.ShouldEqual, 10_000)
			convey.So(cfg.BatchSize, convey.ShouldEqual, 100)
			convey.So(cfg.HistoryLimit, convey.ShouldEqual, -1)
			convey.So(cfg.Parallelism, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.Model, convey.ShouldEqual, "goal")
			convey.So(cfg.GoalCap, convey.ShouldEqual, 10)
			convey.So(cfg.DefaultRating, convey.ShouldEqual, 1500.0)
			convey.So(cfg.DefaultK, convey.ShouldEqual, 20.0)
			convey.So(cfg.DrawWeight, convey.ShouldEqual, 1.0)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then comma lists are split and trimmed", func() {
			cfg.DatasetPaths = " a.json, ,b.json "
			convey.So(cfg.Datasets(), convey.ShouldResemble, []string{"a.json", "b.json"})
			convey.So(cfg.Origins(), convey.ShouldResemble, []string{"*"})
		})
	})

	convey.Convey("Given invalid values", t, func() {
		cases := map[string]func(*config.Config){
			"simulations":   func(c *config.Config) { c.Simulations = 0 },
			"batch_size":    func(c *config.Config) { c.BatchSize = -1 },
			"goal_cap":      func(c *config.Config) { c.GoalCap = -2 },
			"draw_weight":   func(c *config.Config) { c.DrawWeight = -0.5 },
			"unknown model": func(c *config.Config) { c.Model = "coin" },
		}
		for name, mutate := range cases {
			cfg := config.New()
			mutate(cfg)
			err := cfg.Validate()

			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, name)
		}
	})
}
