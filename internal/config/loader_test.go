package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/leaguecast/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.Simulations, convey.ShouldEqual, 10_000)
				convey.So(cfg.HistoryLimit, convey.ShouldEqual, -1)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("LEAGUECAST_ADDR", ":8080")
			_ = os.Setenv("LEAGUECAST_SIMULATIONS", "2500")
			_ = os.Setenv("LEAGUECAST_HISTORY_LIMIT", "380")
			_ = os.Setenv("LEAGUECAST_MODEL", "rating")
			_ = os.Setenv("LEAGUECAST_DRAW_WEIGHT", "0.25")
			_ = os.Setenv("LEAGUECAST_SEED", "42")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.Simulations, convey.ShouldEqual, 2500)
				convey.So(cfg.HistoryLimit, convey.ShouldEqual, 380)
				convey.So(cfg.Model, convey.ShouldEqual, "rating")
				convey.So(cfg.DrawWeight, convey.ShouldEqual, 0.25)
				convey.So(cfg.Seed, convey.ShouldEqual, uint64(42))
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
simulations: 5000
batch_size: 250
model: elo
dataset_paths: "leagues/2019.json,leagues/2020.json"
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("LEAGUECAST_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.Simulations, convey.ShouldEqual, 5000)
				convey.So(cfg.BatchSize, convey.ShouldEqual, 250)
				convey.So(cfg.Model, convey.ShouldEqual, "elo")
				convey.So(cfg.Datasets(), convey.ShouldResemble, []string{"leagues/2019.json", "leagues/2020.json"})
				convey.So(cfg.GoalCap, convey.ShouldEqual, 10) // From defaults
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
simulations: 5000
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("LEAGUECAST_CONFIG", tmpFile)
			_ = os.Setenv("LEAGUECAST_ADDR", ":8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")     // Overridden by env
				convey.So(cfg.Simulations, convey.ShouldEqual, 5000) // From file
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("LEAGUECAST_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("LEAGUECAST_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with an invalid model", func() {
			_ = os.Setenv("LEAGUECAST_MODEL", "dice")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("LEAGUECAST_SIMULATIONS", "lots")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"LEAGUECAST_CONFIG",
		"LEAGUECAST_ADDR",
		"LEAGUECAST_SIMULATIONS",
		"LEAGUECAST_HISTORY_LIMIT",
		"LEAGUECAST_MODEL",
		"LEAGUECAST_DRAW_WEIGHT",
		"LEAGUECAST_SEED",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "leaguecast-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
