package runner_test

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/leaguecast/internal/adapters/dataset"
	"github.com/okian/leaguecast/internal/adapters/http/api"
	service "github.com/okian/leaguecast/internal/app"
	"github.com/okian/leaguecast/internal/config"
	"github.com/okian/leaguecast/internal/runner"
	"github.com/okian/leaguecast/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

type matchJSON struct {
	Home      string `json:"home"`
	Away      string `json:"away"`
	HomeGoals int    `json:"homeGoals"`
	AwayGoals int    `json:"awayGoals"`
	Date      string `json:"date"`
}

type leagueJSON struct {
	Name    string      `json:"name"`
	Season  string      `json:"season"`
	Matches []matchJSON `json:"matches"`
}

// seasons writes two seasons of a six team league to a temp file.
func seasons(t *testing.T) string {
	t.Helper()
	teams := []string{"A", "B", "C", "D", "E", "F"}
	build := func(season string, start time.Time, played bool) leagueJSON {
		l := leagueJSON{Name: "Test League", Season: season}
		day := 0
		for h := range teams {
			for a := range teams {
				if h == a {
					continue
				}
				m := matchJSON{Home: teams[h], Away: teams[a], Date: start.AddDate(0, 0, day).Format(time.DateOnly)}
				if played {
					m.HomeGoals, m.AwayGoals = 6-h, 6-a
				}
				l.Matches = append(l.Matches, m)
				day++
			}
		}
		return l
	}
	data := []leagueJSON{
		build("2022", time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC), true),
		build("2023", time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC), false),
	}
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "leagues.json")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func readReport(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return csv.NewReader(f).ReadAll()
}

func testConfig(datasetPath string) *config.Config {
	cfg := config.New()
	cfg.DatasetPaths = datasetPath
	cfg.Simulations = 300
	cfg.BatchSize = 100
	cfg.Seed = 11
	return cfg
}

func TestRunLocal(t *testing.T) {
	Convey("Given a dataset file", t, func() {
		path := seasons(t)
		report := filepath.Join(t.TempDir(), "report.csv")

		Convey("When forecasting locally", func() {
			stats, err := runner.Run(context.Background(), &runner.Config{
				Service:    testConfig(path),
				Leagues:    []string{"Test League"},
				ReportPath: report,
			})
			So(err, ShouldBeNil)

			Convey("Then the run is summarized", func() {
				So(stats.Leagues, ShouldEqual, 1)
				So(stats.Matches, ShouldEqual, 60)
				So(stats.Simulations, ShouldEqual, 300)
				So(stats.Remote, ShouldBeFalse)
			})

			Convey("Then the report holds one row per league", func() {
				rows, err := readReport(report)
				So(err, ShouldBeNil)
				So(len(rows), ShouldEqual, 2)
				So(rows[0][0], ShouldEqual, "League")
				So(rows[1][0], ShouldEqual, "Test League")
				So(rows[1][1], ShouldEqual, "A")
			})
		})

		Convey("When a league is unknown", func() {
			_, err := runner.Run(context.Background(), &runner.Config{
				Service:    testConfig(path),
				Leagues:    []string{"Nope"},
				ReportPath: report,
			})

			Convey("Then the run fails", func() {
				So(errors.Is(err, dataset.ErrUnknownLeague), ShouldBeTrue)
			})
		})
	})
}

func TestRunRemote(t *testing.T) {
	Convey("Given a running service", t, func() {
		path := seasons(t)
		ds, err := dataset.Load([]string{path})
		So(err, ShouldBeNil)

		cfg := testConfig(path)
		svc := service.New(service.WithConfig(cfg), service.WithDataset(ds))
		So(svc.Start(context.Background()), ShouldBeNil)
		defer func() { _ = svc.Stop(context.Background()) }()

		srv := httptest.NewServer(api.NewServer(svc).Handler())
		defer srv.Close()

		report := filepath.Join(t.TempDir(), "report.csv")

		Convey("When forecasting through it", func() {
			stats, err := runner.Run(context.Background(), &runner.Config{
				Service:    cfg,
				Leagues:    []string{"Test League"},
				BaseURL:    srv.URL,
				Timeout:    5 * time.Second,
				Wait:       30 * time.Second,
				ReportPath: report,
			})
			So(err, ShouldBeNil)

			Convey("Then the job result becomes the report", func() {
				So(stats.Remote, ShouldBeTrue)
				So(stats.JobID, ShouldNotBeEmpty)
				rows, err := readReport(report)
				So(err, ShouldBeNil)
				So(len(rows), ShouldEqual, 2)
				So(rows[1][0], ShouldEqual, "Test League")
			})
		})
	})

	Convey("Given an unhealthy service", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		Convey("When forecasting through it", func() {
			_, err := runner.Run(context.Background(), &runner.Config{
				Service: config.New(),
				BaseURL: srv.URL,
				Timeout: time.Second,
				Wait:    time.Second,
			})

			Convey("Then the health check fails", func() {
				So(errors.Is(err, runner.ErrUnhealthy), ShouldBeTrue)
			})
		})
	})
}
