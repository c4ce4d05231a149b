package main

import (
	"context"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/okian/leaguecast/internal/config"
	"github.com/okian/leaguecast/internal/runner"
)

// Default configuration constants.
const (
	defaultTimeout = 30 * time.Second
	defaultWait    = 10 * time.Minute
)

func main() {
	cfg, err := config.Load(context.Background())
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	var (
		datasets    = flag.String("datasets", cfg.DatasetPaths, "Comma separated league JSON files")
		leagues     = flag.String("leagues", "", "Comma separated league names (default: all)")
		simulations = flag.Int("simulations", cfg.Simulations, "Simulated seasons per league")
		modelKind   = flag.String("model", cfg.Model, "Probability model: goal or rating")
		seed        = flag.Uint64("seed", cfg.Seed, "Seed for reproducible runs, 0 for random")
		report      = flag.String("report", cfg.ReportPath, "CSV report path")
		baseURL     = flag.String("url", "", "Submit to a running service instead of forecasting locally")
		timeout     = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		wait        = flag.Duration("wait", defaultWait, "How long to wait for a remote job")
		verbose     = flag.Bool("verbose", false, "Enable debug logging")
		help        = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		runner.ShowHelp()
		return
	}

	if err := runner.SetupLogging(cfg.LogFormat, cfg.LogLevel, *verbose); err != nil {
		_, _ = os.Stderr.WriteString("failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	cfg.DatasetPaths = *datasets
	cfg.Simulations = *simulations
	cfg.Model = *modelKind
	cfg.Seed = *seed
	if err := cfg.Validate(); err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	var names []string
	for _, n := range strings.Split(*leagues, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}

	if _, err := runner.Run(context.Background(), &runner.Config{
		Service:    cfg,
		Leagues:    names,
		BaseURL:    strings.TrimRight(*baseURL, "/"),
		Timeout:    *timeout,
		Wait:       *wait,
		ReportPath: *report,
		Verbose:    *verbose,
	}); err != nil {
		_, _ = os.Stderr.WriteString("forecast failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
