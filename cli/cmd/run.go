package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/arrowbench/banditbench/bench"
	"github.com/arrowbench/banditbench/cli/config"
	"github.com/arrowbench/banditbench/cli/tui"
	"github.com/arrowbench/banditbench/log"
	"github.com/arrowbench/banditbench/metrics"
	"github.com/arrowbench/banditbench/report"
	"github.com/arrowbench/banditbench/types"
	"github.com/arrowbench/banditbench/worker"
)

// Exit codes for run. The CLI is a thin driver (spec.md §6); these codes
// are this module's own convention, not a contract the core enforces.
const (
	exitSuccess     = 0
	exitConfigError = 1
	exitRunError    = 2
)

// RunCommand returns the run command, the only command that drives the
// benchmark loop.
func RunCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run a benchmark config against its simulations",
		UsageText: `banditbench run --config <path> [--workers N] [--report <path>] [--tui]

EXAMPLES:
  banditbench run --config ./bench.yaml
  banditbench run --config ./bench.yaml --workers 4 --report ./report.json
  banditbench run --config ./bench.yaml --tui`,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Required: true, Usage: "Path to the benchmark YAML config"},
			&cli.IntFlag{Name: "workers", Value: 1, Usage: "Worker count for the C9 fan-out runner (1 = single-threaded loop)"},
			&cli.StringFlag{Name: "report", Usage: "Path to write the JSON run report (\"-\" for stderr)"},
			&cli.BoolFlag{Name: "tui", Usage: "Show a live-progress TUI while the run executes"},
			&cli.Int64Flag{Name: "seed", Usage: "Seed for the bundled baseline learner"},
		},
		Action: runAction,
	}
}

func runAction(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("config: %v", err), exitConfigError)
	}
	if cfgErr := cfg.Validate(); cfgErr != nil {
		return cli.Exit(cfgErr.Error(), exitConfigError)
	}

	cacher, err := buildCacher(cfg.Cache)
	if err != nil {
		return cli.Exit(fmt.Sprintf("cache: %v", err), exitConfigError)
	}

	envs, err := buildEnvironments(cfg, cacher)
	if err != nil {
		return cli.Exit(err.Error(), exitConfigError)
	}

	policy, err := buildPolicy(cfg.Batches)
	if err != nil {
		return cli.Exit(err.Error(), exitConfigError)
	}

	meta := report.NewRunMeta(nil, 1)
	logger := log.NewLogger(&meta).Sugar()
	collector := metrics.NewCollector(meta.RunID)
	learners := defaultLearners(c.Int64("seed"))

	var updates chan tui.Progress
	if c.Bool("tui") {
		updates = make(chan tui.Progress, 1)
		go func() {
			_ = tui.Run(updates)
		}()
	}

	workers := c.Int("workers")
	var results []types.Result
	if workers <= 1 {
		loop := &bench.Loop{
			Environments: envs,
			Learners:     learners,
			Policy:       policy,
			Logger:       logger,
			Metrics:      collector,
		}
		results = loop.Run()
	} else {
		var werrs []*types.WorkerError
		results, werrs = worker.Run(worker.Config{
			Workers:  workers,
			Learners: learners,
			Policy:   policy,
			Logger:   logger,
			Metrics:  collector,
		}, envs)
		for _, werr := range werrs {
			logger.Errorf("worker failure: %v", werr)
		}
	}

	if updates != nil {
		snap := collector.Snapshot()
		updates <- tui.Progress{
			EnvironmentsEvaluated: snap.EnvironmentsEvaluated,
			EnvironmentsFailed:    snap.EnvironmentsFailed,
			BatchesEmitted:        snap.BatchesEmitted,
			LearnerErrors:         snap.LearnerErrors,
			CacheHits:             snap.CacheHits,
			CacheMisses:           snap.CacheMisses,
			Done:                  true,
		}
		close(updates)
	}

	if path := c.String("report"); path != "" {
		run := report.Build(meta, collector.Snapshot(), results)
		if err := report.WriteJSON(run, path); err != nil {
			return cli.Exit(fmt.Sprintf("report: %v", err), exitRunError)
		}
	}

	return nil
}
