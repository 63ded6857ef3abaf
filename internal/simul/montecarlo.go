package simul

import (
	"fmt"
	"log/slog"

	"mmprofiler/internal/domain"
	"mmprofiler/internal/engine"
	"mmprofiler/internal/maker"
)

// MakerFactory builds a fresh maker for one run. Monte Carlo runs must not
// share book or position state.
type MakerFactory func() (maker.Maker, error)

// MonteCarloConfig parametrizes a batch of independent runs over the same
// path distribution.
type MonteCarloConfig struct {
	Path    PathConfig
	NumRuns int
	Label   string
}

// MonteCarlo executes NumRuns independent runs, each with its own maker and
// its own path seeded deterministically from the base seed. Results come back
// in run order.
func MonteCarlo(cfg MonteCarloConfig, factory MakerFactory) ([]domain.RunResult, error) {
	if cfg.NumRuns <= 0 {
		return nil, &domain.ConfigError{Field: "num_runs", Err: fmt.Errorf("must be positive, got %d", cfg.NumRuns)}
	}

	results := make([]domain.RunResult, 0, cfg.NumRuns)
	for i := 0; i < cfg.NumRuns; i++ {
		pathCfg := cfg.Path
		pathCfg.Seed = cfg.Path.Seed + uint64(i)

		path, err := GeomBrownianPath(pathCfg)
		if err != nil {
			return nil, err
		}
		m, err := factory()
		if err != nil {
			return nil, fmt.Errorf("building maker for run %d: %w", i, err)
		}

		label := fmt.Sprintf("%s-%03d", cfg.Label, i)
		runner := NewRunner(engine.NewExchange(m), label, cfg.Path.Dt)
		_, result := runner.Run(path)
		result.Seed = pathCfg.Seed
		results = append(results, result)
	}

	slog.Info("monte carlo batch completed",
		slog.String("label", cfg.Label), slog.Int("num_runs", cfg.NumRuns))
	return results, nil
}

// SummarizeRuns reduces a batch to its mean and worst profit and loss.
func SummarizeRuns(results []domain.RunResult) (mean, worst float64) {
	if len(results) == 0 {
		return 0, 0
	}
	worst = results[0].PnL
	for _, r := range results {
		mean += r.PnL
		if r.PnL < worst {
			worst = r.PnL
		}
	}
	mean /= float64(len(results))
	return mean, worst
}
