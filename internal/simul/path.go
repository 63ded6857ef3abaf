// Package simul drives market makers against simulated arbitrageur flow:
// price path generation, single-run execution and Monte Carlo aggregation.
package simul

import (
	"fmt"
	"math"
	"math/rand/v2"

	"mmprofiler/internal/domain"
)

// PathConfig parametrizes a geometric Brownian motion price path.
type PathConfig struct {
	InitPrice float64
	Drift     float64
	Sigma     float64
	NumSteps  int
	Dt        float64
	Seed      uint64
}

func (c PathConfig) validate() error {
	if c.InitPrice <= 0 {
		return &domain.ConfigError{Field: "init_price", Err: fmt.Errorf("must be positive, got %g", c.InitPrice)}
	}
	if c.Sigma < 0 {
		return &domain.ConfigError{Field: "sigma", Err: fmt.Errorf("must not be negative, got %g", c.Sigma)}
	}
	if c.NumSteps <= 0 {
		return &domain.ConfigError{Field: "num_steps", Err: fmt.Errorf("must be positive, got %d", c.NumSteps)}
	}
	if c.Dt <= 0 {
		return &domain.ConfigError{Field: "dt", Err: fmt.Errorf("must be positive, got %g", c.Dt)}
	}
	return nil
}

// GeomBrownianPath returns NumSteps+1 prices starting at InitPrice, following
// the exact log-normal solution of the GBM stochastic differential equation.
// The same seed always yields the same path.
func GeomBrownianPath(cfg PathConfig) ([]float64, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	path := make([]float64, cfg.NumSteps+1)
	path[0] = cfg.InitPrice

	driftTerm := (cfg.Drift - 0.5*cfg.Sigma*cfg.Sigma) * cfg.Dt
	volTerm := cfg.Sigma * math.Sqrt(cfg.Dt)
	for i := 1; i <= cfg.NumSteps; i++ {
		path[i] = path[i-1] * math.Exp(driftTerm+volTerm*rng.NormFloat64())
	}
	return path, nil
}
