// Package app orchestrates startup and ties configuration, storage, the
// simulation and the feed server together.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"mmprofiler/internal/domain"
	"mmprofiler/internal/engine"
	"mmprofiler/internal/infra"
	"mmprofiler/internal/infra/storage"
	"mmprofiler/internal/maker"
	"mmprofiler/internal/pricing"
	"mmprofiler/internal/report"
	"mmprofiler/internal/server"
	"mmprofiler/internal/service"
	"mmprofiler/internal/simul"
)

// Bootstrap orchestrates the application startup sequence.
type Bootstrap struct {
	Config  *infra.Config
	Storage *storage.Storage
	Feed    *service.FeedService
}

// NewBootstrap creates a new Bootstrap instance.
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization.
func (b *Bootstrap) Initialize(configPath string) error {
	slog.Info("bootstrapping mmprofiler")

	// 1. Load Config
	cfg, err := infra.LoadConfig(configPath)
	if err != nil {
		return err
	}
	b.Config = cfg

	// 2. Setup Logger
	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	// 3. Initialize Storage (DB)
	store, err := storage.NewStorage(cfg.Storage.DSN)
	if err != nil {
		return err
	}
	b.Storage = store
	slog.Info("database initialized", slog.String("dsn", cfg.Storage.DSN))

	// 4. Feed state
	b.Feed = service.NewFeedService()

	return nil
}

// MakerFactory builds a fresh maker from the configured kind. Every run gets
// its own instance.
func (b *Bootstrap) MakerFactory() simul.MakerFactory {
	cfg := b.Config
	switch cfg.Maker.Kind {
	case infra.MakerKindStrip:
		return func() (maker.Maker, error) {
			return maker.NewStrip(maker.StripConfig{
				InitMidPrice: cfg.Maker.InitMidPrice,
				TickSize:     cfg.Maker.TickSize,
				NumBids:      cfg.Maker.NumBids,
				BidSize:      cfg.Maker.BidSize,
				NumAsks:      cfg.Maker.NumAsks,
				AskSize:      cfg.Maker.AskSize,
			})
		}
	case infra.MakerKindDelta:
		notional := cfg.Maker.Notional
		return func() (maker.Maker, error) {
			return maker.NewDelta(maker.DeltaConfig{
				InitMidPrice:    cfg.Maker.InitMidPrice,
				Fn:              func(price float64) float64 { return notional / price },
				NumOneWayOffers: cfg.Maker.NumOneWayOffers,
				TickInterval:    cfg.Maker.TickInterval,
				SeedInventory:   cfg.Maker.SeedInventory,
			})
		}
	case infra.MakerKindReplication:
		fn := pricing.ReplicationDelta(cfg.Option.Strike, cfg.Option.Rate, cfg.Option.Sigma, cfg.Option.Contracts)
		return func() (maker.Maker, error) {
			return maker.NewReplication(maker.ReplicationConfig{
				InitMidPrice:    cfg.Maker.InitMidPrice,
				Fn:              maker.ReplicationFunc(fn),
				Maturity:        cfg.Option.Maturity,
				NumOneWayOffers: cfg.Maker.NumOneWayOffers,
				TickInterval:    cfg.Maker.TickInterval,
			})
		}
	default:
		return func() (maker.Maker, error) {
			return nil, fmt.Errorf("unknown maker kind %q", cfg.Maker.Kind)
		}
	}
}

func (b *Bootstrap) pathConfig() simul.PathConfig {
	return simul.PathConfig{
		InitPrice: b.Config.Path.InitPrice,
		Drift:     b.Config.Path.Drift,
		Sigma:     b.Config.Path.Sigma,
		NumSteps:  b.Config.Path.NumSteps,
		Dt:        b.Config.Path.Dt,
		Seed:      b.Config.Path.Seed,
	}
}

// RunSingle executes one run over a fresh path, publishing each observation
// and fill to the feed, then persists the result.
func (b *Bootstrap) RunSingle(ctx context.Context, srv *server.Server) (*domain.RunResult, error) {
	path, err := simul.GeomBrownianPath(b.pathConfig())
	if err != nil {
		return nil, err
	}
	m, err := b.MakerFactory()()
	if err != nil {
		return nil, err
	}

	label := fmt.Sprintf("%s-%d", b.Config.Maker.Kind, b.Config.Path.Seed)
	exchange := engine.NewExchange(m)
	runner := simul.NewRunner(exchange, label, b.Config.Path.Dt)

	snapshots := make([]domain.Snapshot, 0, len(path)-1)
	seenFills := 0
	for i := 1; i < len(path); i++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		snap := runner.Step(i, path[i])
		snapshots = append(snapshots, snap)
		if srv != nil {
			srv.PublishSnapshot(snap)
			for _, tx := range exchange.Transactions()[seenFills:] {
				srv.PublishFill(tx)
			}
		}
		seenFills = exchange.NumTransactions()
	}

	result := runner.Finalize(path)
	result.Seed = b.Config.Path.Seed
	b.Feed.RecordResult(result)

	if _, err := b.Storage.SaveRun(result, m.Kind(), b.Config.Path.Seed, b.Config.Path.NumSteps, exchange.Transactions()); err != nil {
		return nil, err
	}
	b.saveRunReports(label, snapshots, exchange.Transactions())
	return &result, nil
}

// saveRunReports writes the per-step series and the fill log as CSV.
// Reporting failures are logged, not fatal: the run itself succeeded.
func (b *Bootstrap) saveRunReports(label string, snapshots []domain.Snapshot, fills []domain.Transaction) {
	dir := b.Config.Storage.ReportDir
	if path, err := report.SaveSnapshots(dir, label+"_snapshots.csv", snapshots); err != nil {
		slog.Error("failed to write snapshot report", slog.Any("error", err))
	} else {
		slog.Info("snapshot report written", slog.String("path", path))
	}
	if path, err := report.SaveTransactions(dir, label+"_fills.csv", fills); err != nil {
		slog.Error("failed to write fill report", slog.Any("error", err))
	} else {
		slog.Info("fill report written", slog.String("path", path))
	}
}

// RunMonteCarlo executes the configured batch, persists every run summary and
// writes the batch report to CSV.
func (b *Bootstrap) RunMonteCarlo(ctx context.Context) ([]domain.RunResult, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	cfg := simul.MonteCarloConfig{
		Path:    b.pathConfig(),
		NumRuns: b.Config.MonteCarlo.NumRuns,
		Label:   b.Config.MonteCarlo.Label,
	}
	results, err := simul.MonteCarlo(cfg, b.MakerFactory())
	if err != nil {
		return nil, err
	}

	for _, result := range results {
		b.Feed.RecordResult(result)
		if _, err := b.Storage.SaveRun(result, b.Config.Maker.Kind, result.Seed, b.Config.Path.NumSteps, nil); err != nil {
			slog.Error("failed to persist run", slog.String("label", result.Label), slog.Any("error", err))
		}
	}

	mean, worst := simul.SummarizeRuns(results)
	slog.Info("batch summary", slog.Float64("mean_pnl", mean), slog.Float64("worst_pnl", worst))

	name := fmt.Sprintf("%s.csv", b.Config.MonteCarlo.Label)
	if path, err := report.SaveResults(b.Config.Storage.ReportDir, name, results); err != nil {
		slog.Error("failed to write report", slog.Any("error", err))
	} else {
		slog.Info("report written", slog.String("path", path))
	}

	return results, nil
}
