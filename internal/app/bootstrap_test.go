package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mmprofiler/internal/infra"
	"mmprofiler/internal/infra/storage"
	"mmprofiler/internal/service"
)

func testBootstrap(t *testing.T, kind string) *Bootstrap {
	t.Helper()

	cfg := &infra.Config{}
	cfg.Path.InitPrice = 100
	cfg.Path.Sigma = 0.2
	cfg.Path.NumSteps = 50
	cfg.Path.Dt = 0.01
	cfg.Path.Seed = 7
	cfg.Maker.Kind = kind
	cfg.Maker.InitMidPrice = 100
	cfg.Maker.TickSize = 1
	cfg.Maker.NumBids = 5
	cfg.Maker.BidSize = 1
	cfg.Maker.NumAsks = 5
	cfg.Maker.AskSize = 1
	cfg.Maker.NumOneWayOffers = 5
	cfg.Maker.TickInterval = 0.5
	cfg.Maker.Notional = 10000
	cfg.Option.Strike = 100
	cfg.Option.Sigma = 0.2
	cfg.Option.Maturity = 1
	cfg.Option.Contracts = 100
	cfg.MonteCarlo.NumRuns = 3
	cfg.MonteCarlo.Label = "test-batch"
	cfg.Storage.ReportDir = filepath.Join(t.TempDir(), "reports")

	store, err := storage.NewStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening storage: %v", err)
	}

	return &Bootstrap{Config: cfg, Storage: store, Feed: service.NewFeedService()}
}

func TestMakerFactoryKinds(t *testing.T) {
	for _, kind := range []string{infra.MakerKindStrip, infra.MakerKindDelta, infra.MakerKindReplication} {
		t.Run(kind, func(t *testing.T) {
			b := testBootstrap(t, kind)
			m, err := b.MakerFactory()()
			if err != nil {
				t.Fatalf("factory failed: %v", err)
			}
			if m.Kind() != kind {
				t.Errorf("expected kind %q, got %q", kind, m.Kind())
			}
		})
	}

	b := testBootstrap(t, "martingale")
	if _, err := b.MakerFactory()(); err == nil {
		t.Error("unknown kind should fail")
	}
}

func TestRunSinglePersistsResult(t *testing.T) {
	b := testBootstrap(t, infra.MakerKindStrip)

	result, err := b.RunSingle(context.Background(), nil)
	if err != nil {
		t.Fatalf("RunSingle failed: %v", err)
	}

	stored, err := b.Storage.GetRun(result.Label)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if stored == nil {
		t.Fatal("run should be persisted")
	}
	if stored.NumTx != result.NumTx {
		t.Errorf("persisted fill count %d disagrees with result %d", stored.NumTx, result.NumTx)
	}

	fills, err := b.Storage.LoadFills(stored.ID)
	if err != nil {
		t.Fatalf("LoadFills failed: %v", err)
	}
	if len(fills) != result.NumTx {
		t.Errorf("expected %d persisted fills, got %d", result.NumTx, len(fills))
	}

	if len(b.Feed.Results()) != 1 {
		t.Error("result should be recorded on the feed")
	}
}

func TestRunSingleWritesReports(t *testing.T) {
	b := testBootstrap(t, infra.MakerKindStrip)

	result, err := b.RunSingle(context.Background(), nil)
	if err != nil {
		t.Fatalf("RunSingle failed: %v", err)
	}

	snapData, err := os.ReadFile(filepath.Join(b.Config.Storage.ReportDir, result.Label+"_snapshots.csv"))
	if err != nil {
		t.Fatalf("reading snapshot report: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(snapData)), "\n")
	if len(lines) != b.Config.Path.NumSteps+1 {
		t.Errorf("expected header + %d snapshot rows, got %d lines", b.Config.Path.NumSteps, len(lines))
	}

	fillData, err := os.ReadFile(filepath.Join(b.Config.Storage.ReportDir, result.Label+"_fills.csv"))
	if err != nil {
		t.Fatalf("reading fill report: %v", err)
	}
	fillLines := strings.Split(strings.TrimSpace(string(fillData)), "\n")
	if len(fillLines) != result.NumTx+1 {
		t.Errorf("expected header + %d fill rows, got %d lines", result.NumTx, len(fillLines))
	}
}

func TestRunSingleCancelled(t *testing.T) {
	b := testBootstrap(t, infra.MakerKindStrip)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := b.RunSingle(ctx, nil); err == nil {
		t.Error("cancelled context should abort the run")
	}
}

func TestRunMonteCarloPersistsBatch(t *testing.T) {
	b := testBootstrap(t, infra.MakerKindDelta)

	results, err := b.RunMonteCarlo(context.Background())
	if err != nil {
		t.Fatalf("RunMonteCarlo failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	runs, err := b.Storage.ListRuns(0)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 3 {
		t.Errorf("expected 3 persisted runs, got %d", len(runs))
	}

	// Each stored run must carry the seed its own path was generated with,
	// not the batch base seed.
	seeds := map[string]uint64{}
	for _, r := range results {
		seeds[r.Label] = r.Seed
	}
	for _, run := range runs {
		if want, ok := seeds[run.Label]; !ok || run.Seed != want {
			t.Errorf("run %q persisted seed %d, want %d", run.Label, run.Seed, want)
		}
	}
}
