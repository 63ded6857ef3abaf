package simul

import (
	"log/slog"

	"mmprofiler/internal/domain"
	"mmprofiler/internal/engine"
	"mmprofiler/internal/infra"
)

// deltaProvider is implemented by makers whose quoting derives from a
// target-inventory curve; the runner records the curve value per step.
type deltaProvider interface {
	ComputeDelta(price float64) float64
}

// Runner replays a price path through an exchange, one arbitrage pass per
// step, and records an observation after each pass.
type Runner struct {
	exchange *engine.Exchange
	label    string
	dt       float64
}

// NewRunner wires an exchange to a run label and time step.
func NewRunner(exchange *engine.Exchange, label string, dt float64) *Runner {
	return &Runner{exchange: exchange, label: label, dt: dt}
}

// Exchange returns the driven exchange.
func (r *Runner) Exchange() *engine.Exchange { return r.exchange }

// Step applies one arbitrage pass at the given price and returns the
// resulting observation.
func (r *Runner) Step(step int, price float64) domain.Snapshot {
	t := float64(step) * r.dt
	r.exchange.ApplyArbitrage(price, t)
	return r.observe(t, price)
}

func (r *Runner) observe(t, price float64) domain.Snapshot {
	m := r.exchange.Maker()
	pos := m.Position()
	snap := domain.Snapshot{
		Time:  t,
		Price: price,
		Cash:  pos.Cash,
		Asset: pos.Asset,
	}
	if bid, ok := m.Offers().BestBid(); ok {
		snap.BestBid, snap.HasBid = bid.Price, true
	}
	if ask, ok := m.Offers().BestAsk(); ok {
		snap.BestAsk, snap.HasAsk = ask.Price, true
	}
	if dp, ok := m.(deltaProvider); ok {
		snap.TargetDelta = dp.ComputeDelta(price)
	}
	return snap
}

// Run replays the whole path. path[0] is the initial price and does not
// trigger a pass; each later element is one step. The returned snapshots
// hold one observation per pass.
func (r *Runner) Run(path []float64) ([]domain.Snapshot, domain.RunResult) {
	snapshots := make([]domain.Snapshot, 0, len(path))
	for i := 1; i < len(path); i++ {
		snapshots = append(snapshots, r.Step(i, path[i]))
	}
	return snapshots, r.Finalize(path)
}

// Finalize marks the position to the last path price and summarizes the run.
// Callers stepping the path themselves call this once at the end.
func (r *Runner) Finalize(path []float64) domain.RunResult {
	finalPrice := path[len(path)-1]
	pos := r.exchange.Maker().Position()
	result := domain.RunResult{
		Label:      r.label,
		FinalPrice: finalPrice,
		Cash:       pos.Cash,
		Asset:      pos.Asset,
		NumTx:      r.exchange.NumTransactions(),
		PnL:        pos.MarkToMarket(finalPrice),
	}

	infra.GlobalMetrics.RecordRunCompleted()
	slog.Info("run completed",
		slog.String("label", r.label),
		slog.String("maker", r.exchange.Maker().Kind()),
		slog.Int("num_tx", result.NumTx),
		slog.Float64("pnl", result.PnL))
	return result
}
