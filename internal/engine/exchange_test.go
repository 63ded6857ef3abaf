package engine

import (
	"math"
	"testing"

	"mmprofiler/internal/book"
	"mmprofiler/internal/domain"
	"mmprofiler/internal/maker"
)

func newStripExchange(t *testing.T) *Exchange {
	t.Helper()
	m, err := maker.NewStrip(maker.StripConfig{
		InitMidPrice: 100, TickSize: 1,
		NumBids: 3, BidSize: 1,
		NumAsks: 3, AskSize: 1,
	})
	if err != nil {
		t.Fatalf("NewStrip failed: %v", err)
	}
	return NewExchange(m)
}

func TestApplyArbitrageWalksUp(t *testing.T) {
	e := newStripExchange(t)

	// Only the 101 ask is below the target; 102 stays.
	e.ApplyArbitrage(101.5, 0.1)

	txs := e.Transactions()
	if len(txs) != 1 {
		t.Fatalf("expected 1 fill, got %d", len(txs))
	}
	if txs[0].Price != 101 || txs[0].Quantity != 1 || txs[0].Time != 0.1 {
		t.Errorf("unexpected fill: %+v", txs[0])
	}

	ask, _ := e.Offers().BestAsk()
	if ask.Price != 102 {
		t.Errorf("expected next ask 102, got %f", ask.Price)
	}
	// The lifted notional came back as a bid at 100.
	bid, _ := e.Offers().BestBid()
	if bid.Price != 100 {
		t.Errorf("expected replenished bid at 100, got %f", bid.Price)
	}
}

func TestApplyArbitrageWalksDownAndStopsOnTarget(t *testing.T) {
	e := newStripExchange(t)

	// Bids rest at 99, 98, 97. Target 98 hits 99 then 98, and the tolerance
	// stop fires on the exact-price fill, leaving 97 alone.
	e.ApplyArbitrage(98, 0.2)

	txs := e.Transactions()
	if len(txs) != 2 {
		t.Fatalf("expected 2 fills, got %d", len(txs))
	}
	if txs[0].Price != 99 || txs[1].Price != 98 {
		t.Errorf("expected fills at 99 then 98, got %+v", txs)
	}
	for _, tx := range txs {
		if tx.Quantity != -1 || tx.Time != 0.2 {
			t.Errorf("unexpected fill: %+v", tx)
		}
	}

	bid, _ := e.Offers().BestBid()
	if bid.Price != 97 {
		t.Errorf("expected best bid 97 after the pass, got %f", bid.Price)
	}
}

func TestApplyArbitrageInsideSpreadIsNoOp(t *testing.T) {
	e := newStripExchange(t)
	e.ApplyArbitrage(100.2, 0.3)

	if n := e.NumTransactions(); n != 0 {
		t.Errorf("price inside the spread should not trade, got %d fills", n)
	}
}

func TestApplyArbitrageLogIsChronological(t *testing.T) {
	e := newStripExchange(t)
	e.ApplyArbitrage(101.5, 0.1)
	e.ApplyArbitrage(102.5, 0.2)

	txs := e.Transactions()
	if len(txs) < 2 {
		t.Fatalf("expected fills from both passes, got %d", len(txs))
	}
	for i := 1; i < len(txs); i++ {
		if txs[i].Time < txs[i-1].Time {
			t.Errorf("log out of order at %d: %+v", i, txs)
		}
	}
}

// postHookRecorder verifies the hook runs after every pass, fills or not.
type postHookRecorder struct {
	offers *book.OfferBook
	calls  []float64
}

func (r *postHookRecorder) Offers() *book.OfferBook    { return r.offers }
func (r *postHookRecorder) MidPrice() (float64, error) { return 0, domain.ErrEmptyBook }
func (r *postHookRecorder) Position() domain.Position  { return domain.Position{} }
func (r *postHookRecorder) Kind() string               { return "recorder" }

func (r *postHookRecorder) BuyAtFirstRank() (*domain.Transaction, error) {
	return nil, domain.ErrNoLiquidity
}

func (r *postHookRecorder) SellAtFirstRank() (*domain.Transaction, error) {
	return nil, domain.ErrNoLiquidity
}

func (r *postHookRecorder) PostHook(price, time float64) {
	r.calls = append(r.calls, price)
}

func TestPostHookRunsUnconditionally(t *testing.T) {
	rec := &postHookRecorder{offers: book.New()}
	e := NewExchange(rec)

	e.ApplyArbitrage(105, 0)
	e.ApplyArbitrage(95, 1)

	if len(rec.calls) != 2 || rec.calls[0] != 105 || rec.calls[1] != 95 {
		t.Errorf("post hook should run once per pass: %v", rec.calls)
	}
}

func TestExchangeWithDeltaMakerRecenters(t *testing.T) {
	m, err := maker.NewDelta(maker.DeltaConfig{
		InitMidPrice:    100,
		Fn:              func(x float64) float64 { return 100 * 100 / x },
		NumOneWayOffers: 5,
		TickInterval:    0.5,
	})
	if err != nil {
		t.Fatalf("NewDelta failed: %v", err)
	}
	e := NewExchange(m)

	e.ApplyArbitrage(101.2, 0.1)

	if e.NumTransactions() == 0 {
		t.Fatal("expected fills walking up to 101.2")
	}
	mid, err := e.MidPrice()
	if err != nil {
		t.Fatalf("MidPrice failed: %v", err)
	}
	if math.Abs(mid-101.2) > 1e-7 {
		t.Errorf("post hook should re-center the ladder on 101.2, got mid %f", mid)
	}
}
