// Package engine drives a single maker against the external arbitrageur: an
// arriving reference price is matched against the resting book until no
// profitable fill remains.
package engine

import (
	"log/slog"

	"mmprofiler/internal/book"
	"mmprofiler/internal/domain"
	"mmprofiler/internal/infra"
	"mmprofiler/internal/maker"
)

// maxArbitrageIterations caps one arbitrage pass. Redeployed liquidity
// landing exactly on the target price can otherwise keep the loop crossable
// forever; the tolerance stop below handles the common case, the cap is the
// hard guard.
const maxArbitrageIterations = 1 << 16

// Exchange pairs one maker with an append-only transaction log.
// Single-threaded by design: every simulation step is a plain call chain
// with no suspension points.
type Exchange struct {
	maker        maker.Maker
	transactions []domain.Transaction
	time         float64
}

// NewExchange wraps a maker. The transaction log starts empty.
func NewExchange(m maker.Maker) *Exchange {
	return &Exchange{maker: m}
}

// Maker returns the driven maker.
func (e *Exchange) Maker() maker.Maker { return e.maker }

// Offers exposes the maker's book for the display layer.
func (e *Exchange) Offers() *book.OfferBook { return e.maker.Offers() }

// MidPrice proxies the maker's mid price.
func (e *Exchange) MidPrice() (float64, error) { return e.maker.MidPrice() }

// Time returns the timestamp of the latest arbitrage pass.
func (e *Exchange) Time() float64 { return e.time }

// Transactions returns a copy of the chronological fill log.
func (e *Exchange) Transactions() []domain.Transaction {
	out := make([]domain.Transaction, len(e.transactions))
	copy(out, e.transactions)
	return out
}

// NumTransactions returns the fill count without copying the log.
func (e *Exchange) NumTransactions() int { return len(e.transactions) }

// BuyAtFirstRank lifts the maker's best ask, stamps the fill with the current
// exchange time and appends it to the log. ErrNoLiquidity passes through as
// the caller's stop signal.
func (e *Exchange) BuyAtFirstRank() (*domain.Transaction, error) {
	tx, err := e.maker.BuyAtFirstRank()
	if err != nil {
		return nil, err
	}
	stamped := domain.Transaction{Price: tx.Price, Quantity: tx.Quantity, Time: e.time}
	e.transactions = append(e.transactions, stamped)
	infra.GlobalMetrics.RecordFill()
	return &stamped, nil
}

// SellAtFirstRank hits the maker's best bid; otherwise as BuyAtFirstRank.
func (e *Exchange) SellAtFirstRank() (*domain.Transaction, error) {
	tx, err := e.maker.SellAtFirstRank()
	if err != nil {
		return nil, err
	}
	stamped := domain.Transaction{Price: tx.Price, Quantity: tx.Quantity, Time: e.time}
	e.transactions = append(e.transactions, stamped)
	infra.GlobalMetrics.RecordFill()
	return &stamped, nil
}

// ApplyArbitrage walks the book toward the target price: maker asks at or
// below it are lifted, maker bids at or above it are hit, until the price
// fits inside the spread. The loop stops early once a crossed order sits
// within tolerance of the target, so liquidity redeployed exactly on the
// target price cannot be traded round in circles. The maker's post hook runs
// unconditionally afterwards so curve makers can re-center.
func (e *Exchange) ApplyArbitrage(price, time float64) {
	e.time = time

	for i := 0; ; i++ {
		if i >= maxArbitrageIterations {
			slog.Error("arbitrage iteration cap reached, stopping pass",
				slog.Float64("price", price), slog.Int("iterations", i))
			break
		}

		if ask, ok := e.maker.Offers().BestAsk(); ok && ask.Price <= price {
			if _, err := e.BuyAtFirstRank(); err != nil {
				if !domain.IsRecoverable(err) {
					slog.Error("taker buy failed", slog.Any("error", err))
				}
				break
			}
			if domain.PriceEqual(ask.Price, price) {
				break
			}
			continue
		}

		if bid, ok := e.maker.Offers().BestBid(); ok && price <= bid.Price {
			if _, err := e.SellAtFirstRank(); err != nil {
				if !domain.IsRecoverable(err) {
					slog.Error("taker sell failed", slog.Any("error", err))
				}
				break
			}
			if domain.PriceEqual(bid.Price, price) {
				break
			}
			continue
		}

		break
	}

	e.maker.PostHook(price, time)
	infra.GlobalMetrics.RecordArbitragePass()
}
