// Package maker implements the liquidity-providing strategies: a fixed strip
// of offers, a static target-inventory curve, and a time-dependent
// replication curve. Variants are dispatched through the Maker interface at
// construction time; they share no mutable state.
package maker

import (
	"log/slog"
	"math"

	"mmprofiler/internal/book"
	"mmprofiler/internal/domain"
)

// Maker is the capability set the exchange drives: read the book, take the
// best offer on either side, and re-center after an arbitrage pass.
type Maker interface {
	// Offers exposes the resting book (read access for the exchange and the
	// display layer).
	Offers() *book.OfferBook

	// MidPrice is the average of best bid and best ask.
	// Returns ErrEmptyBook when either side is empty.
	MidPrice() (float64, error)

	// BuyAtFirstRank executes the external taker buying from the maker's best
	// ask. Returns ErrNoLiquidity when the ask side is empty; callers treat
	// that as a normal stop signal.
	BuyAtFirstRank() (*domain.Transaction, error)

	// SellAtFirstRank is the symmetric taker sell into the maker's best bid.
	SellAtFirstRank() (*domain.Transaction, error)

	// PostHook runs after an arbitrage pass completes. Curve makers use it to
	// rebuild the ladder around the latest reference price and time.
	PostHook(price, time float64)

	// Position returns a copy of the maker's running cash/asset position.
	Position() domain.Position

	// Kind names the strategy variant, for labels and persisted runs.
	Kind() string
}

func midPrice(ob *book.OfferBook) (float64, error) {
	bid, okBid := ob.BestBid()
	ask, okAsk := ob.BestAsk()
	if !okBid || !okAsk {
		return 0, domain.ErrEmptyBook
	}
	return (bid.Price + ask.Price) / 2, nil
}

// takeBestAsk pops the best ask and settles it against the position.
func takeBestAsk(ob *book.OfferBook, pos *domain.Position) (domain.Order, *domain.Transaction, error) {
	if !ob.HasAsk() {
		slog.Warn("no offer available, transaction failed")
		return domain.Order{}, nil, domain.ErrNoLiquidity
	}
	best, err := ob.PopBestAsk()
	if err != nil {
		return domain.Order{}, nil, err
	}
	pos.SwapAsset(-best.Quantity, best.Price)
	tx, err := domain.TakeMakerOrder(best)
	if err != nil {
		return domain.Order{}, nil, err
	}
	return best, &tx, nil
}

// takeBestBid pops the best bid and settles it against the position.
func takeBestBid(ob *book.OfferBook, pos *domain.Position) (domain.Order, *domain.Transaction, error) {
	if !ob.HasBid() {
		slog.Warn("no bid available, transaction failed")
		return domain.Order{}, nil, domain.ErrNoLiquidity
	}
	best, err := ob.PopBestBid()
	if err != nil {
		return domain.Order{}, nil, err
	}
	pos.SwapAsset(best.Quantity, best.Price)
	tx, err := domain.TakeMakerOrder(best)
	if err != nil {
		return domain.Order{}, nil, err
	}
	return best, &tx, nil
}

func roundTick(val, tick float64) float64 {
	return math.Round(val/tick) * tick
}
