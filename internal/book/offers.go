// Package book holds the maker's resting offers: two price-ranked lists with
// best-of-book at the head of each.
package book

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"mmprofiler/internal/domain"
)

// OfferBook keeps bids sorted descending and asks sorted ascending, so the
// best level of each side is always at index 0.
type OfferBook struct {
	bids []domain.Order
	asks []domain.Order
}

// New returns an empty offer book.
func New() *OfferBook {
	return &OfferBook{}
}

// Add inserts a resting order on its side, keeping sort order. When the price
// lands within tolerance of an existing level on the same side, quantities
// are merged into that level instead of creating a duplicate.
// An unrecognized side is logged and dropped; a long simulation should not
// halt on a programming error in a caller.
func (b *OfferBook) Add(order domain.Order) {
	switch order.Side {
	case domain.Buy:
		b.bids = insert(b.bids, order, func(a, b float64) bool { return a > b })
	case domain.Sell:
		b.asks = insert(b.asks, order, func(a, b float64) bool { return a < b })
	default:
		slog.Warn("order side not recognized, nothing pushed", slog.Int("side", int(order.Side)))
	}
}

// insert places order into levels kept sorted by better(price_i, price_j),
// merging into an existing level within price tolerance.
func insert(levels []domain.Order, order domain.Order, better func(a, b float64) bool) []domain.Order {
	for i := range levels {
		if domain.PriceEqual(levels[i].Price, order.Price) {
			levels[i].Quantity += order.Quantity
			return levels
		}
	}
	idx := sort.Search(len(levels), func(i int) bool {
		return !better(levels[i].Price, order.Price)
	})
	levels = append(levels, domain.Order{})
	copy(levels[idx+1:], levels[idx:])
	levels[idx] = order
	return levels
}

// HasBid reports whether at least one bid is resting.
func (b *OfferBook) HasBid() bool { return len(b.bids) > 0 }

// HasAsk reports whether at least one ask is resting.
func (b *OfferBook) HasAsk() bool { return len(b.asks) > 0 }

// BestBid peeks at the highest resting bid.
func (b *OfferBook) BestBid() (domain.Order, bool) {
	if !b.HasBid() {
		return domain.Order{}, false
	}
	return b.bids[0], true
}

// BestAsk peeks at the lowest resting ask.
func (b *OfferBook) BestAsk() (domain.Order, bool) {
	if !b.HasAsk() {
		return domain.Order{}, false
	}
	return b.asks[0], true
}

// PopBestBid removes and returns the best bid.
// Callers must check HasBid first; popping an empty side is an error.
func (b *OfferBook) PopBestBid() (domain.Order, error) {
	if !b.HasBid() {
		return domain.Order{}, domain.ErrEmptyBook
	}
	best := b.bids[0]
	b.bids = b.bids[1:]
	return best, nil
}

// PopBestAsk removes and returns the best ask.
func (b *OfferBook) PopBestAsk() (domain.Order, error) {
	if !b.HasAsk() {
		return domain.Order{}, domain.ErrEmptyBook
	}
	best := b.asks[0]
	b.asks = b.asks[1:]
	return best, nil
}

// Clear drops all resting orders. Used by curve makers rebuilding the ladder.
func (b *OfferBook) Clear() {
	b.bids = b.bids[:0]
	b.asks = b.asks[:0]
}

// Depth returns the number of resting bid and ask levels.
func (b *OfferBook) Depth() (bids, asks int) {
	return len(b.bids), len(b.asks)
}

// Levels returns copies of the top n levels of each side (best first).
// Read access for the display layer.
func (b *OfferBook) Levels(n int) (bids, asks []domain.Order) {
	bids = append(bids, b.bids[:min(n, len(b.bids))]...)
	asks = append(asks, b.asks[:min(n, len(b.asks))]...)
	return bids, asks
}

// String renders the top five levels side by side, for logs and debugging.
func (b *OfferBook) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%15s|%15s||%15s|%15s\n", "Qty Bid", "Px Bid", "Px Ask", "Qty Ask"))
	rows := min(5, max(len(b.bids), len(b.asks)))
	for i := 0; i < rows; i++ {
		bidQty, bidPx, askPx, askQty := "", "", "", ""
		if i < len(b.bids) {
			bidQty = fmt.Sprintf("%.5f", b.bids[i].Quantity)
			bidPx = fmt.Sprintf("%.5f", b.bids[i].Price)
		}
		if i < len(b.asks) {
			askPx = fmt.Sprintf("%.5f", b.asks[i].Price)
			askQty = fmt.Sprintf("%.5f", b.asks[i].Quantity)
		}
		sb.WriteString(fmt.Sprintf("%15s|%15s||%15s|%15s\n", bidQty, bidPx, askPx, askQty))
	}
	return sb.String()
}
