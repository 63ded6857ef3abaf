package domain

import "fmt"

// Transaction records one fill, seen from the taker perspective.
// Quantity is signed: positive when the taker bought from the maker,
// negative when the taker sold into a maker bid. Immutable once created.
type Transaction struct {
	Price    float64
	Quantity float64
	Time     float64
}

// TakeMakerOrder converts a resting maker order into the transaction produced
// by taking it in full. Taking a maker SELL means the taker bought (positive
// quantity); taking a maker BUY means the taker sold (negative quantity).
func TakeMakerOrder(o Order) (Transaction, error) {
	switch o.Side {
	case Sell:
		return Transaction{Price: o.Price, Quantity: o.Quantity}, nil
	case Buy:
		return Transaction{Price: o.Price, Quantity: -o.Quantity}, nil
	default:
		return Transaction{}, fmt.Errorf("take maker order: %w: side %d", ErrUnknownSide, o.Side)
	}
}

// String formats the transaction the way the fill log prints it.
func (t Transaction) String() string {
	side := "BUY"
	qty := t.Quantity
	if qty < 0 {
		side = "SELL"
		qty = -qty
	}
	return fmt.Sprintf("[tx] %s %.5f @ %.5f", side, qty, t.Price)
}
