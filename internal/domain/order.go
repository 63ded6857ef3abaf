package domain

import "math"

// Side identifies which half of the book a resting order belongs to.
type Side int

const (
	Buy Side = iota + 1
	Sell
)

// String returns the string representation of Side.
func (s Side) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// PriceTolerance is the relative tolerance used when two price levels are
// considered equal. Replenished liquidity landing within tolerance of an
// existing level is merged instead of creating a duplicate level.
const PriceTolerance = 1e-7

// PriceEqual reports whether two prices are equal within PriceTolerance.
func PriceEqual(a, b float64) bool {
	return math.Abs(a-b) <= PriceTolerance*math.Max(math.Abs(a), math.Abs(b))
}

// Order is one resting offer posted by a maker. Immutable after creation,
// except for quantity merges performed by the book on duplicate levels.
type Order struct {
	Side     Side
	Price    float64
	Quantity float64
}

// NewOrder validates and builds a resting order.
// Price and quantity must both be strictly positive.
func NewOrder(side Side, price, quantity float64) (Order, error) {
	if price <= 0 || quantity <= 0 {
		return Order{}, ErrInvalidOrder
	}
	return Order{Side: side, Price: price, Quantity: quantity}, nil
}

// MustOrder is NewOrder for statically-known valid inputs (tests, fixtures).
// Panics on invalid price or quantity.
func MustOrder(side Side, price, quantity float64) Order {
	o, err := NewOrder(side, price, quantity)
	if err != nil {
		panic(err)
	}
	return o
}
