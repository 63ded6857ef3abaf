package maker

import (
	"fmt"

	"mmprofiler/internal/book"
	"mmprofiler/internal/domain"
)

// StripConfig sizes the fixed-strip maker's initial ladder.
type StripConfig struct {
	InitMidPrice float64
	TickSize     float64
	NumBids      int
	BidSize      float64
	NumAsks      int
	AskSize      float64
}

// Strip posts one offer per tick around the initial mid price and replenishes
// in place after every fill: one tick further on the opposite side, with the
// quantity chosen so the redeployed notional matches the traded notional
// (newQty*newPrice == oldQty*oldPrice). It never rebuilds the whole book.
type Strip struct {
	offers   *book.OfferBook
	pos      domain.Position
	tickSize float64
}

// NewStrip validates the configuration and lays out the initial strip.
// No offer is posted on the mid price itself; levels below it that would have
// a non-positive price are skipped.
func NewStrip(cfg StripConfig) (*Strip, error) {
	if cfg.TickSize <= 0 {
		return nil, &domain.ConfigError{Field: "tick_size", Err: fmt.Errorf("must be positive, got %g", cfg.TickSize)}
	}
	if cfg.InitMidPrice <= 0 {
		return nil, &domain.ConfigError{Field: "init_mid_price", Err: fmt.Errorf("must be positive, got %g", cfg.InitMidPrice)}
	}
	if cfg.NumBids < 0 || cfg.NumAsks < 0 {
		return nil, &domain.ConfigError{Field: "num_levels", Err: fmt.Errorf("must not be negative")}
	}

	m := &Strip{offers: book.New(), tickSize: cfg.TickSize}
	mid := roundTick(cfg.InitMidPrice, cfg.TickSize)

	for i := 1; i <= cfg.NumBids; i++ {
		price := mid - float64(i)*cfg.TickSize
		if price <= 0 {
			continue
		}
		order, err := domain.NewOrder(domain.Buy, price, cfg.BidSize)
		if err != nil {
			return nil, err
		}
		m.offers.Add(order)
	}
	for i := 1; i <= cfg.NumAsks; i++ {
		order, err := domain.NewOrder(domain.Sell, mid+float64(i)*cfg.TickSize, cfg.AskSize)
		if err != nil {
			return nil, err
		}
		m.offers.Add(order)
	}
	return m, nil
}

func (m *Strip) Offers() *book.OfferBook     { return m.offers }
func (m *Strip) Position() domain.Position   { return m.pos }
func (m *Strip) Kind() string                { return "strip" }
func (m *Strip) MidPrice() (float64, error)  { return midPrice(m.offers) }
func (m *Strip) PostHook(price, time float64) {}

// BuyAtFirstRank fills the best ask, then reposts the traded notional as a
// bid one tick below the traded price (merged into an existing level when the
// prices coincide within tolerance).
func (m *Strip) BuyAtFirstRank() (*domain.Transaction, error) {
	best, tx, err := takeBestAsk(m.offers, &m.pos)
	if err != nil {
		return nil, err
	}

	newPrice := best.Price - m.tickSize
	if newPrice > 0 {
		m.offers.Add(domain.Order{
			Side:     domain.Buy,
			Price:    newPrice,
			Quantity: best.Quantity * best.Price / newPrice,
		})
	}
	return tx, nil
}

// SellAtFirstRank fills the best bid, then reposts the traded notional as an
// ask one tick above the traded price.
func (m *Strip) SellAtFirstRank() (*domain.Transaction, error) {
	best, tx, err := takeBestBid(m.offers, &m.pos)
	if err != nil {
		return nil, err
	}

	newPrice := best.Price + m.tickSize
	m.offers.Add(domain.Order{
		Side:     domain.Sell,
		Price:    newPrice,
		Quantity: best.Quantity * best.Price / newPrice,
	})
	return tx, nil
}
