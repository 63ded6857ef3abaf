package maker

import (
	"fmt"

	"mmprofiler/internal/book"
	"mmprofiler/internal/domain"
	"mmprofiler/internal/infra"
)

// DeltaFunc maps a price to the maker's target inventory at that price.
// Must be side-effect free; ladder construction behaves sensibly only when
// the curve is decreasing.
type DeltaFunc func(price float64) float64

// DeltaConfig configures the static curve maker.
type DeltaConfig struct {
	InitMidPrice    float64
	Fn              DeltaFunc
	NumOneWayOffers int
	TickInterval    float64

	// SeedInventory starts the maker at Fn(InitMidPrice) units of asset,
	// financed at InitMidPrice, instead of flat. The ladder is then anchored
	// at the running inventory rather than at the curve value.
	SeedInventory bool
}

// Delta posts a ladder derived from a target-inventory curve: the offer at
// each grid price carries the change of the curve since the previous grid
// price (the discretized derivative). Fills are not replenished in place;
// the whole ladder is rebuilt around the latest reference price by PostHook,
// and only when at least one fill happened since the last rebuild.
type Delta struct {
	offers *book.OfferBook
	pos    domain.Position

	fn    DeltaFunc
	cache map[float64]float64

	numOneWay    int
	tickInterval float64
	seeded       bool

	hasFill bool
}

// NewDelta validates the configuration, optionally seeds the starting
// inventory through the curve, and lays out the initial ladder.
func NewDelta(cfg DeltaConfig) (*Delta, error) {
	if cfg.Fn == nil {
		return nil, &domain.ConfigError{Field: "delta_fn", Err: fmt.Errorf("must not be nil")}
	}
	if cfg.TickInterval <= 0 {
		return nil, &domain.ConfigError{Field: "tick_interval", Err: fmt.Errorf("must be positive, got %g", cfg.TickInterval)}
	}
	if cfg.NumOneWayOffers <= 0 {
		return nil, &domain.ConfigError{Field: "num_one_way_offers", Err: fmt.Errorf("must be positive, got %d", cfg.NumOneWayOffers)}
	}
	if cfg.InitMidPrice <= 0 {
		return nil, &domain.ConfigError{Field: "init_mid_price", Err: fmt.Errorf("must be positive, got %g", cfg.InitMidPrice)}
	}

	m := &Delta{
		offers:       book.New(),
		fn:           cfg.Fn,
		cache:        make(map[float64]float64),
		numOneWay:    cfg.NumOneWayOffers,
		tickInterval: cfg.TickInterval,
		seeded:       cfg.SeedInventory,
	}
	if cfg.SeedInventory {
		m.pos.SwapAsset(m.computeDelta(cfg.InitMidPrice), cfg.InitMidPrice)
	}
	m.rebuild(cfg.InitMidPrice)
	return m, nil
}

func (m *Delta) Offers() *book.OfferBook    { return m.offers }
func (m *Delta) Position() domain.Position  { return m.pos }
func (m *Delta) Kind() string               { return "delta" }
func (m *Delta) MidPrice() (float64, error) { return midPrice(m.offers) }

// ComputeDelta evaluates the target-inventory curve, memoized per price.
// Grid prices repeat across rebuilds and the curve may be expensive.
func (m *Delta) ComputeDelta(price float64) float64 { return m.computeDelta(price) }

func (m *Delta) computeDelta(price float64) float64 {
	if v, ok := m.cache[price]; ok {
		return v
	}
	v := m.fn(price)
	m.cache[price] = v
	return v
}

// anchor is the inventory level ladder increments are measured from: the
// running position when seeded through the curve, the curve value at the
// center otherwise.
func (m *Delta) anchor(center float64) float64 {
	if m.seeded {
		return m.pos.Asset
	}
	return m.computeDelta(center)
}

// rebuild lays the ladder out around center. Buy orders go below at prices
// where the curve increases toward them, sell orders above where it
// decreases; grid steps with the wrong sign are skipped, as are non-positive
// prices. The curve must be decreasing for a fully populated ladder.
func (m *Delta) rebuild(center float64) {
	m.offers.Clear()
	m.hasFill = false
	infra.GlobalMetrics.RecordLadderRebuild()

	prev := m.anchor(center)
	for i := 1; i <= m.numOneWay; i++ {
		price := center - float64(i)*m.tickInterval
		if price <= 0 {
			break
		}
		cur := m.computeDelta(price)
		gamma := cur - prev
		prev = cur
		if gamma > 0 {
			m.offers.Add(domain.Order{Side: domain.Buy, Price: price, Quantity: gamma})
		}
	}

	prev = m.anchor(center)
	for i := 1; i <= m.numOneWay; i++ {
		price := center + float64(i)*m.tickInterval
		cur := m.computeDelta(price)
		gamma := cur - prev
		prev = cur
		if gamma < 0 {
			m.offers.Add(domain.Order{Side: domain.Sell, Price: price, Quantity: -gamma})
		}
	}
}

// BuyAtFirstRank fills the best ask. No liquidity is redeployed here; the
// fill is only flagged so PostHook knows a rebuild is due.
func (m *Delta) BuyAtFirstRank() (*domain.Transaction, error) {
	_, tx, err := takeBestAsk(m.offers, &m.pos)
	if err != nil {
		return nil, err
	}
	m.hasFill = true
	return tx, nil
}

// SellAtFirstRank fills the best bid, deferring replenishment to PostHook.
func (m *Delta) SellAtFirstRank() (*domain.Transaction, error) {
	_, tx, err := takeBestBid(m.offers, &m.pos)
	if err != nil {
		return nil, err
	}
	m.hasFill = true
	return tx, nil
}

// PostHook re-centers the ladder on the latest reference price when at least
// one fill happened since the previous rebuild. Time is ignored: the curve is
// static.
func (m *Delta) PostHook(price, time float64) {
	if m.hasFill {
		m.rebuild(price)
	}
}
