package maker

import (
	"fmt"
	"math"

	"mmprofiler/internal/book"
	"mmprofiler/internal/domain"
	"mmprofiler/internal/infra"
)

// ReplicationFunc maps (price, timeToLive) to the maker's target inventory.
type ReplicationFunc func(price, ttl float64) float64

// ReplicationConfig configures the time-dependent curve maker.
type ReplicationConfig struct {
	InitMidPrice    float64
	Fn              ReplicationFunc
	Maturity        float64
	NumOneWayOffers int
	TickInterval    float64
}

// Replication runs the same discretized-derivative ladder as the static
// curve maker, but the curve deforms over time: PostHook advances an
// internal time-to-live clock (floored at zero) before rebuilding, modeling
// an option delta approaching maturity. Inventory is always seeded from the
// curve at construction, financed at the initial price.
type Replication struct {
	offers *book.OfferBook
	pos    domain.Position

	fn       ReplicationFunc
	maturity float64
	ttl      float64
	cache    map[float64]float64

	numOneWay    int
	tickInterval float64

	hasFill bool
}

// NewReplication validates the configuration, seeds the inventory and lays
// out the initial ladder at time zero.
func NewReplication(cfg ReplicationConfig) (*Replication, error) {
	if cfg.Fn == nil {
		return nil, &domain.ConfigError{Field: "delta_fn", Err: fmt.Errorf("must not be nil")}
	}
	if cfg.Maturity <= 0 {
		return nil, &domain.ConfigError{Field: "maturity", Err: fmt.Errorf("must be positive, got %g", cfg.Maturity)}
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

	m := &Replication{
		offers:       book.New(),
		fn:           cfg.Fn,
		maturity:     cfg.Maturity,
		cache:        make(map[float64]float64),
		numOneWay:    cfg.NumOneWayOffers,
		tickInterval: cfg.TickInterval,
	}
	m.updateTime(0)
	m.pos.SwapAsset(m.computeDelta(cfg.InitMidPrice), cfg.InitMidPrice)
	m.rebuild(cfg.InitMidPrice)
	return m, nil
}

func (m *Replication) Offers() *book.OfferBook    { return m.offers }
func (m *Replication) Position() domain.Position  { return m.pos }
func (m *Replication) Kind() string               { return "replication" }
func (m *Replication) MidPrice() (float64, error) { return midPrice(m.offers) }

// TimeToLive returns the remaining life of the replication curve.
func (m *Replication) TimeToLive() float64 { return m.ttl }

// updateTime advances the clock. A changed time-to-live invalidates the
// memoized curve values.
func (m *Replication) updateTime(time float64) {
	ttl := math.Max(0, m.maturity-time)
	if ttl != m.ttl || len(m.cache) == 0 {
		m.ttl = ttl
		m.cache = make(map[float64]float64)
	}
}

// ComputeDelta evaluates the curve at the current time-to-live, memoized per
// price until the clock moves.
func (m *Replication) ComputeDelta(price float64) float64 { return m.computeDelta(price) }

func (m *Replication) computeDelta(price float64) float64 {
	if v, ok := m.cache[price]; ok {
		return v
	}
	v := m.fn(price, m.ttl)
	m.cache[price] = v
	return v
}

func (m *Replication) rebuild(center float64) {
	m.offers.Clear()
	m.hasFill = false
	infra.GlobalMetrics.RecordLadderRebuild()

	prev := m.pos.Asset
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

	prev = m.pos.Asset
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

// BuyAtFirstRank fills the best ask; replenishment waits for PostHook.
func (m *Replication) BuyAtFirstRank() (*domain.Transaction, error) {
	_, tx, err := takeBestAsk(m.offers, &m.pos)
	if err != nil {
		return nil, err
	}
	m.hasFill = true
	return tx, nil
}

// SellAtFirstRank fills the best bid; replenishment waits for PostHook.
func (m *Replication) SellAtFirstRank() (*domain.Transaction, error) {
	_, tx, err := takeBestBid(m.offers, &m.pos)
	if err != nil {
		return nil, err
	}
	m.hasFill = true
	return tx, nil
}

// PostHook advances the clock and rebuilds the deformed ladder around the
// new reference price, but only when a fill happened since the last rebuild.
func (m *Replication) PostHook(price, time float64) {
	if m.hasFill {
		m.updateTime(time)
		m.rebuild(price)
	}
}
