package domain

// Snapshot is one display-layer observation of the simulation, taken after an
// arbitrage pass. Best bid/ask are zero when the corresponding side is empty
// (HasBid/HasAsk disambiguate).
type Snapshot struct {
	Time        float64 `json:"time"`
	BestBid     float64 `json:"best_bid"`
	HasBid      bool    `json:"has_bid"`
	BestAsk     float64 `json:"best_ask"`
	HasAsk      bool    `json:"has_ask"`
	Price       float64 `json:"price"`
	Cash        float64 `json:"cash"`
	Asset       float64 `json:"asset"`
	TargetDelta float64 `json:"target_delta"`
}

// RunResult summarizes one full simulation run. Seed is the one the run's
// path was actually generated with, so any run can be replayed from its
// record. PnL is the mark-to-market value Asset*FinalPrice + Cash.
type RunResult struct {
	Label      string  `json:"label"`
	Seed       uint64  `json:"seed"`
	FinalPrice float64 `json:"final_price"`
	Cash       float64 `json:"cash"`
	Asset      float64 `json:"asset"`
	NumTx      int     `json:"num_tx"`
	PnL        float64 `json:"pnl"`
}
