package domain

import "time"

// SimRun is the persisted record of one simulation run.
type SimRun struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Label      string `gorm:"index" json:"label"`
	MakerKind  string `json:"maker_kind"`
	Seed       uint64 `json:"seed"`
	NumSteps   int    `json:"num_steps"`
	FinalPrice string `json:"final_price"` // decimal string
	Cash       string `json:"cash"`        // decimal string
	Asset      string `json:"asset"`       // decimal string
	PnL        string `json:"pnl"`         // decimal string
	NumTx      int    `json:"num_tx"`
	CreatedAt  time.Time
}

// FillRecord is one persisted transaction, linked to its run.
type FillRecord struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	SimRunID uint    `gorm:"index" json:"sim_run_id"`
	Price    string  `json:"price"`    // decimal string
	Quantity string  `json:"quantity"` // decimal string, signed (taker view)
	Time     float64 `json:"time"`
}
