package domain

import "fmt"

// Position is a maker's running book value: cash (may go negative when fills
// are financed) and signed asset inventory.
// Invariant: both fields move together on every swap, so the position always
// reflects the exact sequence of fills applied to it.
type Position struct {
	Cash  float64 `json:"cash"`
	Asset float64 `json:"asset"`
}

// SwapAsset applies one fill: the position gains quantity units of asset and
// pays quantity*price of cash. Selling is a negative quantity swap.
func (p *Position) SwapAsset(quantity, price float64) {
	p.Asset += quantity
	p.Cash -= quantity * price
}

// MarkToMarket values the position at the given reference price.
func (p *Position) MarkToMarket(price float64) float64 {
	return p.Asset*price + p.Cash
}

func (p *Position) String() string {
	return fmt.Sprintf("cash:%.5f asset:%.5f", p.Cash, p.Asset)
}
