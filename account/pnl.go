package account

import "math"

// UnrealizedPnL marks a position to the given price.
//
// Longs earn (mark - entry) * size, shorts the negation. A zero, negative
// or NaN mark means the oracle has no price yet; the result is 0 so NaN can
// never propagate into the ledger.
func UnrealizedPnL(p Position, mark float64) float64 {
	if mark <= 0 || math.IsNaN(mark) {
		return 0
	}
	if p.Side == SideShort {
		return (p.EntryPrice - mark) * p.Size
	}
	return (mark - p.EntryPrice) * p.Size
}

// Equity values a set of positions at one mark price:
// balance plus each position's margin and unrealized PnL.
func Equity(balance float64, positions []Position, mark float64) float64 {
	eq := balance
	for _, p := range positions {
		eq += p.Margin + UnrealizedPnL(p, mark)
	}
	return eq
}

// GridTotalProfit is the grid-bot headline number: rung profits already
// captured plus the open inventory marked to price.
func GridTotalProfit(p Position, mark float64) float64 {
	return p.RealizedProfit + UnrealizedPnL(p, mark)
}
