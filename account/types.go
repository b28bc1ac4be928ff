package account

import (
	"time"

	"cryptosim/fees"
)

// Mode is the trading mode an order or position belongs to.
type Mode string

const (
	ModeSpot        Mode = "spot"
	ModeFutures     Mode = "futures"
	ModeGridSpot    Mode = "grid_spot"
	ModeGridFutures Mode = "grid_futures"
)

// IsGrid reports whether the mode is a grid-bot variant.
func (m Mode) IsGrid() bool {
	return m == ModeGridSpot || m == ModeGridFutures
}

// Market maps the mode to its fee table: grid variants charge the fees of
// the market they trade on.
func (m Mode) Market() fees.Market {
	if m == ModeFutures || m == ModeGridFutures {
		return fees.Futures
	}
	return fees.Spot
}

type Side string

const (
	SideLong  Side = "long"
	SideShort Side = "short"
)

type Kind string

const (
	KindLimit  Kind = "limit"
	KindMarket Kind = "market"
)

// Trigger is the inequality a resting order's limit price must satisfy
// against the mark price to fill. Fixed at creation, never recomputed.
type Trigger string

const (
	TriggerGTE Trigger = "gte"
	TriggerLTE Trigger = "lte"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusFilled  Status = "filled"
)

// Denom says which asset the requested amount is denominated in.
type Denom string

const (
	DenomQuote Denom = "quote"
	DenomBase  Denom = "base"
)

// Sizing selects, for quote-denominated futures requests, whether the
// amount is the desired position value or the desired margin cost.
type Sizing string

const (
	SizingValue Sizing = "value"
	SizingCost  Sizing = "cost"
)

// Order is a resting instruction to open a position once the mark price
// crosses its trigger. Market orders never rest; they fill at submission.
type Order struct {
	ID         string    `json:"id"`
	Symbol     string    `json:"symbol"`
	Mode       Mode      `json:"mode"`
	Side       Side      `json:"side"`
	Kind       Kind      `json:"kind"`
	LimitPrice float64   `json:"limitPrice"`
	Amount     float64   `json:"amount"` // quote-currency notional
	Size       float64   `json:"size"`   // base-asset quantity
	Leverage   float64   `json:"leverage"`
	Margin     float64   `json:"margin"` // quote funds reserved at submission
	FeeRate    float64   `json:"feeRate"`
	EntryFee   float64   `json:"entryFee"`
	TakeProfit *float64  `json:"takeProfit,omitempty"`
	StopLoss   *float64  `json:"stopLoss,omitempty"`
	Trigger    Trigger   `json:"trigger"`
	Created    time.Time `json:"created"`
	Status     Status    `json:"status"`
}

// Position is an open holding. Spot positions are implicitly long with
// leverage 1 and margin equal to the full notional.
type Position struct {
	ID         string   `json:"id"`
	Symbol     string   `json:"symbol"`
	Mode       Mode     `json:"mode"`
	Side       Side     `json:"side"`
	EntryPrice float64  `json:"entryPrice"`
	Size       float64  `json:"size"`
	Amount     float64  `json:"amount"`
	Leverage   float64  `json:"leverage"`
	Margin     float64  `json:"margin"`
	FeeRate    float64  `json:"feeRate"`
	EntryFee   float64  `json:"entryFee"`
	TakeProfit *float64 `json:"takeProfit,omitempty"`
	StopLoss   *float64 `json:"stopLoss,omitempty"`

	// RealizedProfit accumulates grid rung round-trips reported out-of-band.
	// Always zero for plain spot/futures positions.
	RealizedProfit float64 `json:"realizedProfit,omitempty"`

	Created time.Time `json:"created"`
}

// RecordType tags history entries.
type RecordType string

const (
	RecordOrderFilled RecordType = "order_filled"
	RecordPosition    RecordType = "position"
	RecordMarginAdded RecordType = "margin_added"
)

// Record is an immutable history entry. The economic fields are copied from
// the originating order or position at the time of the event.
type Record struct {
	Type       RecordType `json:"type"`
	RefID      string     `json:"refId"` // originating order/position id
	Symbol     string     `json:"symbol"`
	Mode       Mode       `json:"mode"`
	Side       Side       `json:"side"`
	EntryPrice float64    `json:"entryPrice"`
	Size       float64    `json:"size"`
	Amount     float64    `json:"amount"`
	Leverage   float64    `json:"leverage"`
	Margin     float64    `json:"margin"`
	FeeRate    float64    `json:"feeRate"`
	EntryFee   float64    `json:"entryFee"`
	ClosePrice float64    `json:"closePrice,omitempty"`
	// RealizedPnL is net of entry and exit fees for close records, zero for
	// fill records.
	RealizedPnL float64   `json:"realizedPnl"`
	Time        time.Time `json:"time"`
}

// TradeRequest is a submission from the presentation layer.
type TradeRequest struct {
	Symbol     string
	Mode       Mode // spot or futures
	Side       Side
	Kind       Kind
	LimitPrice float64 // required for limit orders
	Amount     float64
	Denom      Denom  // defaults to quote
	Sizing     Sizing // futures, quote-denominated only; defaults to value
	Leverage   float64
	TakeProfit *float64
	StopLoss   *float64
}
