package journal

import "time"

// FillRecord is written whenever an order executes: a resting limit order
// whose trigger was crossed, or a market order filled at submission.
type FillRecord struct {
	OrderID  string
	Symbol   string
	Mode     string
	Side     string
	Kind     string
	Price    float64
	Size     float64
	Amount   float64
	Leverage float64
	Fee      float64
	Time     time.Time
}

// CloseRecord is written when an open position settles into the balance.
type CloseRecord struct {
	PositionID  string
	Symbol      string
	Mode        string
	Side        string
	EntryPrice  float64
	ExitPrice   float64
	Size        float64
	Margin      float64
	RealizedPnL float64
	EntryFee    float64
	ExitFee     float64
	Reason      string
	OpenTime    time.Time
	CloseTime   time.Time
}

// EquitySnapshot captures the ledger after each tick or settlement.
type EquitySnapshot struct {
	Time       time.Time
	Balance    float64
	Equity     float64
	MarginUsed float64
}

type Journal interface {
	RecordFill(FillRecord) error
	RecordClose(CloseRecord) error
	RecordEquity(EquitySnapshot) error
	Close() error
}

// Nop discards all records. Used when journaling is disabled.
type Nop struct{}

func (Nop) RecordFill(FillRecord) error       { return nil }
func (Nop) RecordClose(CloseRecord) error     { return nil }
func (Nop) RecordEquity(EquitySnapshot) error { return nil }
func (Nop) Close() error                      { return nil }
