package account

import (
	"math"
	"time"

	"go.uber.org/zap"

	"cryptosim/journal"
)

// ApplyPrice feeds one oracle tick through the matching engine.
//
// All currently-eligible resting orders fill in a single batch at their
// limit price (perfect limit execution, not the tick price), then open
// positions are checked against their stored take-profit/stop-loss. A
// zero or NaN price is a no-op tick.
func (a *Account) ApplyPrice(symbol string, price float64, now time.Time) {
	if !(price > 0) || math.IsNaN(price) || math.IsInf(price, 0) {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.marks[symbol] = price
	a.matchLocked(symbol, price, now)
	a.autoCloseLocked(symbol, price, now)
	a.snapshotEquityLocked(now)
}

// matchLocked partitions the pending set into filled and remaining. An
// order with no trigger condition is conservatively left resting.
func (a *Account) matchLocked(symbol string, price float64, now time.Time) {
	if len(a.orders) == 0 {
		return
	}

	remaining := a.orders[:0]
	for _, o := range a.orders {
		if o.Symbol == symbol && o.Status == StatusPending && triggered(o.Trigger, o.LimitPrice, price) {
			a.fillLocked(o, now)
			continue
		}
		remaining = append(remaining, o)
	}
	a.orders = remaining
}

func triggered(trig Trigger, limit, price float64) bool {
	switch trig {
	case TriggerGTE:
		return price >= limit
	case TriggerLTE:
		return price <= limit
	default:
		return false
	}
}

// fillLocked converts a triggered order 1:1 into a position using the
// order's stored economic fields verbatim. Entry is the resting limit
// price, PnL is zero at fill time.
func (a *Account) fillLocked(o *Order, now time.Time) {
	o.Status = StatusFilled

	p := &Position{
		ID:         o.ID,
		Symbol:     o.Symbol,
		Mode:       o.Mode,
		Side:       o.Side,
		EntryPrice: o.LimitPrice,
		Size:       o.Size,
		Amount:     o.Amount,
		Leverage:   o.Leverage,
		Margin:     o.Margin,
		FeeRate:    o.FeeRate,
		EntryFee:   o.EntryFee,
		TakeProfit: o.TakeProfit,
		StopLoss:   o.StopLoss,
		Created:    now,
	}
	a.positions = append([]*Position{p}, a.positions...)

	a.pushRecordLocked(Record{
		Type:       RecordOrderFilled,
		RefID:      o.ID,
		Symbol:     o.Symbol,
		Mode:       o.Mode,
		Side:       o.Side,
		EntryPrice: o.LimitPrice,
		Size:       o.Size,
		Amount:     o.Amount,
		Leverage:   o.Leverage,
		Margin:     o.Margin,
		FeeRate:    o.FeeRate,
		EntryFee:   o.EntryFee,
		Time:       now,
	})

	if err := a.journal.RecordFill(journal.FillRecord{
		OrderID:  o.ID,
		Symbol:   o.Symbol,
		Mode:     string(o.Mode),
		Side:     string(o.Side),
		Kind:     string(o.Kind),
		Price:    o.LimitPrice,
		Size:     o.Size,
		Amount:   o.Amount,
		Leverage: o.Leverage,
		Fee:      o.EntryFee,
		Time:     now,
	}); err != nil {
		a.log.Warn("journal fill", zap.Error(err))
	}

	a.log.Info("order filled",
		zap.String("id", o.ID),
		zap.String("symbol", o.Symbol),
		zap.String("side", string(o.Side)),
		zap.Float64("price", o.LimitPrice))
}

// autoCloseLocked closes positions whose take-profit or stop-loss is
// crossed by the tick. Settlement happens at the stored trigger price, the
// same perfect-execution rule limit fills use.
func (a *Account) autoCloseLocked(symbol string, price float64, now time.Time) {
	type exit struct {
		pos    *Position
		price  float64
		reason string
	}

	var due []exit
	for _, p := range a.positions {
		if p.Symbol != symbol {
			continue
		}
		if exitAt, reason, hit := exitTrigger(p, price); hit {
			due = append(due, exit{p, exitAt, reason})
		}
	}
	for _, e := range due {
		a.closeLocked(e.pos, e.price, now, e.reason)
	}
}

// exitTrigger reports whether the tick crosses the position's stop-loss or
// take-profit, and at which stored price the exit settles. Stop-loss wins
// when a single tick jumps across both.
func exitTrigger(p *Position, price float64) (exitAt float64, reason string, hit bool) {
	long := p.Side != SideShort

	if p.StopLoss != nil {
		if (long && price <= *p.StopLoss) || (!long && price >= *p.StopLoss) {
			return *p.StopLoss, "stop_loss", true
		}
	}
	if p.TakeProfit != nil {
		if (long && price >= *p.TakeProfit) || (!long && price <= *p.TakeProfit) {
			return *p.TakeProfit, "take_profit", true
		}
	}
	return 0, "", false
}
