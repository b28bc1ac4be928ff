package account

import (
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"cryptosim/fees"
	"cryptosim/internal/id"
	"cryptosim/journal"
)

// DefaultRetention is how many history records are kept when no explicit
// retention is configured. Matches the persisted-document cap.
const DefaultRetention = 100

const maxLeverage = 125

// Account is the single trader aggregate: balance, resting orders, open
// positions and the capped history. All mutation goes through its methods;
// the mutex serializes the price-feed goroutine against user calls.
type Account struct {
	mu sync.Mutex

	initial   float64
	balance   float64
	exchange  string
	favorites []string
	retention int // history entries kept; 0 = unlimited

	orders    []*Order    // most-recent-first
	positions []*Position // most-recent-first
	history   []Record    // most-recent-first

	marks map[string]float64

	fees    fees.Schedule
	journal journal.Journal
	log     *zap.Logger
}

// New builds an account with the given starting balance. A nil journal
// disables journaling; a nil logger disables logging.
func New(initialBalance float64, sched fees.Schedule, j journal.Journal, log *zap.Logger) *Account {
	if j == nil {
		j = journal.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Account{
		initial:   initialBalance,
		balance:   initialBalance,
		exchange:  "binance",
		retention: DefaultRetention,
		marks:     make(map[string]float64),
		fees:      sched,
		journal:   j,
		log:       log,
	}
}

// SetExchange selects the fee profile for future submissions. Rates already
// snapshotted on resting orders and open positions are not touched.
func (a *Account) SetExchange(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.exchange = name
}

func (a *Account) Exchange() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.exchange
}

// SetHistoryRetention caps the in-memory history. 0 keeps everything.
func (a *Account) SetHistoryRetention(n int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if n < 0 {
		n = 0
	}
	a.retention = n
	a.truncateHistoryLocked()
}

func (a *Account) SetFavorites(symbols []string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.favorites = append([]string(nil), symbols...)
}

func (a *Account) Favorites() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.favorites...)
}

// Submit validates and admits a trade request, reserving funds up front.
// It returns false, with no state mutated, when the request is malformed or
// the margin plus entry fee exceed the available balance.
func (a *Account) Submit(req TradeRequest) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if req.Mode != ModeSpot && req.Mode != ModeFutures {
		a.rejected("mode", req)
		return false
	}
	if req.Mode == ModeSpot && req.Side == SideShort {
		// Spot holdings are implicitly long; a spot sell is a close.
		a.rejected("spot short", req)
		return false
	}
	if req.Side != SideLong && req.Side != SideShort {
		a.rejected("side", req)
		return false
	}
	if !(req.Amount > 0) || math.IsInf(req.Amount, 0) {
		a.rejected("amount", req)
		return false
	}

	lev := req.Leverage
	if req.Mode == ModeSpot {
		lev = 1
	} else {
		if lev == 0 {
			lev = 1
		}
		if lev < 1 || lev > maxLeverage || math.IsNaN(lev) {
			a.rejected("leverage", req)
			return false
		}
	}

	mark := a.marks[req.Symbol]
	if !(mark > 0) || math.IsNaN(mark) {
		// No mark price: a market order has no execution price and a limit
		// order has no reference for its trigger direction.
		a.rejected("no mark price", req)
		return false
	}

	exec := mark
	if req.Kind == KindLimit {
		if !(req.LimitPrice > 0) || math.IsNaN(req.LimitPrice) {
			a.rejected("limit price", req)
			return false
		}
		exec = req.LimitPrice
	} else if req.Kind != KindMarket {
		a.rejected("kind", req)
		return false
	}

	var size, notional float64
	switch {
	case req.Denom == DenomBase:
		size = req.Amount
		notional = size * exec
	case req.Mode == ModeFutures && req.Sizing == SizingCost:
		notional = req.Amount * lev
		size = notional / exec
	default:
		notional = req.Amount
		size = notional / exec
	}

	margin := notional
	if req.Mode == ModeFutures {
		margin = notional / lev
	}

	role := fees.Taker
	if req.Kind == KindLimit {
		role = fees.Maker
	}
	rate := a.fees.Rate(a.exchange, req.Mode.Market(), role)
	fee := notional * rate / 100

	if margin+fee > a.balance {
		a.rejected("insufficient balance", req)
		return false
	}

	now := time.Now()
	a.balance -= margin + fee

	if req.Kind == KindLimit {
		trig := TriggerLTE
		if exec >= mark {
			trig = TriggerGTE
		}
		o := &Order{
			ID:         id.New(),
			Symbol:     req.Symbol,
			Mode:       req.Mode,
			Side:       req.Side,
			Kind:       KindLimit,
			LimitPrice: exec,
			Amount:     notional,
			Size:       size,
			Leverage:   lev,
			Margin:     margin,
			FeeRate:    rate,
			EntryFee:   fee,
			TakeProfit: req.TakeProfit,
			StopLoss:   req.StopLoss,
			Trigger:    trig,
			Created:    now,
			Status:     StatusPending,
		}
		a.orders = append([]*Order{o}, a.orders...)
		a.log.Debug("order resting",
			zap.String("id", o.ID),
			zap.String("symbol", o.Symbol),
			zap.Float64("limit", o.LimitPrice),
			zap.String("trigger", string(o.Trigger)))
		return true
	}

	p := &Position{
		ID:         id.New(),
		Symbol:     req.Symbol,
		Mode:       req.Mode,
		Side:       req.Side,
		EntryPrice: exec,
		Size:       size,
		Amount:     notional,
		Leverage:   lev,
		Margin:     margin,
		FeeRate:    rate,
		EntryFee:   fee,
		TakeProfit: req.TakeProfit,
		StopLoss:   req.StopLoss,
		Created:    now,
	}
	a.positions = append([]*Position{p}, a.positions...)
	a.pushRecordLocked(Record{
		Type:       RecordOrderFilled,
		RefID:      p.ID,
		Symbol:     p.Symbol,
		Mode:       p.Mode,
		Side:       p.Side,
		EntryPrice: p.EntryPrice,
		Size:       p.Size,
		Amount:     p.Amount,
		Leverage:   p.Leverage,
		Margin:     p.Margin,
		FeeRate:    p.FeeRate,
		EntryFee:   p.EntryFee,
		Time:       now,
	})
	if err := a.journal.RecordFill(journal.FillRecord{
		OrderID:  p.ID,
		Symbol:   p.Symbol,
		Mode:     string(p.Mode),
		Side:     string(p.Side),
		Kind:     string(KindMarket),
		Price:    p.EntryPrice,
		Size:     p.Size,
		Amount:   p.Amount,
		Leverage: p.Leverage,
		Fee:      p.EntryFee,
		Time:     now,
	}); err != nil {
		a.log.Warn("journal fill", zap.Error(err))
	}
	a.log.Debug("position opened",
		zap.String("id", p.ID),
		zap.String("symbol", p.Symbol),
		zap.Float64("entry", p.EntryPrice),
		zap.Float64("size", p.Size))
	return true
}

// ClosePosition settles the position at the last mark price and removes it.
// Balance, history and the position book update together under the lock.
// Unknown IDs are a no-op: the position was already resolved.
func (a *Account) ClosePosition(posID string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	p := a.findPositionLocked(posID)
	if p == nil {
		return
	}
	a.closeLocked(p, a.marks[p.Symbol], time.Now(), "manual")
	a.snapshotEquityLocked(time.Now())
}

// CancelOrder removes a resting order and refunds the funds reserved at
// submission (margin plus entry fee). No history record: a cancellation is
// not a trade. Unknown IDs are a no-op.
func (a *Account) CancelOrder(orderID string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i, o := range a.orders {
		if o.ID != orderID {
			continue
		}
		a.balance += o.Margin + o.EntryFee
		a.orders = append(a.orders[:i], a.orders[i+1:]...)
		a.log.Debug("order cancelled",
			zap.String("id", orderID),
			zap.Float64("refund", o.Margin+o.EntryFee))
		return
	}
}

// AddMargin moves funds from the balance into a position's margin. No fee.
// Only futures and grid positions carry adjustable margin; a spot position's
// margin is its full notional. Returns false if the position is unknown or
// spot, the amount is invalid, or the balance cannot cover it.
func (a *Account) AddMargin(posID string, amount float64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !(amount > 0) || math.IsInf(amount, 0) {
		return false
	}
	p := a.findPositionLocked(posID)
	if p == nil || amount > a.balance {
		return false
	}
	if p.Mode != ModeFutures && !p.Mode.IsGrid() {
		return false
	}

	a.balance -= amount
	p.Margin += amount
	a.pushRecordLocked(Record{
		Type:       RecordMarginAdded,
		RefID:      p.ID,
		Symbol:     p.Symbol,
		Mode:       p.Mode,
		Side:       p.Side,
		EntryPrice: p.EntryPrice,
		Size:       p.Size,
		Amount:     amount,
		Leverage:   p.Leverage,
		Margin:     p.Margin,
		FeeRate:    p.FeeRate,
		Time:       time.Now(),
	})
	return true
}

// SetTPSL updates a position's take-profit and stop-loss without touching
// entry price or size. Nil clears the respective trigger. No-op when the
// position is unknown.
func (a *Account) SetTPSL(posID string, takeProfit, stopLoss *float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	p := a.findPositionLocked(posID)
	if p == nil {
		return
	}
	p.TakeProfit = takeProfit
	p.StopLoss = stopLoss
}

// RecordGridProfit adds a rung round-trip result to a grid position's
// accumulator. The profit settles into the balance when the bot is closed.
// No-op for unknown IDs and non-grid positions.
func (a *Account) RecordGridProfit(posID string, profit float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	p := a.findPositionLocked(posID)
	if p == nil || !p.Mode.IsGrid() || math.IsNaN(profit) {
		return
	}
	p.RealizedProfit += profit
}

// Balance returns the free quote-currency balance.
func (a *Account) Balance() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance
}

// Equity is balance plus margin and unrealized PnL across all open
// positions, each marked at its own symbol's last price.
func (a *Account) Equity() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.equityLocked()
}

// Mark returns the last seen price for a symbol, 0 if none arrived yet.
func (a *Account) Mark(symbol string) float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.marks[symbol]
}

// Orders returns a copy of the pending order book, most recent first.
func (a *Account) Orders() []Order {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Order, len(a.orders))
	for i, o := range a.orders {
		out[i] = *o
	}
	return out
}

// Positions returns a copy of the open position book, most recent first.
func (a *Account) Positions() []Position {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Position, len(a.positions))
	for i, p := range a.positions {
		out[i] = *p
	}
	return out
}

// History returns the retained history, most recent first.
func (a *Account) History() []Record {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Record(nil), a.history...)
}

func (a *Account) findPositionLocked(posID string) *Position {
	for _, p := range a.positions {
		if p.ID == posID {
			return p
		}
	}
	return nil
}

// closeLocked settles one position: exit fee at the stored rate, PnL by
// side, margin and grid accumulator returned to the balance, a history
// record with realized PnL net of both fees, position removed.
func (a *Account) closeLocked(p *Position, price float64, now time.Time, reason string) {
	if !(price > 0) || math.IsNaN(price) {
		// No usable mark: settle flat at entry so the ledger stays finite.
		price = p.EntryPrice
	}

	rate := p.FeeRate
	if rate == 0 {
		if p.Mode.Market() == fees.Futures {
			rate = fees.DefaultFuturesRate
		} else {
			rate = fees.DefaultSpotRate
		}
	}

	exitFee := p.Size * price * rate / 100
	pnl := UnrealizedPnL(*p, price)

	delta := p.Margin + pnl - exitFee
	realized := pnl - p.EntryFee - exitFee
	if p.Mode.IsGrid() {
		delta += p.RealizedProfit
		realized += p.RealizedProfit
	}
	a.balance += delta

	a.pushRecordLocked(Record{
		Type:        RecordPosition,
		RefID:       p.ID,
		Symbol:      p.Symbol,
		Mode:        p.Mode,
		Side:        p.Side,
		EntryPrice:  p.EntryPrice,
		Size:        p.Size,
		Amount:      p.Amount,
		Leverage:    p.Leverage,
		Margin:      p.Margin,
		FeeRate:     rate,
		EntryFee:    p.EntryFee,
		ClosePrice:  price,
		RealizedPnL: realized,
		Time:        now,
	})

	for i, q := range a.positions {
		if q.ID == p.ID {
			a.positions = append(a.positions[:i], a.positions[i+1:]...)
			break
		}
	}

	if err := a.journal.RecordClose(journal.CloseRecord{
		PositionID:  p.ID,
		Symbol:      p.Symbol,
		Mode:        string(p.Mode),
		Side:        string(p.Side),
		EntryPrice:  p.EntryPrice,
		ExitPrice:   price,
		Size:        p.Size,
		Margin:      p.Margin,
		RealizedPnL: realized,
		EntryFee:    p.EntryFee,
		ExitFee:     exitFee,
		Reason:      reason,
		OpenTime:    p.Created,
		CloseTime:   now,
	}); err != nil {
		a.log.Warn("journal close", zap.Error(err))
	}

	a.log.Info("position closed",
		zap.String("id", p.ID),
		zap.String("symbol", p.Symbol),
		zap.String("reason", reason),
		zap.Float64("exit", price),
		zap.Float64("realized", realized))
}

func (a *Account) equityLocked() float64 {
	eq := a.balance
	for _, p := range a.positions {
		eq += p.Margin + UnrealizedPnL(*p, a.marks[p.Symbol])
	}
	return eq
}

func (a *Account) marginUsedLocked() float64 {
	var used float64
	for _, p := range a.positions {
		used += p.Margin
	}
	return used
}

func (a *Account) snapshotEquityLocked(now time.Time) {
	if err := a.journal.RecordEquity(journal.EquitySnapshot{
		Time:       now,
		Balance:    a.balance,
		Equity:     a.equityLocked(),
		MarginUsed: a.marginUsedLocked(),
	}); err != nil {
		a.log.Warn("journal equity", zap.Error(err))
	}
}

func (a *Account) pushRecordLocked(rec Record) {
	a.history = append([]Record{rec}, a.history...)
	a.truncateHistoryLocked()
}

func (a *Account) truncateHistoryLocked() {
	if a.retention > 0 && len(a.history) > a.retention {
		a.history = a.history[:a.retention]
	}
}

func (a *Account) rejected(why string, req TradeRequest) {
	a.log.Debug("trade rejected",
		zap.String("reason", why),
		zap.String("symbol", req.Symbol),
		zap.String("mode", string(req.Mode)),
		zap.Float64("amount", req.Amount))
}
