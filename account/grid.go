package account

import (
	"errors"
	"math"
	"time"

	"go.uber.org/zap"

	"cryptosim/internal/id"
)

// Spacing selects how grid rungs are distributed across the range.
type Spacing string

const (
	SpacingArithmetic Spacing = "arithmetic"
	SpacingGeometric  Spacing = "geometric"
)

// GridPlan is the static ladder definition of a grid bot: a price range
// split into levels. The plan is immutable for the life of the bot.
type GridPlan struct {
	Lower   float64 `json:"gridLower"`
	Upper   float64 `json:"gridUpper"`
	Levels  int     `json:"gridLevels"`
	Spacing Spacing `json:"spacing"`
}

var (
	errGridRange  = errors.New("grid: lower must be positive and below upper")
	errGridLevels = errors.New("grid: at least 2 levels required")
)

func (g GridPlan) Validate() error {
	if !(g.Lower > 0) || !(g.Upper > g.Lower) ||
		math.IsNaN(g.Lower) || math.IsNaN(g.Upper) || math.IsInf(g.Upper, 0) {
		return errGridRange
	}
	if g.Levels < 2 {
		return errGridLevels
	}
	return nil
}

// Rungs returns the ladder prices from Lower to Upper inclusive.
// Arithmetic spacing uses a constant price step; geometric spacing uses a
// constant price ratio, so rung distance tracks percentage moves.
func (g GridPlan) Rungs() ([]float64, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	rungs := make([]float64, g.Levels)
	n := float64(g.Levels - 1)

	if g.Spacing == SpacingGeometric {
		ratio := math.Pow(g.Upper/g.Lower, 1/n)
		p := g.Lower
		for i := range rungs {
			rungs[i] = p
			p *= ratio
		}
	} else {
		step := (g.Upper - g.Lower) / n
		for i := range rungs {
			rungs[i] = g.Lower + step*float64(i)
		}
	}

	// Pin the last rung exactly on the upper bound; the geometric walk
	// accumulates float error.
	rungs[g.Levels-1] = g.Upper
	return rungs, nil
}

// GridRequest starts a grid bot. Amount is the quote-currency margin
// committed to the bot; for grid_futures the working notional is
// amount * leverage. No entry fee is charged up front: rung round-trips
// carry their own fees and report net profit via RecordGridProfit.
type GridRequest struct {
	Symbol     string
	Mode       Mode // grid_spot or grid_futures
	Side       Side // grid_futures only; grid_spot is long
	Amount     float64
	Leverage   float64
	Plan       GridPlan
	TakeProfit *float64
	StopLoss   *float64
}

// StartGrid admits a grid bot as a position. Returns false, nothing
// mutated, on an invalid plan, missing mark price, or insufficient balance.
func (a *Account) StartGrid(req GridRequest) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !req.Mode.IsGrid() {
		return false
	}
	if req.Plan.Validate() != nil {
		return false
	}
	if !(req.Amount > 0) || math.IsInf(req.Amount, 0) {
		return false
	}

	lev := 1.0
	side := SideLong
	if req.Mode == ModeGridFutures {
		lev = req.Leverage
		if lev == 0 {
			lev = 1
		}
		if lev < 1 || lev > maxLeverage || math.IsNaN(lev) {
			return false
		}
		if req.Side == SideShort {
			side = SideShort
		}
	}

	mark := a.marks[req.Symbol]
	if !(mark > 0) || math.IsNaN(mark) {
		return false
	}
	if req.Amount > a.balance {
		return false
	}

	notional := req.Amount * lev
	p := &Position{
		ID:         id.New(),
		Symbol:     req.Symbol,
		Mode:       req.Mode,
		Side:       side,
		EntryPrice: mark,
		Size:       notional / mark,
		Amount:     notional,
		Leverage:   lev,
		Margin:     req.Amount,
		TakeProfit: req.TakeProfit,
		StopLoss:   req.StopLoss,
		Created:    time.Now(),
	}

	a.balance -= req.Amount
	a.positions = append([]*Position{p}, a.positions...)

	a.log.Info("grid started",
		zap.String("id", p.ID),
		zap.String("symbol", p.Symbol),
		zap.String("mode", string(p.Mode)),
		zap.Float64("lower", req.Plan.Lower),
		zap.Float64("upper", req.Plan.Upper),
		zap.Int("levels", req.Plan.Levels))
	return true
}
