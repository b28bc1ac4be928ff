package account

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptosim/fees"
)

func restingOrder(t *testing.T, a *Account, limit, amount float64) Order {
	t.Helper()
	require.True(t, a.Submit(TradeRequest{
		Symbol:     "BTCUSDT",
		Mode:       ModeSpot,
		Side:       SideLong,
		Kind:       KindLimit,
		LimitPrice: limit,
		Amount:     amount,
	}))
	orders := a.Orders()
	require.NotEmpty(t, orders)
	return orders[0]
}

func TestTriggerGTEFillsOnFirstCross(t *testing.T) {
	a := newTestAccount(t, 100_000)
	tick(t, a, "BTCUSDT", 50_000)

	o := restingOrder(t, a, 52_000, 1_000)
	assert.Equal(t, TriggerGTE, o.Trigger)

	// Below the limit: never fills.
	tick(t, a, "BTCUSDT", 51_000)
	tick(t, a, "BTCUSDT", 51_999.99)
	assert.Len(t, a.Orders(), 1)
	assert.Empty(t, a.Positions())

	// Exactly at the limit: fills.
	tick(t, a, "BTCUSDT", 52_000)
	assert.Empty(t, a.Orders())
	require.Len(t, a.Positions(), 1)
	assert.Equal(t, o.ID, a.Positions()[0].ID)
}

func TestTriggerLTEFillsOnFirstCross(t *testing.T) {
	a := newTestAccount(t, 100_000)
	tick(t, a, "BTCUSDT", 50_000)

	o := restingOrder(t, a, 48_000, 1_000)
	assert.Equal(t, TriggerLTE, o.Trigger)

	tick(t, a, "BTCUSDT", 49_000)
	assert.Len(t, a.Orders(), 1)

	tick(t, a, "BTCUSDT", 48_000)
	assert.Empty(t, a.Orders())
	require.Len(t, a.Positions(), 1)
}

func TestFillUsesLimitPriceNotMark(t *testing.T) {
	a := newTestAccount(t, 100_000)
	tick(t, a, "BTCUSDT", 50_000)
	restingOrder(t, a, 48_000, 1_000)

	// Price gaps straight through the limit.
	tick(t, a, "BTCUSDT", 46_500)

	require.Len(t, a.Positions(), 1)
	p := a.Positions()[0]
	assert.Equal(t, 48_000.0, p.EntryPrice)
	// Economic fields carried over verbatim from the order.
	assert.InDelta(t, 1_000, p.Amount, 1e-9)
	assert.InDelta(t, 1_000/48_000.0, p.Size, 1e-12)
}

func TestOrderFillsAtMostOnce(t *testing.T) {
	a := newTestAccount(t, 100_000)
	tick(t, a, "BTCUSDT", 50_000)
	restingOrder(t, a, 49_000, 1_000)

	for _, price := range []float64{49_000, 48_500, 49_500, 48_000} {
		tick(t, a, "BTCUSDT", price)
	}

	assert.Len(t, a.Positions(), 1)
	assert.Empty(t, a.Orders())

	fills := 0
	for _, rec := range a.History() {
		if rec.Type == RecordOrderFilled {
			fills++
		}
	}
	assert.Equal(t, 1, fills)
}

func TestSimultaneousOrdersFillInOneBatch(t *testing.T) {
	a := newTestAccount(t, 100_000)
	tick(t, a, "BTCUSDT", 50_000)

	restingOrder(t, a, 49_500, 1_000)
	restingOrder(t, a, 49_000, 1_000)
	restingOrder(t, a, 52_000, 1_000) // not eligible

	tick(t, a, "BTCUSDT", 48_800)

	assert.Len(t, a.Positions(), 2)
	require.Len(t, a.Orders(), 1)
	assert.Equal(t, 52_000.0, a.Orders()[0].LimitPrice)
}

func TestFillRecordHasZeroPnL(t *testing.T) {
	a := newTestAccount(t, 100_000)
	tick(t, a, "BTCUSDT", 50_000)
	restingOrder(t, a, 49_000, 1_000)
	tick(t, a, "BTCUSDT", 49_000)

	rec := a.History()[0]
	assert.Equal(t, RecordOrderFilled, rec.Type)
	assert.Zero(t, rec.RealizedPnL)
	assert.Equal(t, 49_000.0, rec.EntryPrice)
}

func TestDegenerateTicksAreNoops(t *testing.T) {
	a := newTestAccount(t, 100_000)
	tick(t, a, "BTCUSDT", 50_000)
	restingOrder(t, a, 49_000, 1_000)

	a.ApplyPrice("BTCUSDT", 0, time.Now())
	a.ApplyPrice("BTCUSDT", -5, time.Now())
	a.ApplyPrice("BTCUSDT", math.NaN(), time.Now())
	a.ApplyPrice("BTCUSDT", math.Inf(1), time.Now())

	assert.Equal(t, 50_000.0, a.Mark("BTCUSDT"))
	assert.Len(t, a.Orders(), 1)
	assert.Empty(t, a.Positions())
}

func TestOtherSymbolTickDoesNotMatch(t *testing.T) {
	a := newTestAccount(t, 100_000)
	tick(t, a, "BTCUSDT", 50_000)
	restingOrder(t, a, 49_000, 1_000)

	tick(t, a, "ETHUSDT", 1_000) // way below the limit, wrong symbol

	assert.Len(t, a.Orders(), 1)
	assert.Empty(t, a.Positions())
}

func TestMissingTriggerNeverFills(t *testing.T) {
	a := newTestAccount(t, 100_000)

	// A malformed record restored from an old snapshot: no trigger.
	a.Restore(State{
		Balance: ptr(100_000),
		Orders: []Order{{
			ID:         "order-1",
			Symbol:     "BTCUSDT",
			Mode:       ModeSpot,
			Side:       SideLong,
			Kind:       KindLimit,
			LimitPrice: 49_000,
			Amount:     1_000,
			Size:       1_000 / 49_000.0,
			Margin:     1_000,
			Status:     StatusPending,
		}},
	})

	tick(t, a, "BTCUSDT", 10_000)
	tick(t, a, "BTCUSDT", 100_000)

	assert.Len(t, a.Orders(), 1)
	assert.Empty(t, a.Positions())
}

func TestFuturesLimitScenario(t *testing.T) {
	sched := fees.Schedule{Profiles: map[string]fees.Profile{
		"binance": {SpotMaker: 0.1, SpotTaker: 0.1, FuturesMaker: 0.02, FuturesTaker: 0.05},
	}}
	a := New(10_000, sched, nil, nil)
	tick(t, a, "BTCUSDT", 50_000)

	require.True(t, a.Submit(TradeRequest{
		Symbol:     "BTCUSDT",
		Mode:       ModeFutures,
		Side:       SideLong,
		Kind:       KindLimit,
		LimitPrice: 49_000,
		Amount:     5_000,
		Leverage:   10,
	}))

	o := a.Orders()[0]
	assert.Equal(t, TriggerLTE, o.Trigger)
	assert.InDelta(t, 500, o.Margin, 1e-9)   // 5000 / 10
	assert.InDelta(t, 1.0, o.EntryFee, 1e-9) // 5000 * 0.02% maker
	assert.InDelta(t, 10_000-501, a.Balance(), 1e-9)

	tick(t, a, "BTCUSDT", 49_000)

	require.Len(t, a.Positions(), 1)
	p := a.Positions()[0]
	assert.Equal(t, 49_000.0, p.EntryPrice)
	assert.Zero(t, UnrealizedPnL(p, 49_000))
}

func TestTakeProfitAutoClosesAtTriggerPrice(t *testing.T) {
	a := newTestAccount(t, 100_000)
	tick(t, a, "BTCUSDT", 50_000)

	tp := 51_000.0
	require.True(t, a.Submit(TradeRequest{
		Symbol:     "BTCUSDT",
		Mode:       ModeSpot,
		Side:       SideLong,
		Kind:       KindMarket,
		Amount:     1_000,
		TakeProfit: &tp,
	}))

	// Gaps past the target: still settles at the stored trigger price.
	tick(t, a, "BTCUSDT", 51_400)

	assert.Empty(t, a.Positions())
	rec := a.History()[0]
	assert.Equal(t, RecordPosition, rec.Type)
	assert.Equal(t, 51_000.0, rec.ClosePrice)
}

func TestStopLossAutoClosesShort(t *testing.T) {
	a := newTestAccount(t, 100_000)
	tick(t, a, "ETHUSDT", 2_000)

	sl := 2_100.0
	require.True(t, a.Submit(TradeRequest{
		Symbol:   "ETHUSDT",
		Mode:     ModeFutures,
		Side:     SideShort,
		Kind:     KindMarket,
		Amount:   2_000,
		Leverage: 5,
		StopLoss: &sl,
	}))

	tick(t, a, "ETHUSDT", 2_050)
	assert.Len(t, a.Positions(), 1)

	tick(t, a, "ETHUSDT", 2_120)
	assert.Empty(t, a.Positions())
	assert.Equal(t, 2_100.0, a.History()[0].ClosePrice)
}
