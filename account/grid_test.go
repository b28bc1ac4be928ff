package account

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridPlanRungsArithmetic(t *testing.T) {
	plan := GridPlan{Lower: 100, Upper: 200, Levels: 5, Spacing: SpacingArithmetic}

	rungs, err := plan.Rungs()
	require.NoError(t, err)
	require.Len(t, rungs, 5)

	want := []float64{100, 125, 150, 175, 200}
	for i := range want {
		assert.InDelta(t, want[i], rungs[i], 1e-9)
	}
}

func TestGridPlanRungsGeometric(t *testing.T) {
	plan := GridPlan{Lower: 100, Upper: 400, Levels: 3, Spacing: SpacingGeometric}

	rungs, err := plan.Rungs()
	require.NoError(t, err)
	require.Len(t, rungs, 3)

	assert.InDelta(t, 100, rungs[0], 1e-9)
	assert.InDelta(t, 200, rungs[1], 1e-9)
	assert.Equal(t, 400.0, rungs[2]) // pinned exactly to the upper bound
}

func TestGridPlanValidation(t *testing.T) {
	tests := []struct {
		name string
		plan GridPlan
	}{
		{"inverted range", GridPlan{Lower: 200, Upper: 100, Levels: 5}},
		{"zero lower", GridPlan{Lower: 0, Upper: 100, Levels: 5}},
		{"one level", GridPlan{Lower: 100, Upper: 200, Levels: 1}},
		{"equal bounds", GridPlan{Lower: 100, Upper: 100, Levels: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.plan.Validate())
			_, err := tt.plan.Rungs()
			assert.Error(t, err)
		})
	}
}

func TestStartGrid(t *testing.T) {
	a := newTestAccount(t, 10_000)
	tick(t, a, "BTCUSDT", 50_000)

	ok := a.StartGrid(GridRequest{
		Symbol: "BTCUSDT",
		Mode:   ModeGridSpot,
		Amount: 2_000,
		Plan:   GridPlan{Lower: 45_000, Upper: 55_000, Levels: 10},
	})
	require.True(t, ok)

	require.Len(t, a.Positions(), 1)
	p := a.Positions()[0]
	assert.Equal(t, ModeGridSpot, p.Mode)
	assert.Equal(t, SideLong, p.Side)
	assert.Equal(t, 50_000.0, p.EntryPrice)
	assert.InDelta(t, 2_000, p.Margin, 1e-9)
	assert.InDelta(t, 2_000/50_000.0, p.Size, 1e-12)
	// No entry fee up front: rungs carry their own fees.
	assert.Zero(t, p.EntryFee)
	assert.InDelta(t, 8_000, a.Balance(), 1e-9)
}

func TestStartGridRejections(t *testing.T) {
	plan := GridPlan{Lower: 45_000, Upper: 55_000, Levels: 10}

	t.Run("bad plan", func(t *testing.T) {
		a := newTestAccount(t, 10_000)
		tick(t, a, "BTCUSDT", 50_000)
		assert.False(t, a.StartGrid(GridRequest{
			Symbol: "BTCUSDT", Mode: ModeGridSpot, Amount: 1_000,
			Plan: GridPlan{Lower: 55_000, Upper: 45_000, Levels: 10},
		}))
	})
	t.Run("insufficient balance", func(t *testing.T) {
		a := newTestAccount(t, 500)
		tick(t, a, "BTCUSDT", 50_000)
		assert.False(t, a.StartGrid(GridRequest{
			Symbol: "BTCUSDT", Mode: ModeGridSpot, Amount: 1_000, Plan: plan,
		}))
		assert.Equal(t, 500.0, a.Balance())
	})
	t.Run("no mark price", func(t *testing.T) {
		a := newTestAccount(t, 10_000)
		assert.False(t, a.StartGrid(GridRequest{
			Symbol: "BTCUSDT", Mode: ModeGridSpot, Amount: 1_000, Plan: plan,
		}))
	})
	t.Run("non-grid mode", func(t *testing.T) {
		a := newTestAccount(t, 10_000)
		tick(t, a, "BTCUSDT", 50_000)
		assert.False(t, a.StartGrid(GridRequest{
			Symbol: "BTCUSDT", Mode: ModeSpot, Amount: 1_000, Plan: plan,
		}))
	})
}

func TestGridProfitAccumulatesAndSettlesOnClose(t *testing.T) {
	a := newTestAccount(t, 10_000)
	tick(t, a, "BTCUSDT", 50_000)

	require.True(t, a.StartGrid(GridRequest{
		Symbol: "BTCUSDT",
		Mode:   ModeGridSpot,
		Amount: 2_000,
		Plan:   GridPlan{Lower: 45_000, Upper: 55_000, Levels: 10},
	}))
	p := a.Positions()[0]

	a.RecordGridProfit(p.ID, 12.5)
	a.RecordGridProfit(p.ID, 7.5)
	assert.InDelta(t, 20, a.Positions()[0].RealizedProfit, 1e-9)

	// Rung profit is not in the balance until the bot stops.
	assert.InDelta(t, 8_000, a.Balance(), 1e-9)

	// Close flat at entry: margin and rung profit come back, minus the
	// default spot exit fee on the inventory.
	a.ClosePosition(p.ID)
	exitFee := (2_000 / 50_000.0) * 50_000 * 0.001
	assert.InDelta(t, 8_000+2_000+20-exitFee, a.Balance(), 1e-9)
	assert.Empty(t, a.Positions())
}

func TestRecordGridProfitIgnoresNonGrid(t *testing.T) {
	a := newTestAccount(t, 10_000)
	tick(t, a, "BTCUSDT", 50_000)

	require.True(t, a.Submit(TradeRequest{
		Symbol: "BTCUSDT", Mode: ModeSpot, Side: SideLong, Kind: KindMarket, Amount: 1_000,
	}))
	p := a.Positions()[0]

	a.RecordGridProfit(p.ID, 100)
	assert.Zero(t, a.Positions()[0].RealizedProfit)
}

func TestGridFuturesShort(t *testing.T) {
	a := newTestAccount(t, 10_000)
	tick(t, a, "ETHUSDT", 2_000)

	require.True(t, a.StartGrid(GridRequest{
		Symbol:   "ETHUSDT",
		Mode:     ModeGridFutures,
		Side:     SideShort,
		Amount:   1_000,
		Leverage: 5,
		Plan:     GridPlan{Lower: 1_800, Upper: 2_200, Levels: 8},
	}))

	p := a.Positions()[0]
	assert.Equal(t, SideShort, p.Side)
	assert.InDelta(t, 5_000, p.Amount, 1e-9) // 1000 * 5
	assert.InDelta(t, 2.5, p.Size, 1e-9)     // 5000 / 2000
	assert.InDelta(t, 1_000, p.Margin, 1e-9)
}
