package fees

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProfileRate(t *testing.T) {
	p := Profile{SpotMaker: 0.1, SpotTaker: 0.2, FuturesMaker: 0.02, FuturesTaker: 0.05}

	tests := []struct {
		market Market
		role   Role
		want   float64
	}{
		{Spot, Maker, 0.1},
		{Spot, Taker, 0.2},
		{Futures, Maker, 0.02},
		{Futures, Taker, 0.05},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, p.Rate(tt.market, tt.role))
	}
}

func TestScheduleLookup(t *testing.T) {
	s := Default()

	assert.Equal(t, 0.1, s.Rate("binance", Spot, Taker))
	assert.Equal(t, 0.02, s.Rate("binance", Futures, Maker))
	assert.Equal(t, 0.055, s.Rate("bybit", Futures, Taker))
	assert.Equal(t, 0.08, s.Rate("okx", Spot, Maker))
}

func TestScheduleUnknownExchangeFallsBack(t *testing.T) {
	s := Default()

	assert.Equal(t, DefaultSpotRate, s.Rate("hyperliquid", Spot, Taker))
	assert.Equal(t, DefaultFuturesRate, s.Rate("hyperliquid", Futures, Maker))

	var empty Schedule
	assert.Equal(t, DefaultSpotRate, empty.Rate("binance", Spot, Maker))
}
