package fees

// Market distinguishes the spot and derivatives fee tables.
type Market string

const (
	Spot    Market = "spot"
	Futures Market = "futures"
)

// Role is the execution role an order had: maker for resting limit orders,
// taker for immediately-executed market orders.
type Role string

const (
	Maker Role = "maker"
	Taker Role = "taker"
)

// Fallback rates, in percent, used when a position carries no snapshotted
// rate or an unknown exchange profile is selected.
const (
	DefaultSpotRate    = 0.1
	DefaultFuturesRate = 0.05
)

// Profile holds the four fee rates of one exchange, in percent.
// A 0.1% taker fee is stored as 0.1, not 0.001.
type Profile struct {
	SpotMaker    float64 `json:"spot_maker" yaml:"spot_maker"`
	SpotTaker    float64 `json:"spot_taker" yaml:"spot_taker"`
	FuturesMaker float64 `json:"futures_maker" yaml:"futures_maker"`
	FuturesTaker float64 `json:"futures_taker" yaml:"futures_taker"`
}

// Rate returns the percentage for a market/role pair.
func (p Profile) Rate(m Market, r Role) float64 {
	switch {
	case m == Futures && r == Maker:
		return p.FuturesMaker
	case m == Futures:
		return p.FuturesTaker
	case r == Maker:
		return p.SpotMaker
	default:
		return p.SpotTaker
	}
}

// Schedule maps exchange profile names to their fee tables.
type Schedule struct {
	Profiles map[string]Profile `json:"profiles" yaml:"profiles"`
}

// Rate looks up the percentage for the named exchange. Unknown exchanges
// fall back to the default spot/futures rates so a stale profile name in a
// restored snapshot cannot produce free trading.
func (s Schedule) Rate(exchange string, m Market, r Role) float64 {
	if p, ok := s.Profiles[exchange]; ok {
		return p.Rate(m, r)
	}
	if m == Futures {
		return DefaultFuturesRate
	}
	return DefaultSpotRate
}

// Default returns the built-in schedule with standard retail tiers for the
// supported exchange profiles.
func Default() Schedule {
	return Schedule{
		Profiles: map[string]Profile{
			"binance": {
				SpotMaker:    0.1,
				SpotTaker:    0.1,
				FuturesMaker: 0.02,
				FuturesTaker: 0.05,
			},
			"bybit": {
				SpotMaker:    0.1,
				SpotTaker:    0.1,
				FuturesMaker: 0.02,
				FuturesTaker: 0.055,
			},
			"okx": {
				SpotMaker:    0.08,
				SpotTaker:    0.1,
				FuturesMaker: 0.02,
				FuturesTaker: 0.05,
			},
		},
	}
}
