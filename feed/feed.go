// Package feed supplies mark prices to the trading engine. Adapters own
// their transport and retry behavior; the engine treats a missing tick as a
// no-op.
package feed

import (
	"context"
	"time"
)

// Tick is one mark price observation for a symbol.
type Tick struct {
	Symbol string
	Price  float64
	Time   time.Time
}

// Handler consumes ticks in arrival order on the feed's goroutine.
type Handler func(Tick)

// Feed drives a handler until the context is cancelled or the source is
// exhausted. Scripted and replay feeds return nil at end of input.
type Feed interface {
	Run(ctx context.Context, h Handler) error
}
