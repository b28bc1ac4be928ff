package feed

import (
	"context"
	"time"
)

// Step is one scripted price move.
type Step struct {
	Price float64
	Delay time.Duration
}

// Script replays a fixed sequence of price steps. Used for deterministic
// simulation runs driven from the config file.
type Script struct {
	symbol string
	steps  []Step
}

func NewScript(symbol string, steps []Step) *Script {
	return &Script{symbol: symbol, steps: steps}
}

func (s *Script) Run(ctx context.Context, h Handler) error {
	for _, step := range s.steps {
		if step.Delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(step.Delay):
			}
		} else if ctx.Err() != nil {
			return ctx.Err()
		}
		h(Tick{Symbol: s.symbol, Price: step.Price, Time: time.Now()})
	}
	return nil
}
