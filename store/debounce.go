package store

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"cryptosim/account"
)

// Debounced coalesces snapshot offers and writes the latest one after a
// quiet interval on a background goroutine. Offer never blocks and never
// returns an error; write failures are logged and the snapshot is retried
// with the next offer.
type Debounced struct {
	store *Store
	delay time.Duration
	log   *zap.Logger

	mu      sync.Mutex
	pending *account.State
	timer   *time.Timer
	closed  bool
	wg      sync.WaitGroup
}

func NewDebounced(s *Store, delay time.Duration, log *zap.Logger) *Debounced {
	if delay <= 0 {
		delay = 2 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Debounced{store: s, delay: delay, log: log}
}

// Offer replaces any pending snapshot with this one (latest wins) and
// arms the write timer.
func (d *Debounced) Offer(st account.State) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	d.pending = &st

	// Stopping a timer that has not fired yet releases its wait count;
	// each armed timer holds exactly one.
	if d.timer != nil && d.timer.Stop() {
		d.wg.Done()
	}
	d.wg.Add(1)
	d.timer = time.AfterFunc(d.delay, func() {
		defer d.wg.Done()
		d.flushPending()
	})
}

// Flush writes any pending snapshot immediately.
func (d *Debounced) Flush() error {
	d.mu.Lock()
	if d.timer != nil {
		if d.timer.Stop() {
			d.wg.Done()
		}
		d.timer = nil
	}
	st := d.pending
	d.pending = nil
	d.mu.Unlock()

	if st == nil {
		return nil
	}
	return d.store.Save(*st)
}

// Close flushes outstanding work and stops accepting offers. The armed
// timer is disarmed before waiting so shutdown never sits out the debounce
// delay.
func (d *Debounced) Close() error {
	d.mu.Lock()
	d.closed = true
	if d.timer != nil {
		if d.timer.Stop() {
			d.wg.Done()
		}
		d.timer = nil
	}
	d.mu.Unlock()

	d.wg.Wait()
	return d.Flush()
}

// flushPending runs on the timer goroutine. d.timer is left alone: it may
// already point at a newer armed timer, and Stop on this fired one is a
// harmless false.
func (d *Debounced) flushPending() {
	d.mu.Lock()
	st := d.pending
	d.pending = nil
	d.mu.Unlock()

	if st == nil {
		return
	}
	if err := d.store.Save(*st); err != nil {
		d.log.Warn("state save failed, will retry on next change", zap.Error(err))
		// Put it back so the next Offer or Flush retries it.
		d.mu.Lock()
		if d.pending == nil && !d.closed {
			d.pending = st
		}
		d.mu.Unlock()
	}
}
