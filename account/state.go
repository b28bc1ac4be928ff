package account

import (
	"math"

	"cryptosim/fees"
)

// State is the persisted document shape, one per trader. Every field may be
// absent on load; Restore fills in defaults and drops malformed records.
type State struct {
	Balance          *float64      `json:"balance,omitempty"`
	Positions        []Position    `json:"positions,omitempty"`
	Orders           []Order       `json:"orders,omitempty"`
	History          []Record      `json:"history,omitempty"`
	FeeSettings      *fees.Schedule `json:"feeSettings,omitempty"`
	SelectedExchange string        `json:"selectedExchange,omitempty"`
	Favorites        []string      `json:"favorites,omitempty"`
}

// Snapshot copies the account into a State document. The history is capped
// to the retention limit, like the in-memory view.
func (a *Account) Snapshot() State {
	a.mu.Lock()
	defer a.mu.Unlock()

	st := State{
		Balance:          ptr(a.balance),
		SelectedExchange: a.exchange,
		Favorites:        append([]string(nil), a.favorites...),
		History:          append([]Record(nil), a.history...),
	}
	sched := a.fees
	st.FeeSettings = &sched

	st.Positions = make([]Position, len(a.positions))
	for i, p := range a.positions {
		st.Positions[i] = *p
	}
	st.Orders = make([]Order, len(a.orders))
	for i, o := range a.orders {
		st.Orders[i] = *o
	}
	return st
}

// Restore replaces the account contents from a persisted document.
// Missing balance falls back to the initial balance, missing collections to
// empty, and position/order records without an identifier are discarded.
func (a *Account) Restore(st State) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if st.Balance != nil && !math.IsNaN(*st.Balance) {
		a.balance = *st.Balance
	} else {
		a.balance = a.initial
	}

	a.positions = a.positions[:0]
	for _, p := range st.Positions {
		if p.ID == "" {
			continue
		}
		q := p
		a.positions = append(a.positions, &q)
	}

	a.orders = a.orders[:0]
	for _, o := range st.Orders {
		if o.ID == "" || o.Status == StatusFilled {
			continue
		}
		q := o
		a.orders = append(a.orders, &q)
	}

	a.history = append(a.history[:0], st.History...)
	a.truncateHistoryLocked()

	if st.FeeSettings != nil && len(st.FeeSettings.Profiles) > 0 {
		a.fees = *st.FeeSettings
	}
	if st.SelectedExchange != "" {
		a.exchange = st.SelectedExchange
	}
	a.favorites = append(a.favorites[:0], st.Favorites...)
}

func ptr(x float64) *float64 { return &x }
