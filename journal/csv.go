package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

// CSVJournal appends fills, closes and equity snapshots to three CSV files.
// Writers are flushed after every record so a crashed session still leaves
// a usable audit trail.
type CSVJournal struct {
	fills  *csv.Writer
	closes *csv.Writer
	equity *csv.Writer

	ff, cf, ef *os.File
}

func NewCSV(fillsPath, closesPath, equityPath string) (*CSVJournal, error) {
	ff, err := os.Create(fillsPath)
	if err != nil {
		return nil, err
	}
	cf, err := os.Create(closesPath)
	if err != nil {
		ff.Close()
		return nil, err
	}
	ef, err := os.Create(equityPath)
	if err != nil {
		ff.Close()
		cf.Close()
		return nil, err
	}

	j := &CSVJournal{
		fills:  csv.NewWriter(ff),
		closes: csv.NewWriter(cf),
		equity: csv.NewWriter(ef),
		ff:     ff,
		cf:     cf,
		ef:     ef,
	}

	headers := []struct {
		w    *csv.Writer
		cols []string
	}{
		{j.fills, []string{"order_id", "symbol", "mode", "side", "kind", "price", "size", "amount", "leverage", "fee", "time"}},
		{j.closes, []string{"position_id", "symbol", "mode", "side", "entry_price", "exit_price", "size", "margin", "realized_pnl", "entry_fee", "exit_fee", "reason", "open_time", "close_time"}},
		{j.equity, []string{"time", "balance", "equity", "margin_used"}},
	}
	for _, h := range headers {
		if err := h.w.Write(h.cols); err != nil {
			j.Close()
			return nil, err
		}
		h.w.Flush()
		if err := h.w.Error(); err != nil {
			j.Close()
			return nil, err
		}
	}

	return j, nil
}

func (j *CSVJournal) RecordFill(r FillRecord) error {
	if err := j.fills.Write([]string{
		r.OrderID, r.Symbol, r.Mode, r.Side, r.Kind,
		f(r.Price), f(r.Size), f(r.Amount), f(r.Leverage), f(r.Fee),
		r.Time.Format(time.RFC3339),
	}); err != nil {
		return err
	}
	j.fills.Flush()
	return j.fills.Error()
}

func (j *CSVJournal) RecordClose(r CloseRecord) error {
	if err := j.closes.Write([]string{
		r.PositionID, r.Symbol, r.Mode, r.Side,
		f(r.EntryPrice), f(r.ExitPrice), f(r.Size), f(r.Margin),
		f(r.RealizedPnL), f(r.EntryFee), f(r.ExitFee), r.Reason,
		r.OpenTime.Format(time.RFC3339), r.CloseTime.Format(time.RFC3339),
	}); err != nil {
		return err
	}
	j.closes.Flush()
	return j.closes.Error()
}

func (j *CSVJournal) RecordEquity(e EquitySnapshot) error {
	if err := j.equity.Write([]string{
		e.Time.Format(time.RFC3339),
		f(e.Balance), f(e.Equity), f(e.MarginUsed),
	}); err != nil {
		return err
	}
	j.equity.Flush()
	return j.equity.Error()
}

func (j *CSVJournal) Close() error {
	var firstErr error

	for _, w := range []*csv.Writer{j.fills, j.closes, j.equity} {
		w.Flush()
		if err := w.Error(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for _, fp := range []*os.File{j.ff, j.cf, j.ef} {
		if err := fp.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 8, 64)
}
