package journal

import "database/sql"

// Read-back helpers for the SQLite journal, used by reporting commands.

// ListFills returns the most recent fills, newest first.
func (j *SQLiteJournal) ListFills(limit int) ([]FillRecord, error) {
	rows, err := j.db.Query(`
		SELECT order_id, symbol, mode, side, kind, price, size, amount, leverage, fee, time
		FROM fills ORDER BY time DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FillRecord
	for rows.Next() {
		var r FillRecord
		if err := rows.Scan(&r.OrderID, &r.Symbol, &r.Mode, &r.Side, &r.Kind,
			&r.Price, &r.Size, &r.Amount, &r.Leverage, &r.Fee, &r.Time); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListCloses returns the most recent settled positions, newest first.
func (j *SQLiteJournal) ListCloses(limit int) ([]CloseRecord, error) {
	rows, err := j.db.Query(`
		SELECT position_id, symbol, mode, side, entry_price, exit_price, size, margin,
		       realized_pnl, entry_fee, exit_fee, reason, open_time, close_time
		FROM closes ORDER BY close_time DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CloseRecord
	for rows.Next() {
		var r CloseRecord
		if err := rows.Scan(&r.PositionID, &r.Symbol, &r.Mode, &r.Side,
			&r.EntryPrice, &r.ExitPrice, &r.Size, &r.Margin,
			&r.RealizedPnL, &r.EntryFee, &r.ExitFee, &r.Reason,
			&r.OpenTime, &r.CloseTime); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// EquityCurve returns snapshots oldest first, capped at limit (0 = all).
func (j *SQLiteJournal) EquityCurve(limit int) ([]EquitySnapshot, error) {
	var (
		rows *sql.Rows
		err  error
	)
	q := `SELECT time, balance, equity, margin_used FROM equity ORDER BY time ASC`
	if limit > 0 {
		rows, err = j.db.Query(q+` LIMIT ?`, limit)
	} else {
		rows, err = j.db.Query(q)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquitySnapshot
	for rows.Next() {
		var e EquitySnapshot
		if err := rows.Scan(&e.Time, &e.Balance, &e.Equity, &e.MarginUsed); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
