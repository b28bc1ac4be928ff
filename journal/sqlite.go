package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordFill(r FillRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO fills
		(order_id, symbol, mode, side, kind, price, size, amount, leverage, fee, time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.OrderID, r.Symbol, r.Mode, r.Side, r.Kind,
		r.Price, r.Size, r.Amount, r.Leverage, r.Fee, r.Time,
	)
	return err
}

func (j *SQLiteJournal) RecordClose(r CloseRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO closes
		(position_id, symbol, mode, side, entry_price, exit_price, size, margin,
		 realized_pnl, entry_fee, exit_fee, reason, open_time, close_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.PositionID, r.Symbol, r.Mode, r.Side, r.EntryPrice, r.ExitPrice,
		r.Size, r.Margin, r.RealizedPnL, r.EntryFee, r.ExitFee, r.Reason,
		r.OpenTime, r.CloseTime,
	)
	return err
}

func (j *SQLiteJournal) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(time, balance, equity, margin_used)
		VALUES (?, ?, ?, ?)`,
		e.Time, e.Balance, e.Equity, e.MarginUsed,
	)
	return err
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
