package journal

const Schema = `
CREATE TABLE IF NOT EXISTS fills (
	order_id TEXT PRIMARY KEY,
	symbol TEXT NOT NULL,
	mode TEXT NOT NULL,
	side TEXT NOT NULL,
	kind TEXT NOT NULL,
	price REAL NOT NULL,
	size REAL NOT NULL,
	amount REAL NOT NULL,
	leverage REAL NOT NULL,
	fee REAL NOT NULL,
	time DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS closes (
	position_id TEXT PRIMARY KEY,
	symbol TEXT NOT NULL,
	mode TEXT NOT NULL,
	side TEXT NOT NULL,
	entry_price REAL NOT NULL,
	exit_price REAL NOT NULL,
	size REAL NOT NULL,
	margin REAL NOT NULL,
	realized_pnl REAL NOT NULL,
	entry_fee REAL NOT NULL,
	exit_fee REAL NOT NULL,
	reason TEXT NOT NULL,
	open_time DATETIME NOT NULL,
	close_time DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS equity (
	time DATETIME NOT NULL,
	balance REAL NOT NULL,
	equity REAL NOT NULL,
	margin_used REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_fills_time ON fills(time);
CREATE INDEX IF NOT EXISTS idx_closes_time ON closes(close_time);
CREATE INDEX IF NOT EXISTS idx_equity_time ON equity(time);
`
