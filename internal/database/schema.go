package database

// schemas maps database names to their embedded DDL. Each schema is
// idempotent (CREATE TABLE IF NOT EXISTS) so Migrate can run at every boot.
var schemas = map[string]string{
	"portfolio": portfolioSchema,
	"history":   historySchema,
	"cache":     cacheSchema,
}

// portfolio.db - user-owned holdings. Mutated only by explicit
// add/update/remove operations through the portfolio repository.
const portfolioSchema = `
CREATE TABLE IF NOT EXISTS holdings (
    ticker       TEXT PRIMARY KEY,
    name         TEXT NOT NULL DEFAULT '',
    sector       TEXT NOT NULL DEFAULT '',
    asset_class  TEXT NOT NULL DEFAULT 'UNKNOWN',
    quantity     REAL NOT NULL CHECK (quantity >= 0),
    average_cost REAL NOT NULL CHECK (average_cost >= 0),
    updated_at   INTEGER NOT NULL
);
`

// history.db - market data supplied by external collaborators: daily prices,
// dividend events and the benchmark rate curve. Read-only for the engines.
const historySchema = `
CREATE TABLE IF NOT EXISTS daily_prices (
    ticker TEXT NOT NULL,
    date   INTEGER NOT NULL,
    close  REAL NOT NULL CHECK (close > 0),
    PRIMARY KEY (ticker, date)
);

CREATE INDEX IF NOT EXISTS idx_daily_prices_ticker_date
    ON daily_prices (ticker, date);

CREATE TABLE IF NOT EXISTS dividend_events (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    ticker           TEXT NOT NULL,
    payment_date     INTEGER NOT NULL,
    amount_per_share REAL NOT NULL CHECK (amount_per_share >= 0),
    UNIQUE (ticker, payment_date, amount_per_share)
);

CREATE INDEX IF NOT EXISTS idx_dividend_events_ticker_date
    ON dividend_events (ticker, payment_date);

CREATE TABLE IF NOT EXISTS rate_curve (
    tenor_days INTEGER PRIMARY KEY CHECK (tenor_days > 0),
    rate       REAL NOT NULL,
    updated_at INTEGER NOT NULL
);
`

// cache.db - ephemeral computed-report cache. Safe to delete at any time.
const cacheSchema = `
CREATE TABLE IF NOT EXISTS report_cache (
    category   TEXT NOT NULL,
    cache_key  TEXT NOT NULL,
    payload    BLOB NOT NULL,
    expires_at INTEGER NOT NULL,
    PRIMARY KEY (category, cache_key)
);

CREATE INDEX IF NOT EXISTS idx_report_cache_expires
    ON report_cache (expires_at);
`
