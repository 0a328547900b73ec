// Package journal records closed trades and account statistics in SQLite.
package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/arcade13/goodboytrader-bot/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS trades (
	id            TEXT PRIMARY KEY,
	account_id    TEXT NOT NULL,
	pair          TEXT NOT NULL,
	side          TEXT NOT NULL,
	size          TEXT NOT NULL,
	entry_price   TEXT NOT NULL,
	exit_price    TEXT NOT NULL,
	exit_reason   TEXT NOT NULL,
	realized_pnl  TEXT NOT NULL,
	partial       INTEGER NOT NULL DEFAULT 0,
	entry_time    TIMESTAMP,
	exit_time     TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_trades_account ON trades(account_id);

CREATE TABLE IF NOT EXISTS account_stats (
	account_id  TEXT PRIMARY KEY,
	total_pnl   TEXT NOT NULL,
	trade_count INTEGER NOT NULL,
	wins        INTEGER NOT NULL,
	losses      INTEGER NOT NULL
);`

// SQLiteJournal is the single-file store behind trade accounting.
type SQLiteJournal struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) the journal at path.
func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "open trade journal")
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "apply trade journal schema")
	}

	return &SQLiteJournal{db: db}, nil
}

// RecordTrade appends a closed trade. Replays of the same trade id are
// ignored, keeping accounting idempotent.
func (j *SQLiteJournal) RecordTrade(accountID string, t domain.ClosedTrade) error {
	_, err := j.db.Exec(`
		INSERT OR IGNORE INTO trades
		(id, account_id, pair, side, size, entry_price, exit_price, exit_reason, realized_pnl, partial, entry_time, exit_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, accountID, t.Pair.String(), t.Side.String(), t.Size.String(),
		t.EntryPrice.String(), t.ExitPrice.String(), string(t.ExitReason),
		t.RealizedPnl.String(), boolToInt(t.Partial), t.EntryTime, t.ExitTime,
	)
	return err
}

// SaveStats upserts the lifetime statistics for an account.
func (j *SQLiteJournal) SaveStats(accountID string, s domain.AccountStats) error {
	_, err := j.db.Exec(`
		INSERT INTO account_stats (account_id, total_pnl, trade_count, wins, losses)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(account_id) DO UPDATE SET
			total_pnl = excluded.total_pnl,
			trade_count = excluded.trade_count,
			wins = excluded.wins,
			losses = excluded.losses`,
		accountID, s.TotalPnl.String(), s.TradeCount, s.Wins, s.Losses,
	)
	return err
}

// LoadStats returns the persisted statistics, zero-valued when absent.
func (j *SQLiteJournal) LoadStats(accountID string) (domain.AccountStats, error) {
	row := j.db.QueryRow(`
		SELECT total_pnl, trade_count, wins, losses
		FROM account_stats WHERE account_id = ?`, accountID)

	var totalPnl string
	var stats domain.AccountStats
	err := row.Scan(&totalPnl, &stats.TradeCount, &stats.Wins, &stats.Losses)
	if err == sql.ErrNoRows {
		return domain.AccountStats{TotalPnl: decimal.Zero}, nil
	}
	if err != nil {
		return domain.AccountStats{}, errors.Wrap(err, "load account stats")
	}

	stats.TotalPnl, err = decimal.NewFromString(totalPnl)
	if err != nil {
		return domain.AccountStats{}, errors.Wrap(err, "parse persisted total pnl")
	}
	return stats, nil
}

// ListTrades returns the closed trades of an account, oldest first.
func (j *SQLiteJournal) ListTrades(accountID string) ([]domain.ClosedTrade, error) {
	rows, err := j.db.Query(`
		SELECT id, side, size, entry_price, exit_price, exit_reason, realized_pnl, partial, entry_time, exit_time
		FROM trades WHERE account_id = ? ORDER BY id`, accountID)
	if err != nil {
		return nil, errors.Wrap(err, "list trades")
	}
	defer rows.Close()

	var trades []domain.ClosedTrade
	for rows.Next() {
		var t domain.ClosedTrade
		var side, size, entry, exit, reason, pnl string
		var partial int
		if err := rows.Scan(&t.ID, &side, &size, &entry, &exit, &reason, &pnl, &partial, &t.EntryTime, &t.ExitTime); err != nil {
			return nil, errors.Wrap(err, "scan trade row")
		}
		if side == "short" {
			t.Side = domain.PositionSideShort
		}
		if t.Size, err = decimal.NewFromString(size); err != nil {
			return nil, errors.Wrap(err, "parse trade size")
		}
		if t.EntryPrice, err = decimal.NewFromString(entry); err != nil {
			return nil, errors.Wrap(err, "parse entry price")
		}
		if t.ExitPrice, err = decimal.NewFromString(exit); err != nil {
			return nil, errors.Wrap(err, "parse exit price")
		}
		if t.RealizedPnl, err = decimal.NewFromString(pnl); err != nil {
			return nil, errors.Wrap(err, "parse realized pnl")
		}
		t.ExitReason = domain.ExitReason(reason)
		t.Partial = partial != 0
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

// Close closes the database handle.
func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
