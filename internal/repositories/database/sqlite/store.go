// Package sqlite is a single-file ledger store for local deployments and tests.
// Amounts are stored as integers scaled by 10^4 and times as UTC unix microseconds.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/core/domain"
	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

const dsnOptions = "_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate"

// Open opens (creating if needed) the database file at path and applies the schema.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	dsn := "file:" + path + "?" + dsnOptions
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}
	return db, nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	DB *sql.DB
}

// RunInTx runs fn in a transaction carried by ctx. Nested calls join the outer transaction.
func (r *BaseRepository) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewAppError(500, "failed to begin transaction", mapSQLiteError(err))
	}
	defer tx.Rollback() //nolint:errcheck

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return apperrors.NewAppError(500, "failed to commit transaction", mapSQLiteError(err))
	}
	return nil
}

func (r *BaseRepository) q(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return r.DB
}

// mapSQLiteError translates sqlite result codes into application sentinels.
func mapSQLiteError(err error) error {
	var sqErr sqlite3.Error
	if !errors.As(err, &sqErr) {
		return err
	}
	switch {
	case sqErr.ExtendedCode == sqlite3.ErrConstraintUnique || sqErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey:
		return fmt.Errorf("%w: %s", apperrors.ErrDuplicate, sqErr.Error())
	case sqErr.Code == sqlite3.ErrBusy || sqErr.Code == sqlite3.ErrLocked:
		return apperrors.NewBusyError("sqlite", err)
	}
	return err
}

var maxFixed = decimal.NewFromInt(math.MaxInt64)

// toFixed scales d to an integer column value. Values outside int64 are rejected, not wrapped.
func toFixed(d decimal.Decimal) (int64, error) {
	scaled := d.Round(domain.AmountScale).Shift(domain.AmountScale)
	if scaled.Abs().GreaterThan(maxFixed) {
		return 0, apperrors.NewValidationError(apperrors.ReasonInvalidLine, "%s does not fit the ledger's fixed-point range", d.String())
	}
	return scaled.IntPart(), nil
}

// toFixedAll converts each value with toFixed, failing on the first that does not fit.
func toFixedAll(values ...decimal.Decimal) ([]int64, error) {
	out := make([]int64, len(values))
	for i, v := range values {
		f, err := toFixed(v)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

func fromFixed(v int64) decimal.Decimal {
	return decimal.New(v, -domain.AmountScale)
}

func toMicros(t time.Time) int64 {
	return t.UTC().UnixMicro()
}

func fromMicros(v int64) time.Time {
	return time.UnixMicro(v).UTC()
}

func nullableMicros(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toMicros(*t), Valid: true}
}

func timeFromNull(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := fromMicros(v.Int64)
	return &t
}

// inClause returns "?, ?, ?" for n placeholders.
func inClause(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func stringArgs(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
    account_id        TEXT PRIMARY KEY,
    tenant_id         TEXT    NOT NULL,
    code              TEXT    NOT NULL,
    name              TEXT    NOT NULL,
    account_type      TEXT    NOT NULL,
    normal_side       TEXT    NOT NULL CHECK (normal_side IN ('DEBIT', 'CREDIT')),
    level             INTEGER NOT NULL CHECK (level BETWEEN 1 AND 6),
    parent_account_id TEXT REFERENCES accounts (account_id),
    is_active         INTEGER NOT NULL DEFAULT 1,
    created_at        INTEGER NOT NULL,
    last_updated_at   INTEGER NOT NULL,
    UNIQUE (tenant_id, code)
);

CREATE TABLE IF NOT EXISTS account_map (
    tenant_id       TEXT    NOT NULL,
    logical_key     TEXT    NOT NULL,
    account_id      TEXT    NOT NULL REFERENCES accounts (account_id),
    created_at      INTEGER NOT NULL,
    last_updated_at INTEGER NOT NULL,
    PRIMARY KEY (tenant_id, logical_key)
);

CREATE TABLE IF NOT EXISTS journal_sequences (
    tenant_id  TEXT PRIMARY KEY,
    last_value INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS journals (
    seq               INTEGER PRIMARY KEY AUTOINCREMENT,
    journal_id        TEXT    NOT NULL UNIQUE,
    tenant_id         TEXT    NOT NULL,
    journal_number    TEXT,
    journal_type      TEXT    NOT NULL,
    posted_at         INTEGER NOT NULL,
    memo              TEXT    NOT NULL DEFAULT '',
    ref_table         TEXT    NOT NULL,
    ref_id            TEXT    NOT NULL,
    ref_discriminator TEXT    NOT NULL DEFAULT '',
    created_at        INTEGER NOT NULL,
    UNIQUE (tenant_id, ref_table, ref_id, ref_discriminator),
    UNIQUE (tenant_id, journal_number)
);

CREATE INDEX IF NOT EXISTS idx_journals_tenant_posted ON journals (tenant_id, posted_at, seq);

CREATE TABLE IF NOT EXISTS journal_lines (
    line_id    TEXT PRIMARY KEY,
    journal_id TEXT    NOT NULL REFERENCES journals (journal_id),
    tenant_id  TEXT    NOT NULL,
    line_no    INTEGER NOT NULL,
    account_id TEXT    NOT NULL REFERENCES accounts (account_id),
    debit      INTEGER NOT NULL DEFAULT 0 CHECK (debit >= 0),
    credit     INTEGER NOT NULL DEFAULT 0 CHECK (credit >= 0),
    ref_table  TEXT    NOT NULL DEFAULT '',
    ref_id     TEXT    NOT NULL DEFAULT '',
    party_id   TEXT    NOT NULL DEFAULT '',
    memo       TEXT    NOT NULL DEFAULT '',
    cleared    INTEGER NOT NULL DEFAULT 0,
    CHECK ((debit = 0) <> (credit = 0)),
    UNIQUE (journal_id, line_no)
);

CREATE INDEX IF NOT EXISTS idx_journal_lines_account ON journal_lines (tenant_id, account_id);

CREATE TABLE IF NOT EXISTS stock_moves (
    seq        INTEGER PRIMARY KEY AUTOINCREMENT,
    move_id    TEXT    NOT NULL UNIQUE,
    tenant_id  TEXT    NOT NULL,
    product_id TEXT    NOT NULL,
    qty_in     INTEGER NOT NULL DEFAULT 0 CHECK (qty_in >= 0),
    qty_out    INTEGER NOT NULL DEFAULT 0 CHECK (qty_out >= 0),
    unit_price INTEGER NOT NULL DEFAULT 0 CHECK (unit_price >= 0),
    move_type  TEXT    NOT NULL,
    ref_table  TEXT    NOT NULL,
    ref_id     TEXT    NOT NULL,
    moved_at   INTEGER NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,
    UNIQUE (tenant_id, ref_table, ref_id, product_id)
);

CREATE INDEX IF NOT EXISTS idx_stock_moves_product ON stock_moves (tenant_id, product_id, moved_at, seq);

CREATE TABLE IF NOT EXISTS purchases (
    tenant_id   TEXT    NOT NULL,
    purchase_id TEXT    NOT NULL,
    supplier_id TEXT    NOT NULL,
    status      TEXT    NOT NULL CHECK (status IN ('DRAFT', 'ORDERED', 'RECEIVED')),
    ordered_at  INTEGER NOT NULL,
    received_at INTEGER,
    PRIMARY KEY (tenant_id, purchase_id)
);

CREATE TABLE IF NOT EXISTS purchase_lines (
    line_id     TEXT PRIMARY KEY,
    tenant_id   TEXT    NOT NULL,
    purchase_id TEXT    NOT NULL,
    line_no     INTEGER NOT NULL,
    product_id  TEXT    NOT NULL,
    qty         INTEGER NOT NULL,
    unit_price  INTEGER NOT NULL DEFAULT 0,
    FOREIGN KEY (tenant_id, purchase_id) REFERENCES purchases (tenant_id, purchase_id)
);
`
