// Package storage persists expense records in a single SQLite table.
//
// The month queries match on the textual date prefix ("YYYY-MM-") because
// dates are stored exactly as extracted, without re-parsing.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"spendlog/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a record ID does not exist.
var ErrNotFound = errors.New("expense not found")

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping verifies the database connection, used by readiness checks.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Save persists a validated candidate together with the raw text it came
// from and returns the stored record with its assigned ID.
func (r *SQLiteRepository) Save(ctx context.Context, c core.ExpenseCandidate, rawText string) (core.ExpenseRecord, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO expenses (date, category, amount_cents, currency, raw_text)
		VALUES (?, ?, ?, ?, ?)`,
		c.Date, c.Category, c.Amount.Cents, c.Currency, rawText)
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("insert expense: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("last insert id: %w", err)
	}

	record, err := r.Get(ctx, id)
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("read back expense %d: %w", id, err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", record.ID,
		"date", record.Date,
		"category", record.Category,
		"amount_cents", record.Amount.Cents,
		"currency", record.Currency)

	return record, nil
}

// Get returns a single record by ID.
func (r *SQLiteRepository) Get(ctx context.Context, id int64) (core.ExpenseRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, date, category, amount_cents, currency, raw_text, created_at
		FROM expenses WHERE id = ?`, id)
	return scanRecord(row)
}

// ListByMonth returns all records whose date falls in the given year+month,
// most recent first.
func (r *SQLiteRepository) ListByMonth(ctx context.Context, year, month int) ([]core.ExpenseRecord, error) {
	pattern := fmt.Sprintf("%04d-%02d-%%", year, month)
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, date, category, amount_cents, currency, raw_text, created_at
		FROM expenses WHERE date LIKE ? ORDER BY date DESC, id DESC`, pattern)
	if err != nil {
		return nil, fmt.Errorf("query month expenses: %w", err)
	}
	defer rows.Close()
	return collectRecords(rows)
}

// ListAll returns every stored record, most recent first.
func (r *SQLiteRepository) ListAll(ctx context.Context) ([]core.ExpenseRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, date, category, amount_cents, currency, raw_text, created_at
		FROM expenses ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query all expenses: %w", err)
	}
	defer rows.Close()
	return collectRecords(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (core.ExpenseRecord, error) {
	var rec core.ExpenseRecord
	err := row.Scan(&rec.ID, &rec.Date, &rec.Category, &rec.Amount.Cents,
		&rec.Currency, &rec.RawText, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ExpenseRecord{}, ErrNotFound
	}
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("scan expense row: %w", err)
	}
	return rec, nil
}

func collectRecords(rows *sql.Rows) ([]core.ExpenseRecord, error) {
	var records []core.ExpenseRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expense rows: %w", err)
	}
	return records, nil
}
