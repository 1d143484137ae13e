package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"runrate/internal/core"
	"runrate/internal/source"
)

// SQLiteRepository holds the latest imported contract snapshot.
type SQLiteRepository struct {
	db     *sql.DB
	path   string
	schema uint
}

var (
	_ source.ContractReader = (*SQLiteRepository)(nil)
	_ source.ContractWriter = (*SQLiteRepository)(nil)
)

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

	schema, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, path: dbPath, schema: schema}, nil
}

// SchemaVersion is the migration version the database was opened at.
func (r *SQLiteRepository) SchemaVersion() uint { return r.schema }

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Key identifies the database file for caching.
func (r *SQLiteRepository) Key() string {
	return "sqlite:" + r.path
}

// ReadContracts implements source.ContractReader. Rows come back in import
// order and MonthlyRevenue is derived again on the way out.
func (r *SQLiteRepository) ReadContracts(ctx context.Context) ([]core.Contract, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, customer_name, start_date, end_date, booking_date, booked_revenue, duration_months
		FROM contracts
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query contracts: %w", err)
	}
	defer rows.Close()

	var out []core.Contract
	for rows.Next() {
		var (
			id                        int64
			name, start, end, booking string
			booked                    string
			months                    int
		)
		if err := rows.Scan(&id, &name, &start, &end, &booking, &booked, &months); err != nil {
			return nil, fmt.Errorf("scan contract: %w", err)
		}
		c, err := decodeRow(name, start, end, booking, booked, months)
		if err != nil {
			return nil, &source.ParseError{Source: r.Key(), Record: fmt.Sprintf("id=%d", id), Err: err}
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contracts: %w", err)
	}
	return out, nil
}

func decodeRow(name, start, end, booking, booked string, months int) (core.Contract, error) {
	s, err := core.ParseDate(start)
	if err != nil {
		return core.Contract{}, err
	}
	e, err := core.ParseDate(end)
	if err != nil {
		return core.Contract{}, err
	}
	b, err := core.ParseDate(booking)
	if err != nil {
		return core.Contract{}, err
	}
	amount, err := decimal.NewFromString(booked)
	if err != nil {
		return core.Contract{}, fmt.Errorf("%w: %q", core.ErrInvalidAmount, booked)
	}
	return core.NewContract(name, s, e, b, amount, months)
}

// ReplaceContracts implements source.ContractWriter. The previous snapshot
// is kept when any record fails validation or the insert fails.
func (r *SQLiteRepository) ReplaceContracts(ctx context.Context, contracts []core.Contract) error {
	for i, c := range contracts {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("contract %d (%s): %w", i+1, c.CustomerName, err)
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM contracts`); err != nil {
		return fmt.Errorf("clear contracts: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO contracts (customer_name, start_date, end_date, booking_date, booked_revenue, duration_months)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range contracts {
		if _, err := stmt.ExecContext(ctx,
			c.CustomerName,
			c.StartDate.String(),
			c.EndDate.String(),
			c.BookingDate.String(),
			c.BookedRevenue.String(),
			c.DurationMonths,
		); err != nil {
			return fmt.Errorf("insert contract %s: %w", c.CustomerName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "Contracts snapshot replaced", "path", r.path, "rows", len(contracts))
	return nil
}

// Count returns the number of stored contracts.
func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contracts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count contracts: %w", err)
	}
	return n, nil
}
