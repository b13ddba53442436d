// internal/store/postgres.go
//
// PostgreSQL backend on a pgx connection pool.

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanizio/formrelay/internal/submission"
)

// Postgres implements Backend over a *pgxpool.Pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps an open pool.  Close closes it.
func NewPostgres(pool *pgxpool.Pool) *Postgres { return &Postgres{pool: pool} }

func (s *Postgres) Driver() string { return "postgres" }

func dollar(i int) string { return fmt.Sprintf("$%d", i) }

// Insert writes one record.
func (s *Postgres) Insert(ctx context.Context, r submission.Record) error {
	table, cols, args, err := insertSpec(r)
	if err != nil {
		return err
	}
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), placeholders(len(cols), dollar))
	if _, err := s.pool.Exec(ctx, q, args...); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

// SetRelayStatus moves a pending record to status.
func (s *Postgres) SetRelayStatus(ctx context.Context, cat submission.Category, id string, status submission.RelayStatus) error {
	table, err := tableFor(cat)
	if err != nil {
		return err
	}
	q := "UPDATE " + table + " SET relay_status = $1 WHERE id = $2 AND relay_status = $3"
	tag, err := s.pool.Exec(ctx, q, string(status), id, string(submission.RelayPending))
	if err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	if tag.RowsAffected() == 0 {
		return submission.ErrNotPending
	}
	return nil
}

// EmailExists reports whether any record in cat carries email.
func (s *Postgres) EmailExists(ctx context.Context, cat submission.Category, email string) (bool, error) {
	table, err := tableFor(cat)
	if err != nil {
		return false, err
	}
	var one int
	err = s.pool.QueryRow(ctx, "SELECT 1 FROM "+table+" WHERE email = $1 LIMIT 1", email).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup %s: %w", table, err)
	}
	return true, nil
}

// RecentContacts returns up to limit contacts, newest first.
func (s *Postgres) RecentContacts(ctx context.Context, limit int) ([]submission.Contact, error) {
	q := "SELECT " + contactCols + " FROM " + contactTable + " ORDER BY submitted_at DESC, row_id DESC LIMIT $1"
	rows, err := s.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", contactTable, err)
	}
	got, err := pgx.CollectRows(rows, pgx.RowToStructByName[contactRow])
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", contactTable, err)
	}
	return contacts(got), nil
}

// RecentWaitlist returns up to limit waitlist entries, newest first.
func (s *Postgres) RecentWaitlist(ctx context.Context, limit int) ([]submission.Waitlist, error) {
	q := "SELECT " + waitlistCols + " FROM " + waitlistTable + " ORDER BY submitted_at DESC, row_id DESC LIMIT $1"
	rows, err := s.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", waitlistTable, err)
	}
	got, err := pgx.CollectRows(rows, pgx.RowToStructByName[waitlistRow])
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", waitlistTable, err)
	}
	return waitlist(got), nil
}

// Migrate creates both tables if they are missing.
func (s *Postgres) Migrate(ctx context.Context) error {
	for _, stmt := range postgresSchema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (s *Postgres) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *Postgres) Close() error {
	s.pool.Close()
	return nil
}
