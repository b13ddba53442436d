// internal/store/mysql.go
//
// MySQL / MariaDB backend on sqlx.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/yanizio/formrelay/internal/submission"
)

// MySQL implements Backend over a *sqlx.DB.
type MySQL struct {
	db *sqlx.DB
}

// NewMySQL wraps an open handle.  The caller hands ownership to the store;
// Close closes db.
func NewMySQL(db *sqlx.DB) *MySQL { return &MySQL{db: db} }

func (s *MySQL) Driver() string { return "mysql" }

// Insert writes one record.
func (s *MySQL) Insert(ctx context.Context, r submission.Record) error {
	table, cols, args, err := insertSpec(r)
	if err != nil {
		return err
	}
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), placeholders(len(cols), func(int) string { return "?" }))
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

// SetRelayStatus moves a pending record to status.
func (s *MySQL) SetRelayStatus(ctx context.Context, cat submission.Category, id string, status submission.RelayStatus) error {
	table, err := tableFor(cat)
	if err != nil {
		return err
	}
	q := "UPDATE " + table + " SET relay_status = ? WHERE id = ? AND relay_status = ?"
	res, err := s.db.ExecContext(ctx, q, string(status), id, string(submission.RelayPending))
	if err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	if n == 0 {
		return submission.ErrNotPending
	}
	return nil
}

// EmailExists reports whether any record in cat carries email.
func (s *MySQL) EmailExists(ctx context.Context, cat submission.Category, email string) (bool, error) {
	table, err := tableFor(cat)
	if err != nil {
		return false, err
	}
	var one int
	err = s.db.QueryRowContext(ctx, "SELECT 1 FROM "+table+" WHERE email = ? LIMIT 1", email).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup %s: %w", table, err)
	}
	return true, nil
}

// RecentContacts returns up to limit contacts, newest first.
func (s *MySQL) RecentContacts(ctx context.Context, limit int) ([]submission.Contact, error) {
	var rows []contactRow
	q := "SELECT " + contactCols + " FROM " + contactTable + " ORDER BY submitted_at DESC, row_id DESC LIMIT ?"
	if err := s.db.SelectContext(ctx, &rows, q, limit); err != nil {
		return nil, fmt.Errorf("select %s: %w", contactTable, err)
	}
	return contacts(rows), nil
}

// RecentWaitlist returns up to limit waitlist entries, newest first.
func (s *MySQL) RecentWaitlist(ctx context.Context, limit int) ([]submission.Waitlist, error) {
	var rows []waitlistRow
	q := "SELECT " + waitlistCols + " FROM " + waitlistTable + " ORDER BY submitted_at DESC, row_id DESC LIMIT ?"
	if err := s.db.SelectContext(ctx, &rows, q, limit); err != nil {
		return nil, fmt.Errorf("select %s: %w", waitlistTable, err)
	}
	return waitlist(rows), nil
}

// Migrate creates both tables if they are missing.
func (s *MySQL) Migrate(ctx context.Context) error {
	for _, stmt := range mysqlSchema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (s *MySQL) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }
func (s *MySQL) Close() error                   { return s.db.Close() }
