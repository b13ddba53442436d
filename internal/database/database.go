// Package database centralises connection helpers for the two supported
// store backends.
//
//   - MySQL (default): sqlx over go-sql-driver/mysql.  Also works with
//     MariaDB.
//   - PostgreSQL: a pgx connection pool.
//
// Public entry points:
//
//	Open(dsn, opts)                  – MySQL pool, connects lazily.
//	OpenPool(ctx, dsn, opts)         – PostgreSQL pgxpool, connects lazily.
//	PingWithRetry(ctx, ping, opts)   – startup readiness check with backoff.
//
// Opening never dials.  A store that is down at boot yields a usable
// handle whose queries fail until the server comes back; callers decide
// whether a failed PingWithRetry is fatal.  The handle is process-wide:
// open once at startup, Close() once at shutdown.
package database

import (
	"context"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
)

// Options tunes pool size and startup retries.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Retries         int           // extra ping attempts after the first
	RetryBackoff    time.Duration // doubled after each failed attempt
}

// DefaultOptions returns 15 max open, 5 idle, a 30-minute lifetime, and two
// ping retries.
func DefaultOptions() Options {
	return Options{
		MaxOpenConns:    15,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
		Retries:         2,
		RetryBackoff:    500 * time.Millisecond,
	}
}

// Open returns a MySQL *sqlx.DB sized by opts.  It only fails on a DSN the
// driver cannot parse.
func Open(dsn string, opts Options) (*sqlx.DB, error) {
	db, err := sqlx.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxIdleConns)
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	return db, nil
}

// OpenPool returns a PostgreSQL pool sized by opts.  Idle connections are
// created in the background, so an unreachable server is not an error here.
func OpenPool(ctx context.Context, dsn string, opts Options) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	if opts.MaxOpenConns > 0 {
		cfg.MaxConns = int32(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		cfg.MinConns = int32(min(opts.MaxIdleConns, opts.MaxOpenConns))
	}
	if opts.ConnMaxLifetime > 0 {
		cfg.MaxConnLifetime = opts.ConnMaxLifetime
	}
	return pgxpool.NewWithConfig(ctx, cfg)
}

// PingWithRetry calls ping up to 1+opts.Retries times.
func PingWithRetry(ctx context.Context, ping func(context.Context) error, opts Options) error {
	wait := opts.RetryBackoff
	var err error
	for attempt := 0; attempt <= opts.Retries; attempt++ {
		if err = ping(ctx); err == nil {
			return nil
		}
		if attempt == opts.Retries {
			break
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		wait *= 2
	}
	return fmt.Errorf("ping after %d attempt(s): %w", opts.Retries+1, err)
}
