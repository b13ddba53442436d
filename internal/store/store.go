// internal/store/store.go
//
// Submission persistence.
//
// Context
// -------
// Each category is a "collection" backed by one table:
//
//	contact_submissions   (row_id PK, id UNIQUE, name, email, company,
//	                       project_type, budget, message, submitted_at,
//	                       relay_status, client_ip)
//	waitlist_submissions  (row_id PK, id UNIQUE, name, email, interests,
//	                       submitted_at, relay_status, client_ip)
//
// `row_id` is the store-assigned key and surfaces on read-back as
// `store_id`; `id` is the application UUID and is what callers address.
//
// Two backends implement the same Backend interface:
//
//   - MySQL / MariaDB via sqlx (default),
//   - PostgreSQL via a pgx pool.
//
// Workflow
// --------
//
//	be, err := store.Open(ctx, cfg.Database)
//	defer be.Close()
//	_ = be.Migrate(ctx)            // formsctl migrate, or cmd/web once reachable
//
// Notes
// -----
//   • Table names come only from tableFor, never from input.
//   • Relay status moves only out of "pending"; see SetRelayStatus.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/yanizio/formrelay/internal/config"
	"github.com/yanizio/formrelay/internal/database"
	"github.com/yanizio/formrelay/internal/submission"
)

// Backend is a submission.Store that can also create its own schema.
type Backend interface {
	submission.Store
	Migrate(ctx context.Context) error
	Driver() string
}

// Open builds the backend named by cfg.Driver and waits briefly for it to
// answer.  An unreachable server is logged, not returned: the handle stays
// usable and its queries fail until the database comes back, which the
// submission flow absorbs.  Only configuration mistakes are errors.
func Open(ctx context.Context, cfg config.Database) (Backend, error) {
	return open(ctx, cfg, database.DefaultOptions())
}

func open(ctx context.Context, cfg config.Database, opts database.Options) (Backend, error) {
	if cfg.MaxOpen > 0 {
		opts.MaxOpenConns = cfg.MaxOpen
	}
	if cfg.MaxIdle > 0 {
		opts.MaxIdleConns = cfg.MaxIdle
	}

	var be Backend
	switch cfg.Driver {
	case "", "mysql":
		dsn, err := mysqlDSN(cfg.ResolvedDSN())
		if err != nil {
			return nil, fmt.Errorf("mysql dsn: %w", err)
		}
		db, err := database.Open(dsn, opts)
		if err != nil {
			return nil, fmt.Errorf("open mysql: %w", err)
		}
		be = NewMySQL(db)
	case "postgres":
		pool, err := database.OpenPool(ctx, cfg.ResolvedDSN(), opts)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		be = NewPostgres(pool)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	if err := database.PingWithRetry(ctx, be.Ping, opts); err != nil {
		zap.S().Warnw("store unreachable at startup, continuing", "driver", be.Driver(), "err", err)
	}
	return be, nil
}

// mysqlDSN forces parseTime and UTC so DATETIME columns round-trip as
// time.Time in UTC.
func mysqlDSN(dsn string) (string, error) {
	mc, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", err
	}
	mc.ParseTime = true
	mc.Loc = time.UTC
	return mc.FormatDSN(), nil
}

//
// Tables and columns
//

const (
	contactTable  = "contact_submissions"
	waitlistTable = "waitlist_submissions"

	contactCols  = "row_id, id, name, email, company, project_type, budget, message, submitted_at, relay_status, client_ip"
	waitlistCols = "row_id, id, name, email, interests, submitted_at, relay_status, client_ip"
)

func tableFor(cat submission.Category) (string, error) {
	switch cat {
	case submission.CategoryContact:
		return contactTable, nil
	case submission.CategoryWaitlist:
		return waitlistTable, nil
	}
	return "", fmt.Errorf("%w: %q", submission.ErrUnknownCategory, cat)
}

// insertSpec returns the table, column list, and values for r.
func insertSpec(r submission.Record) (table string, cols []string, args []any, err error) {
	m := r.Header()
	switch rec := r.(type) {
	case *submission.Contact:
		return contactTable,
			[]string{"id", "name", "email", "company", "project_type", "budget", "message", "submitted_at", "relay_status", "client_ip"},
			[]any{m.ID, rec.Name, rec.Email, rec.Company, rec.ProjectType, rec.Budget, rec.Message, m.SubmittedAt.UTC(), string(m.RelayStatus), m.ClientIP},
			nil
	case *submission.Waitlist:
		return waitlistTable,
			[]string{"id", "name", "email", "interests", "submitted_at", "relay_status", "client_ip"},
			[]any{m.ID, rec.Name, rec.Email, rec.Interests, m.SubmittedAt.UTC(), string(m.RelayStatus), m.ClientIP},
			nil
	}
	return "", nil, nil, fmt.Errorf("%w: %T", submission.ErrUnknownCategory, r)
}

// placeholders renders n bind markers using mark(i) for the i-th (1-based).
func placeholders(n int, mark func(i int) string) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = mark(i + 1)
	}
	return strings.Join(parts, ", ")
}

//
// Row mapping
//

type metaRow struct {
	RowID       int64     `db:"row_id"`
	ID          string    `db:"id"`
	SubmittedAt time.Time `db:"submitted_at"`
	RelayStatus string    `db:"relay_status"`
	ClientIP    string    `db:"client_ip"`
}

func (m metaRow) meta() submission.Meta {
	return submission.Meta{
		StoreID:     fmt.Sprint(m.RowID),
		ID:          m.ID,
		SubmittedAt: m.SubmittedAt.UTC(),
		RelayStatus: submission.RelayStatus(m.RelayStatus),
		ClientIP:    m.ClientIP,
	}
}

type contactRow struct {
	metaRow
	Name        string  `db:"name"`
	Email       string  `db:"email"`
	Company     *string `db:"company"`
	ProjectType *string `db:"project_type"`
	Budget      *string `db:"budget"`
	Message     string  `db:"message"`
}

func (r contactRow) record() submission.Contact {
	return submission.Contact{
		Meta: r.meta(),
		ContactFields: submission.ContactFields{
			Name:        r.Name,
			Email:       r.Email,
			Company:     r.Company,
			ProjectType: r.ProjectType,
			Budget:      r.Budget,
			Message:     r.Message,
		},
	}
}

type waitlistRow struct {
	metaRow
	Name      string  `db:"name"`
	Email     string  `db:"email"`
	Interests *string `db:"interests"`
}

func (r waitlistRow) record() submission.Waitlist {
	return submission.Waitlist{
		Meta: r.meta(),
		WaitlistFields: submission.WaitlistFields{
			Name:      r.Name,
			Email:     r.Email,
			Interests: r.Interests,
		},
	}
}

func contacts(rows []contactRow) []submission.Contact {
	out := make([]submission.Contact, len(rows))
	for i, r := range rows {
		out[i] = r.record()
	}
	return out
}

func waitlist(rows []waitlistRow) []submission.Waitlist {
	out := make([]submission.Waitlist, len(rows))
	for i, r := range rows {
		out[i] = r.record()
	}
	return out
}
