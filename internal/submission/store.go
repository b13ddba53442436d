package submission

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrUnknownCategory is returned for a category outside contact/waitlist.
	ErrUnknownCategory = errors.New("unknown submission category")

	// ErrNotPending is returned by SetRelayStatus when no pending record
	// matched the id, either because it does not exist or because its
	// status already moved on.
	ErrNotPending = errors.New("no pending submission with that id")
)

// Store is the persistence contract the coordinator and read-back query
// depend on.  Every method is a single-document operation.
type Store interface {
	// Insert writes one record.  It must not mutate r.
	Insert(ctx context.Context, r Record) error

	// SetRelayStatus moves a pending record to status.  Records that are
	// not pending are left untouched and ErrNotPending is returned.
	SetRelayStatus(ctx context.Context, cat Category, id string, status RelayStatus) error

	// EmailExists reports whether any record in cat has this email.
	EmailExists(ctx context.Context, cat Category, email string) (bool, error)

	// RecentContacts and RecentWaitlist return up to limit records,
	// newest submitted_at first.
	RecentContacts(ctx context.Context, limit int) ([]Contact, error)
	RecentWaitlist(ctx context.Context, limit int) ([]Waitlist, error)

	Ping(ctx context.Context) error
	Close() error
}

// QueryError reports that a lookup could not produce an answer.  It lets
// callers tell "the store said no" apart from "the store did not answer".
type QueryError struct {
	Op       string
	Category Category
	Err      error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Category, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }
