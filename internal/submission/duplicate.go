// internal/submission/duplicate.go
//
// Email duplicate check within a category.
//
// Context
// -------
// The waitlist flow asks "is this email already registered?" before it
// builds a record.  The answer is tri-state.  A store failure is reported
// as CheckFailed, never as a guessed boolean, so the coordinator's
// fallback stays an explicit decision.
//
// Records are never deleted, so a positive answer can never become false.
// Positive answers are kept in a bounded LRU; negatives always go to the
// store.  Concurrent checks for the same key share one store round-trip
// through singleflight.
package submission

import (
	"context"
	"errors"

	"golang.org/x/sync/singleflight"

	"github.com/yanizio/formrelay/internal/cache"
)

// DuplicateState is the outcome of one duplicate check.
type DuplicateState int

const (
	NotDuplicate DuplicateState = iota
	Duplicate
	CheckFailed
)

func (s DuplicateState) String() string {
	switch s {
	case Duplicate:
		return "duplicate"
	case CheckFailed:
		return "check_failed"
	default:
		return "not_duplicate"
	}
}

// DefaultDuplicateCacheSize bounds the positive-answer cache.
const DefaultDuplicateCacheSize = 4096

// EmailLookup is the slice of Store the checker needs.
type EmailLookup interface {
	EmailExists(ctx context.Context, cat Category, email string) (bool, error)
}

// DuplicateChecker answers duplicate-email questions.
type DuplicateChecker struct {
	lookup EmailLookup
	known  *cache.LRU[string, struct{}]
	sfg    singleflight.Group
}

// NewDuplicateChecker wraps lookup.  cacheSize ≤ 0 selects the default.
func NewDuplicateChecker(lookup EmailLookup, cacheSize int) *DuplicateChecker {
	if cacheSize <= 0 {
		cacheSize = DefaultDuplicateCacheSize
	}
	return &DuplicateChecker{
		lookup: lookup,
		known:  cache.New[string, struct{}](cacheSize),
	}
}

// Check returns Duplicate, NotDuplicate, or CheckFailed.  The error is
// non-nil exactly when the state is CheckFailed and is always a
// *QueryError.
func (d *DuplicateChecker) Check(ctx context.Context, cat Category, email string) (DuplicateState, error) {
	key := string(cat) + "\x00" + email
	if _, ok := d.known.Get(key); ok {
		return Duplicate, nil
	}

	v, err, _ := d.sfg.Do(key, func() (any, error) {
		return d.lookup.EmailExists(ctx, cat, email)
	})
	if err != nil {
		var qe *QueryError
		if !errors.As(err, &qe) {
			qe = &QueryError{Op: "email exists", Category: cat, Err: err}
		}
		return CheckFailed, qe
	}
	if v.(bool) {
		d.known.Add(key, struct{}{})
		return Duplicate, nil
	}
	return NotDuplicate, nil
}

// Remember records that email is now registered in cat.  The coordinator
// calls it after a successful insert.
func (d *DuplicateChecker) Remember(cat Category, email string) {
	d.known.Add(string(cat)+"\x00"+email, struct{}{})
}
