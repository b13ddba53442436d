package submission

import "context"

// Read-back bounds.  Requests outside [1, MaxLimit] are clamped.
const (
	DefaultLimit = 50
	MaxLimit     = 100
)

// Query lists stored records newest-first for operators.
type Query struct {
	store        Store
	defaultLimit int
	maxLimit     int
}

// NewQuery returns a Query over store.  Non-positive bounds fall back to
// DefaultLimit and MaxLimit.
func NewQuery(store Store, defaultLimit, maxLimit int) *Query {
	if maxLimit <= 0 {
		maxLimit = MaxLimit
	}
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	if defaultLimit > maxLimit {
		defaultLimit = maxLimit
	}
	return &Query{store: store, defaultLimit: defaultLimit, maxLimit: maxLimit}
}

// Clamp resolves a requested limit.  0 means "use the default".
func (q *Query) Clamp(limit int) int {
	switch {
	case limit == 0:
		return q.defaultLimit
	case limit < 1:
		return 1
	case limit > q.maxLimit:
		return q.maxLimit
	}
	return limit
}

// Contacts returns the newest contact inquiries.  Never nil on success.
func (q *Query) Contacts(ctx context.Context, limit int) ([]Contact, error) {
	out, err := q.store.RecentContacts(ctx, q.Clamp(limit))
	if err != nil {
		return nil, &QueryError{Op: "recent", Category: CategoryContact, Err: err}
	}
	if out == nil {
		out = []Contact{}
	}
	return out, nil
}

// Waitlist returns the newest waitlist signups.  Never nil on success.
func (q *Query) Waitlist(ctx context.Context, limit int) ([]Waitlist, error) {
	out, err := q.store.RecentWaitlist(ctx, q.Clamp(limit))
	if err != nil {
		return nil, &QueryError{Op: "recent", Category: CategoryWaitlist, Err: err}
	}
	if out == nil {
		out = []Waitlist{}
	}
	return out, nil
}
