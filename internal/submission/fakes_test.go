package submission

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/yanizio/formrelay/internal/relay"
)

// ---------------------------------------------------------------------------
// memStore: in-memory Store with injectable failures
// ---------------------------------------------------------------------------

type memStore struct {
	mu       sync.Mutex
	contacts []Contact
	waitlist []Waitlist
	events   []string
	lookups  int

	insertErr error
	updateErr error
	existsErr error
	recentErr error
}

var _ Store = (*memStore)(nil)

func (m *memStore) Insert(ctx context.Context, r Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, "insert")
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.insertErr != nil {
		return m.insertErr
	}
	switch v := r.(type) {
	case *Contact:
		m.contacts = append(m.contacts, *v)
	case *Waitlist:
		m.waitlist = append(m.waitlist, *v)
	default:
		return ErrUnknownCategory
	}
	return nil
}

func (m *memStore) SetRelayStatus(ctx context.Context, cat Category, id string, status RelayStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, "status:"+string(status))
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.updateErr != nil {
		return m.updateErr
	}
	switch cat {
	case CategoryContact:
		for i := range m.contacts {
			if m.contacts[i].ID == id && m.contacts[i].RelayStatus == RelayPending {
				m.contacts[i].RelayStatus = status
				return nil
			}
		}
	case CategoryWaitlist:
		for i := range m.waitlist {
			if m.waitlist[i].ID == id && m.waitlist[i].RelayStatus == RelayPending {
				m.waitlist[i].RelayStatus = status
				return nil
			}
		}
	}
	return ErrNotPending
}

func (m *memStore) EmailExists(_ context.Context, cat Category, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups++
	if m.existsErr != nil {
		return false, m.existsErr
	}
	if cat == CategoryWaitlist {
		for _, w := range m.waitlist {
			if w.Email == email {
				return true, nil
			}
		}
		return false, nil
	}
	for _, c := range m.contacts {
		if c.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) RecentContacts(_ context.Context, limit int) ([]Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.recentErr != nil {
		return nil, m.recentErr
	}
	out := append([]Contact(nil), m.contacts...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) RecentWaitlist(_ context.Context, limit int) ([]Waitlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.recentErr != nil {
		return nil, m.recentErr
	}
	out := append([]Waitlist(nil), m.waitlist...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) Ping(context.Context) error { return nil }
func (m *memStore) Close() error               { return nil }

func (m *memStore) log() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.events...)
}

// ---------------------------------------------------------------------------
// fakeRelay records payloads, returns a canned result
// ---------------------------------------------------------------------------

type fakeRelay struct {
	mu     sync.Mutex
	result relay.Result
	sent   []map[string]string
	store  *memStore
}

func (f *fakeRelay) Send(ctx context.Context, fields map[string]string) relay.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.store != nil {
		f.store.mu.Lock()
		f.store.events = append(f.store.events, "relay")
		f.store.mu.Unlock()
	}
	if ctx.Err() != nil {
		return relay.Result{Error: "request canceled"}
	}
	f.sent = append(f.sent, fields)
	return f.result
}

func (f *fakeRelay) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

var errStoreDown = errors.New("store unreachable")

func strptr(s string) *string { return &s }
