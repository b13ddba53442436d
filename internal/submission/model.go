// internal/submission/model.go
//
// Submission records for the contact and waitlist forms.
//
// Context
// -------
// Both record kinds share one lifecycle.  A record is built in memory from
// validated input, persisted once, and then receives exactly one
// relay_status transition (pending → sent | failed).  After that it is
// read-only.  The application-level `ID` is the only update key; the
// store's own row identifier surfaces as the opaque `StoreID` string on
// read-back and is never used for writes.
//
// Notes
// -----
//   - Optional inputs are *string so "absent" and "empty" stay distinct on
//     read-back.
//   - Relay payloads send absent optionals as "" to keep the relay form
//     columns stable.
package submission

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

//
// Category
//

// Category names the submission kind and selects its collection.
type Category string

const (
	CategoryContact  Category = "contact"
	CategoryWaitlist Category = "waitlist"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	return c == CategoryContact || c == CategoryWaitlist
}

// ParseCategory accepts "contact" or "waitlist".
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}

//
// Relay status
//

// RelayStatus tracks whether the relay call has run and how it ended.
type RelayStatus string

const (
	RelayPending RelayStatus = "pending"
	RelaySent    RelayStatus = "sent"
	RelayFailed  RelayStatus = "failed"
)

// StatusFor maps a relay outcome onto the terminal status.
func StatusFor(delivered bool) RelayStatus {
	if delivered {
		return RelaySent
	}
	return RelayFailed
}

//
// Records
//

// Meta holds the fields every record carries besides its form inputs.
type Meta struct {
	StoreID     string      `json:"store_id,omitempty"`
	ID          string      `json:"id"`
	SubmittedAt time.Time   `json:"submitted_at"`
	RelayStatus RelayStatus `json:"relay_status"`
	ClientIP    string      `json:"client_ip"`
}

// ContactFields is the validated contact form input.
type ContactFields struct {
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Company     *string `json:"company"`
	ProjectType *string `json:"project_type"`
	Budget      *string `json:"budget"`
	Message     string  `json:"message"`
}

// WaitlistFields is the validated waitlist form input.
type WaitlistFields struct {
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Interests *string `json:"interests"`
}

// Contact is one persisted contact inquiry.
type Contact struct {
	Meta
	ContactFields
}

// Waitlist is one persisted waitlist signup.
type Waitlist struct {
	Meta
	WaitlistFields
}

// Record is implemented by *Contact and *Waitlist.
type Record interface {
	Category() Category
	Header() *Meta
	EmailAddress() string
	// RelayFields returns the flat payload for the relay service,
	// including form_type and _subject.
	RelayFields() map[string]string
}

func (c *Contact) Category() Category   { return CategoryContact }
func (c *Contact) Header() *Meta        { return &c.Meta }
func (c *Contact) EmailAddress() string { return c.Email }

func (w *Waitlist) Category() Category   { return CategoryWaitlist }
func (w *Waitlist) Header() *Meta        { return &w.Meta }
func (w *Waitlist) EmailAddress() string { return w.Email }

// RelayFields maps a contact onto the "Contact Form" relay layout.
func (c *Contact) RelayFields() map[string]string {
	return map[string]string{
		"name":         c.Name,
		"email":        c.Email,
		"company":      deref(c.Company),
		"project_type": deref(c.ProjectType),
		"budget":       deref(c.Budget),
		"message":      c.Message,
		"form_type":    "Contact Form",
		"_subject":     "New Contact Form Submission from " + c.Name,
	}
}

// RelayFields maps a signup onto the "AI Waitlist" relay layout.
func (w *Waitlist) RelayFields() map[string]string {
	return map[string]string{
		"name":      w.Name,
		"email":     w.Email,
		"interests": deref(w.Interests),
		"form_type": "AI Waitlist",
		"_subject":  "New AI Waitlist Signup from " + w.Name,
	}
}

//
// Constructors
//

// UnknownIP is recorded when the client address cannot be resolved.
const UnknownIP = "unknown"

// NewContact builds a pending contact record stamped with a fresh UUID.
func NewContact(f ContactFields, clientIP string, now time.Time) (*Contact, error) {
	m, err := newMeta(clientIP, now)
	if err != nil {
		return nil, err
	}
	return &Contact{Meta: m, ContactFields: f}, nil
}

// NewWaitlist builds a pending waitlist record stamped with a fresh UUID.
func NewWaitlist(f WaitlistFields, clientIP string, now time.Time) (*Waitlist, error) {
	m, err := newMeta(clientIP, now)
	if err != nil {
		return nil, err
	}
	return &Waitlist{Meta: m, WaitlistFields: f}, nil
}

func newMeta(clientIP string, now time.Time) (Meta, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return Meta{}, fmt.Errorf("generate submission id: %w", err)
	}
	if clientIP == "" {
		clientIP = UnknownIP
	}
	return Meta{
		ID:          id.String(),
		SubmittedAt: now.UTC(),
		RelayStatus: RelayPending,
		ClientIP:    clientIP,
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
