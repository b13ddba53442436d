// internal/api/api.go
//
// Public and admin HTTP endpoints.
//
// Context
// -------
//
//	POST /api/contact                          → contact flow
//	POST /api/ai-waitlist                      → waitlist flow
//	GET  /api/admin/contact-submissions?limit  → read-back (bearer token)
//	GET  /api/admin/waitlist-submissions?limit → read-back (bearer token)
//	GET  /api/                                 → banner
//	GET  /health                               → liveness plus store ping
//
// Handlers only decode, validate, and map outcomes to status codes.  All
// submission semantics live in internal/submission.
//
// Notes
// -----
//   • Validation failures, including malformed JSON, answer 422.
//   • Anything unexpected answers 500 with a fixed body; details go to the
//     log only.
package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/yanizio/formrelay/internal/acl"
	"github.com/yanizio/formrelay/internal/form"
	"github.com/yanizio/formrelay/internal/logger"
	"github.com/yanizio/formrelay/internal/requestinfo"
	"github.com/yanizio/formrelay/internal/submission"
)

// Version is reported by the banner and formsctl.
const Version = "1.0.0"

// Submitter runs the submission flows.
type Submitter interface {
	SubmitContact(ctx context.Context, f submission.ContactFields, o submission.Origin) (*submission.Receipt, error)
	SubmitWaitlist(ctx context.Context, f submission.WaitlistFields, o submission.Origin) (*submission.Receipt, error)
}

// Reader serves the admin read-back.
type Reader interface {
	Contacts(ctx context.Context, limit int) ([]submission.Contact, error)
	Waitlist(ctx context.Context, limit int) ([]submission.Waitlist, error)
}

// Pinger checks the store for /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds the endpoint dependencies.
type Handler struct {
	Service    string
	AdminToken string
	Submit     Submitter
	Read       Reader
	Store      Pinger
}

// NewRouter builds the chi router.  mws run before routing, outermost first.
func NewRouter(h *Handler, mws ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(mws...)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/health", h.health)
	r.Route("/api", func(r chi.Router) {
		r.Get("/", h.root)
		r.Post("/contact", h.contact)
		r.Post("/ai-waitlist", h.waitlist)
		r.Route("/admin", func(r chi.Router) {
			r.Use(acl.RequireToken(h.AdminToken))
			r.Get("/contact-submissions", h.adminContacts)
			r.Get("/waitlist-submissions", h.adminWaitlist)
		})
	})
	return r
}

//
// Public endpoints
//

func (h *Handler) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": h.Service + " API v" + Version + " - Ready to serve",
	})
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	state := "ok"
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if h.Store == nil || h.Store.Ping(ctx) != nil {
		state = "unavailable"
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": h.Service,
		"store":   state,
	})
}

func (h *Handler) contact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if !bind(w, r, &req) {
		return
	}
	rcpt, err := h.Submit.SubmitContact(r.Context(), req.fields(), origin(r))
	h.finish(w, r, rcpt, err)
}

func (h *Handler) waitlist(w http.ResponseWriter, r *http.Request) {
	var req waitlistRequest
	if !bind(w, r, &req) {
		return
	}
	rcpt, err := h.Submit.SubmitWaitlist(r.Context(), req.fields(), origin(r))
	h.finish(w, r, rcpt, err)
}

func (h *Handler) finish(w http.ResponseWriter, r *http.Request, rcpt *submission.Receipt, err error) {
	if err != nil {
		logger.FromContext(r.Context()).Errorw("submission failed", "path", r.URL.Path, "err", err)
		writeServerError(w)
		return
	}
	writeJSON(w, http.StatusOK, rcpt.Response)
}

// bind decodes and validates; on failure it has already answered.
func bind(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := form.Bind(w, r, dst)
	if err == nil {
		return true
	}
	if ve, ok := form.AsValidationError(err); ok {
		writeValidation(w, ve)
		return false
	}
	logger.FromContext(r.Context()).Errorw("request bind failed", "path", r.URL.Path, "err", err)
	writeServerError(w)
	return false
}

// origin gathers client facts for the coordinator's log line.
func origin(r *http.Request) submission.Origin {
	ri := requestinfo.FromContext(r.Context())
	o := submission.Origin{
		ClientIP:  requestinfo.ClientIP(r.Context()),
		LogFields: ri.LogFields(),
	}
	if id := chimw.GetReqID(r.Context()); id != "" {
		o.LogFields = append(o.LogFields, "request_id", id)
	}
	return o
}

//
// Admin endpoints
//

type listResponse[T any] struct {
	Success     bool `json:"success"`
	Submissions []T  `json:"submissions"`
}

func (h *Handler) adminContacts(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	items, err := h.Read.Contacts(r.Context(), limit)
	if err != nil {
		logger.FromContext(r.Context()).Errorw("read-back failed", "category", submission.CategoryContact, "err", err)
		writeServerError(w)
		return
	}
	if items == nil {
		items = []submission.Contact{}
	}
	writeJSON(w, http.StatusOK, listResponse[submission.Contact]{Success: true, Submissions: items})
}

func (h *Handler) adminWaitlist(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	items, err := h.Read.Waitlist(r.Context(), limit)
	if err != nil {
		logger.FromContext(r.Context()).Errorw("read-back failed", "category", submission.CategoryWaitlist, "err", err)
		writeServerError(w)
		return
	}
	if items == nil {
		items = []submission.Waitlist{}
	}
	writeJSON(w, http.StatusOK, listResponse[submission.Waitlist]{Success: true, Submissions: items})
}

// parseLimit reads ?limit.  Absent means 0 (the reader's default); a
// non-integer answers 422.
func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		writeValidation(w, &form.ValidationError{Fields: []form.ErrorField{{Name: "limit", Message: "Must be an integer."}}})
		return 0, false
	}
	if n < 1 {
		n = 1
	}
	return n, true
}
