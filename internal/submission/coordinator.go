// internal/submission/coordinator.go
//
// Submission coordinator: build → persist → relay → reconcile.
//
// Context
// -------
// One Submit call drives one form submission end to end.  The store and
// the relay are independent best-effort sinks.  A failure in one never
// blocks the other, and neither is reported to the submitter.  Only a
// fault outside those stages (e.g. no id could be generated) is returned
// as an error, which the HTTP layer turns into a generic 500.
//
// Workflow
// --------
//  1. Waitlist only: duplicate check.  Duplicate short-circuits.
//     CheckFailed is treated as NotDuplicate.
//  2. Build the record (relay_status = pending).
//  3. Insert.  On failure continue without a submission id.
//  4. Relay, always.
//  5. If the insert succeeded, move relay_status to sent or failed.
//     A failed update leaves the record pending.
//
// Each stage yields a StageResult.  What happens on failure is decided in
// one place, policyFor, so the absorb-and-continue rules are explicit and
// testable.
//
// Notes
// -----
//   - The stages run on a context detached from request cancellation.  A
//     client that hangs up mid-flight must not cost us the lead.
//   - Stage order is strict: persist, relay, status update.
package submission

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/formrelay/internal/metrics"
	"github.com/yanizio/formrelay/internal/relay"
)

//
// Stages and policy
//

// Stage names one step of the coordinator flow.
type Stage string

const (
	StageDuplicateCheck Stage = "duplicate_check"
	StagePersist        Stage = "persist"
	StageRelay          Stage = "relay"
	StageStatusUpdate   Stage = "status_update"
)

// Policy is the coordinator's reaction to a failed stage.
type Policy int

const (
	// AssumeNotDuplicate proceeds as if the duplicate check said no.
	AssumeNotDuplicate Policy = iota
	// ContinueWithoutID proceeds to the relay with no submission id.
	ContinueWithoutID
	// RecordFailedRelay stores relay_status=failed and carries on.
	RecordFailedRelay
	// LeaveStale ignores the failure; relay_status stays pending.
	LeaveStale
)

// policyFor is the failure-policy table.  Every stage that can fail has
// exactly one entry and none of them abort the submission.
func policyFor(s Stage) Policy {
	switch s {
	case StageDuplicateCheck:
		return AssumeNotDuplicate
	case StagePersist:
		return ContinueWithoutID
	case StageRelay:
		return RecordFailedRelay
	case StageStatusUpdate:
		return LeaveStale
	default:
		panic("submission: no failure policy for stage " + string(s))
	}
}

// StageResult records how one stage ended.
type StageResult struct {
	Stage   Stage
	Skipped bool
	Err     error
	// Detail carries stage-specific output: the DuplicateState for the
	// duplicate check and the relay.Result for the relay.
	Detail any
}

// Failed reports whether the stage ran and did not succeed.
func (r StageResult) Failed() bool { return !r.Skipped && r.Err != nil }

//
// Responses
//

// Response is the submitter-facing acknowledgment.
type Response struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	SubmissionID string `json:"submission_id,omitempty"`
}

// Receipt is the full outcome of one Submit call.
type Receipt struct {
	Response
	Category Category
	Stages   []StageResult
}

// Stage returns the result for s, if that stage was reached.
func (r *Receipt) Stage(s Stage) (StageResult, bool) {
	for _, sr := range r.Stages {
		if sr.Stage == s {
			return sr, true
		}
	}
	return StageResult{}, false
}

const (
	MsgContactAccepted   = "Thanks! We'll contact you soon."
	MsgWaitlistAccepted  = "Welcome to the waitlist!"
	MsgWaitlistDuplicate = "You're already on the waitlist!"
)

//
// Coordinator
//

// Relayer delivers a flat payload to the relay service.  Implementations
// must not panic or block past their own timeout.
type Relayer interface {
	Send(ctx context.Context, fields map[string]string) relay.Result
}

// Coordinator wires the store, duplicate checker, and relay.  Safe for
// concurrent use; it holds no per-request state.
type Coordinator struct {
	store Store
	dupes *DuplicateChecker
	relay Relayer
	log   *zap.SugaredLogger
	now   func() time.Time
}

// NewCoordinator builds a Coordinator.  dupes may be nil, in which case a
// checker with the default cache size is created over store.
func NewCoordinator(store Store, dupes *DuplicateChecker, r Relayer, log *zap.SugaredLogger) *Coordinator {
	if dupes == nil {
		dupes = NewDuplicateChecker(store, 0)
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Coordinator{store: store, dupes: dupes, relay: r, log: log, now: time.Now}
}

// Origin carries best-effort facts about who submitted.
type Origin struct {
	ClientIP string
	// Extra key/value pairs for the log line (browser, country, ...).
	LogFields []any
}

// SubmitContact runs the contact flow.
func (c *Coordinator) SubmitContact(ctx context.Context, f ContactFields, o Origin) (*Receipt, error) {
	rec, err := NewContact(f, o.ClientIP, c.now())
	if err != nil {
		metrics.Submissions.WithLabelValues(string(CategoryContact), "error").Inc()
		return nil, err
	}
	return c.run(ctx, rec, o, MsgContactAccepted), nil
}

// SubmitWaitlist runs the waitlist flow, including the duplicate check.
func (c *Coordinator) SubmitWaitlist(ctx context.Context, f WaitlistFields, o Origin) (*Receipt, error) {
	ctx = context.WithoutCancel(ctx)

	state, err := c.dupes.Check(ctx, CategoryWaitlist, f.Email)
	check := StageResult{Stage: StageDuplicateCheck, Err: err, Detail: state}

	switch state {
	case Duplicate:
		c.log.Infow("waitlist duplicate", "email", f.Email)
		metrics.Submissions.WithLabelValues(string(CategoryWaitlist), "duplicate").Inc()
		return &Receipt{
			Response: Response{Success: true, Message: MsgWaitlistDuplicate},
			Category: CategoryWaitlist,
			Stages:   []StageResult{check},
		}, nil
	case CheckFailed:
		c.absorb(CategoryWaitlist, check)
	}

	rec, err := NewWaitlist(f, o.ClientIP, c.now())
	if err != nil {
		metrics.Submissions.WithLabelValues(string(CategoryWaitlist), "error").Inc()
		return nil, err
	}
	r := c.run(ctx, rec, o, MsgWaitlistAccepted)
	r.Stages = append([]StageResult{check}, r.Stages...)
	return r, nil
}

// run performs persist → relay → status update for a built record.
func (c *Coordinator) run(ctx context.Context, rec Record, o Origin, msg string) *Receipt {
	ctx = context.WithoutCancel(ctx)
	cat := rec.Category()
	meta := rec.Header()

	c.log.Infow("submission received",
		append([]any{"category", cat, "id", meta.ID, "email", rec.EmailAddress(), "ip", meta.ClientIP},
			o.LogFields...)...)

	receipt := &Receipt{Category: cat}

	// Persist.
	persist := StageResult{Stage: StagePersist, Err: c.store.Insert(ctx, rec)}
	receipt.Stages = append(receipt.Stages, persist)
	persisted := !persist.Failed()
	if persisted {
		c.dupes.Remember(cat, rec.EmailAddress())
		c.log.Infow("submission stored", "category", cat, "id", meta.ID)
	} else {
		c.absorb(cat, persist)
	}

	// Relay.
	res := c.relay.Send(ctx, rec.RelayFields())
	relayed := StageResult{Stage: StageRelay, Detail: res}
	if !res.Success {
		relayed.Err = &RelayError{Result: res}
		c.absorb(cat, relayed)
	}
	receipt.Stages = append(receipt.Stages, relayed)

	// Reconcile.
	update := StageResult{Stage: StageStatusUpdate, Skipped: !persisted}
	if persisted {
		update.Err = c.store.SetRelayStatus(ctx, cat, meta.ID, StatusFor(res.Success))
		if update.Failed() {
			c.absorb(cat, update)
		}
	}
	receipt.Stages = append(receipt.Stages, update)

	receipt.Response = Response{Success: true, Message: msg}
	if persisted {
		receipt.SubmissionID = meta.ID
	}
	metrics.Submissions.WithLabelValues(string(cat), "accepted").Inc()
	return receipt
}

// absorb logs and counts a failed stage according to its policy.
func (c *Coordinator) absorb(cat Category, r StageResult) {
	metrics.StageFailures.WithLabelValues(string(cat), string(r.Stage)).Inc()

	switch policyFor(r.Stage) {
	case AssumeNotDuplicate:
		c.log.Warnw("duplicate check failed, assuming new email", "category", cat, "err", r.Err)
	case ContinueWithoutID:
		c.log.Errorw("store insert failed, continuing without id", "category", cat, "err", r.Err)
	case RecordFailedRelay:
		c.log.Warnw("relay not delivered, marking failed", "category", cat, "err", r.Err)
	case LeaveStale:
		c.log.Errorw("relay status update failed, status left pending", "category", cat, "err", r.Err)
	}
}

// RelayError wraps a failed relay.Result so it can travel as an error.
type RelayError struct{ Result relay.Result }

func (e *RelayError) Error() string {
	if e.Result.Error == "" {
		return "relay failed"
	}
	return "relay failed: " + e.Result.Error
}
