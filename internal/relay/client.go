// internal/relay/client.go
//
// Outbound client for the third-party form relay (Formspree-style).
//
// Context
// -------
// Every accepted submission is copied to one fixed relay endpoint so the
// owner gets a notification.  The relay sits outside our control, so Send
// is a total function: every failure becomes Result{Success: false}.  That
// covers non-200 statuses, timeouts, refused connections, malformed
// bodies, and even panics inside the transport.  Nothing is returned as
// an error and nothing is retried.
//
// Success is exactly HTTP 200 with an empty or JSON body.
//
// Notes
// -----
//   - The per-call timeout is applied on top of the caller's context.
//   - Bodies are read up to 1 MiB; the relay only ever sends small JSON.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/formrelay/internal/metrics"
)

// DefaultTimeout bounds one relay call when the config leaves it unset.
const DefaultTimeout = 10 * time.Second

const maxBody = 1 << 20

// Result is the normalized outcome of one relay call.
type Result struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"status_code,omitempty"`
	Response   any    `json:"response,omitempty"`
	Error      string `json:"error,omitempty"`
}

// outcome labels the result for metrics.
func (r Result) outcome() string {
	switch {
	case r.Success:
		return "sent"
	case r.StatusCode != 0:
		return "rejected"
	default:
		return "error"
	}
}

// Client posts flat JSON payloads to one endpoint.  Safe for concurrent use.
type Client struct {
	endpoint string
	timeout  time.Duration
	http     *http.Client
	log      *zap.SugaredLogger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient swaps the transport, mostly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for per-call diagnostics.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *Client) { c.log = l }
}

// New returns a Client for endpoint.  timeout ≤ 0 selects DefaultTimeout.
func New(endpoint string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		endpoint: endpoint,
		timeout:  timeout,
		http:     &http.Client{},
		log:      zap.NewNop().Sugar(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Send posts fields as one JSON object and normalizes the outcome.
func (c *Client) Send(ctx context.Context, fields map[string]string) (res Result) {
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			res = Result{Error: fmt.Sprintf("unexpected error: %v", p)}
		}
		metrics.RelayRequests.WithLabelValues(res.outcome()).Inc()
		metrics.RelayDuration.Observe(time.Since(start).Seconds())

		if res.Success {
			c.log.Infow("relay delivered", "email", fields["email"], "form_type", fields["form_type"])
		} else {
			c.log.Warnw("relay failed",
				"email", fields["email"],
				"form_type", fields["form_type"],
				"status", res.StatusCode,
				"error", res.Error,
			)
		}
	}()

	payload, err := json.Marshal(fields)
	if err != nil {
		return Result{Error: fmt.Sprintf("encode payload: %v", err)}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return Result{Error: fmt.Sprintf("build request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{Error: describe(err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return Result{StatusCode: resp.StatusCode, Error: "read response: " + describe(err)}
	}

	if resp.StatusCode != http.StatusOK {
		return Result{
			StatusCode: resp.StatusCode,
			Error:      fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, snippet(raw)),
		}
	}

	var body any = map[string]any{}
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil {
			return Result{StatusCode: resp.StatusCode, Error: "malformed response: " + err.Error()}
		}
	}
	return Result{Success: true, StatusCode: resp.StatusCode, Response: body}
}

// describe turns transport errors into the stable messages operators grep for.
func describe(err error) string {
	var ne net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &ne) && ne.Timeout():
		return "request timed out"
	case errors.Is(err, context.Canceled):
		return "request canceled"
	default:
		return "connection error: " + err.Error()
	}
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 512 {
		s = s[:512] + "…"
	}
	if s == "" {
		return "(empty body)"
	}
	return s
}
