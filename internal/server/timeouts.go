// internal/server/timeouts.go
//
// HTTP server helper with robust timeouts.
//
// Production hardening recommends:
//
//   • ReadHeaderTimeout – abort slow-loris headers
//   • ReadTimeout       – cap time to read a submission body
//   • WriteTimeout      – cap total response time; must exceed the relay
//                         timeout so a slow relay still gets its answer out
//   • IdleTimeout       – close keep-alives on idle clients
//
// This helper centralises those settings so cmd/web doesn’t repeat boilerplate.
//

package server

import (
	"net/http"
	"time"
)

// Timeouts mirrors the http.* keys in conf/global.yaml.
type Timeouts struct {
	Read  time.Duration
	Write time.Duration
	Idle  time.Duration
}

// DefaultTimeouts is used for any zero field.
var DefaultTimeouts = Timeouts{
	Read:  15 * time.Second,
	Write: 30 * time.Second,
	Idle:  60 * time.Second,
}

// New constructs an *http.Server.
func New(addr string, handler http.Handler, t Timeouts) *http.Server {
	if t.Read <= 0 {
		t.Read = DefaultTimeouts.Read
	}
	if t.Write <= 0 {
		t.Write = DefaultTimeouts.Write
	}
	if t.Idle <= 0 {
		t.Idle = DefaultTimeouts.Idle
	}
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: min(t.Read, 5*time.Second),
		ReadTimeout:       t.Read,
		WriteTimeout:      t.Write,
		IdleTimeout:       t.Idle,
	}
}
