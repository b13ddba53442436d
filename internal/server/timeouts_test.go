package server

import (
	"net/http"
	"testing"
	"time"
)

func TestNewFillsDefaults(t *testing.T) {
	srv := New(":0", http.NotFoundHandler(), Timeouts{Write: 45 * time.Second})
	if srv.ReadTimeout != DefaultTimeouts.Read {
		t.Errorf("ReadTimeout = %v", srv.ReadTimeout)
	}
	if srv.WriteTimeout != 45*time.Second {
		t.Errorf("WriteTimeout = %v", srv.WriteTimeout)
	}
	if srv.IdleTimeout != DefaultTimeouts.Idle {
		t.Errorf("IdleTimeout = %v", srv.IdleTimeout)
	}
	if srv.ReadHeaderTimeout != 5*time.Second {
		t.Errorf("ReadHeaderTimeout = %v", srv.ReadHeaderTimeout)
	}
}
