package requestinfo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientIP(t *testing.T) {
	cases := []struct {
		name   string
		xff    string
		xrip   string
		remote string
		want   string
	}{
		{"xff first valid", "garbage, 203.0.113.7, 10.0.0.1", "", "10.0.0.2:5555", "203.0.113.7"},
		{"xff wins over real ip", "198.51.100.1", "198.51.100.2", "10.0.0.2:5555", "198.51.100.1"},
		{"real ip", "", " 198.51.100.2 ", "10.0.0.2:5555", "198.51.100.2"},
		{"invalid headers fall through", "nope", "nope", "192.0.2.9:1234", "192.0.2.9"},
		{"remote without port", "", "", "192.0.2.10", "192.0.2.10"},
		{"ipv6 remote", "", "", "[2001:db8::1]:443", "2001:db8::1"},
		{"nothing usable", "", "", "pipe", UnknownIP},
		{"forwarded header trusted over peer", "198.51.100.99", "", "203.0.113.50:443", "198.51.100.99"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tc.remote
			if tc.xff != "" {
				r.Header.Set("X-Forwarded-For", tc.xff)
			}
			if tc.xrip != "" {
				r.Header.Set("X-Real-Ip", tc.xrip)
			}
			if got := clientIP(r); got != tc.want {
				t.Fatalf("clientIP = %q; want %q", got, tc.want)
			}
		})
	}
}

func TestEnrichStoresInfo(t *testing.T) {
	var got *RequestInfo
	h := Enrich(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))

	r := httptest.NewRequest(http.MethodPost, "/api/contact", nil)
	r.RemoteAddr = "192.0.2.1:4000"
	r.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.6422.60 Safari/537.36")
	h.ServeHTTP(httptest.NewRecorder(), r)

	if got == nil {
		t.Fatal("RequestInfo missing from context")
	}
	if got.ClientIP != "192.0.2.1" {
		t.Errorf("ClientIP = %q", got.ClientIP)
	}
	if got.UA.Browser != "Chrome" || got.UA.Device != "Desktop" || got.UA.IsBot {
		t.Errorf("UA = %+v", got.UA)
	}
	if got.Geo != (Geo{}) {
		t.Errorf("Geo = %+v; want empty without database", got.Geo)
	}
	if got.Timestamp.IsZero() {
		t.Error("Timestamp not set")
	}
}

func TestClientIPWithoutMiddleware(t *testing.T) {
	if got := ClientIP(context.Background()); got != UnknownIP {
		t.Fatalf("ClientIP = %q; want %q", got, UnknownIP)
	}
	if FromContext(context.Background()).LogFields() != nil {
		t.Fatal("nil info must have no log fields")
	}
}

func TestInitGeoEmptyPathDisables(t *testing.T) {
	if err := InitGeo(""); err != nil {
		t.Fatalf("InitGeo(\"\") = %v", err)
	}
	if err := InitGeo("/does/not/exist.mmdb"); err == nil {
		t.Fatal("expected error for missing database")
	}
}
