//
//  internal/requestinfo/requestinfo.go
//
//  Lightweight types and helpers that collect per-request metadata
//  (client IP, user-agent fingerprint, geolocation hints, and timestamp).
//  These structs are inert.  They contain no pointers to database
//  handles or large buffers, so they are safe to log or JSON-encode.
//
//  Dependencies
//  • github.com/avct/uasurfer          (UA parsing)
//  • github.com/oschwald/geoip2-golang (MaxMind lookup, optional)
//

package requestinfo

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	surfer "github.com/avct/uasurfer"
	"github.com/oschwald/geoip2-golang"
)

// UnknownIP is reported when no address can be resolved.
const UnknownIP = "unknown"

//
//  -----------------------------
//  Struct definitions
//  -----------------------------
//

// UA holds the parsed user-agent properties.
//
// Example (Chrome on macOS):
//
//	Browser "Chrome", Version "125.0.6422", OS "MacOSX", Device "Desktop"
type UA struct {
	Raw       string
	Browser   string
	Version   string
	OS        string
	OSVersion string
	Device    string // Desktop, Mobile, Tablet, Other
	IsBot     bool
}

// Geo holds IP-based geolocation hints.  Both fields are empty when no
// database is loaded or the address has no match.
type Geo struct {
	CountryISO string
	City       string
}

// RequestInfo is stored in the request context by Enrich.
type RequestInfo struct {
	ClientIP  string
	UA        UA
	Geo       Geo
	Timestamp time.Time
}

// LogFields flattens the hints into zap key/value pairs.
func (ri *RequestInfo) LogFields() []any {
	if ri == nil {
		return nil
	}
	f := []any{
		"browser", ri.UA.Browser,
		"device", ri.UA.Device,
		"bot", ri.UA.IsBot,
	}
	if ri.Geo.CountryISO != "" {
		f = append(f, "country", ri.Geo.CountryISO)
	}
	if ri.Geo.City != "" {
		f = append(f, "city", ri.Geo.City)
	}
	return f
}

//
//  -----------------------------
//  Package-level state
//  -----------------------------
//

// geoReader is a singleton MaxMind handle.  It is safe for concurrent
// reads, which is all we ever perform.
var geoReader atomic.Pointer[geoip2.Reader]

// InitGeo opens a GeoLite2-City database.  An empty path disables geo
// lookups.
func InitGeo(dbPath string) error {
	if dbPath == "" {
		return nil
	}
	r, err := geoip2.Open(dbPath)
	if err != nil {
		return fmt.Errorf("requestinfo: open GeoLite2 DB: %w", err)
	}
	if old := geoReader.Swap(r); old != nil {
		_ = old.Close()
	}
	return nil
}

// CloseGeo releases the database opened by InitGeo.
func CloseGeo() {
	if r := geoReader.Swap(nil); r != nil {
		_ = r.Close()
	}
}

//
//  -----------------------------
//  Context helpers
//  -----------------------------
//

type ctxKey struct{} // unexported, collision-proof

// FromContext returns the pointer previously stored by Enrich.
// It returns nil if the middleware has not run.
func FromContext(ctx context.Context) *RequestInfo {
	v, _ := ctx.Value(ctxKey{}).(*RequestInfo)
	return v
}

// ClientIP returns the resolved client address, or UnknownIP.
func ClientIP(ctx context.Context) string {
	if ri := FromContext(ctx); ri != nil && ri.ClientIP != "" {
		return ri.ClientIP
	}
	return UnknownIP
}

//
//  -----------------------------
//  Internal helpers
//  -----------------------------
//

// parseUA converts a raw header into our UA struct using uasurfer.
func parseUA(raw string) UA {
	u := surfer.Parse(raw)

	info := UA{
		Raw:       raw,
		Browser:   strings.TrimPrefix(u.Browser.Name.String(), "Browser"),
		Version:   versionToString(u.Browser.Version),
		OS:        strings.TrimPrefix(u.OS.Name.String(), "OS"),
		OSVersion: versionToString(u.OS.Version),
		IsBot:     u.IsBot(),
	}

	switch u.DeviceType {
	case surfer.DeviceComputer:
		info.Device = "Desktop"
	case surfer.DeviceTablet:
		info.Device = "Tablet"
	case surfer.DevicePhone, surfer.DeviceWearable:
		info.Device = "Mobile"
	default:
		info.Device = "Other"
	}
	return info
}

// versionToString renders a version in dotted form while trimming trailing
// zeros, e.g. 17.0.0 → "17", 17.3.0 → "17.3", 17.3.1 → "17.3.1".
func versionToString(v surfer.Version) string {
	switch {
	case v.Major == 0 && v.Minor == 0 && v.Patch == 0:
		return ""
	case v.Patch != 0:
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	case v.Minor != 0:
		return fmt.Sprintf("%d.%d", v.Major, v.Minor)
	}
	return strconv.Itoa(int(v.Major))
}

// lookupGeo returns best-effort Geo data using the global reader.
func lookupGeo(ip string) Geo {
	r := geoReader.Load()
	parsed := net.ParseIP(ip)
	if r == nil || parsed == nil {
		return Geo{}
	}
	rec, err := r.City(parsed)
	if err != nil {
		return Geo{}
	}
	return Geo{
		CountryISO: rec.Country.IsoCode,
		City:       rec.City.Names["en"],
	}
}
