// internal/requestinfo/requestinfo.go
//
// Per-request metadata used for session audit logging: user-agent
// fingerprint, client IP, and best-effort geolocation.  The structs are
// inert—no handles, no large buffers—so they are safe to log or
// JSON-encode.

package requestinfo

import (
	"context"
	"net"
	"net/url"
	"sync"
	"time"

	"github.com/oschwald/geoip2-golang"

	"github.com/pocketrocks/pocketrocks/internal/cache"
	"github.com/pocketrocks/pocketrocks/internal/ua"
)

// Geo holds IP-based geolocation hints.  Best-effort; fields may be empty
// when the database has no match or is not configured.
type Geo struct {
	IP         net.IP
	CountryISO string // "US", "CA", "FR", …
	City       string
}

// RequestInfo is attached to the request context by Enrich.
type RequestInfo struct {
	UA        ua.Info
	Geo       Geo
	URL       *url.URL // pointer copy, safe to dereference read-only
	Timestamp time.Time
}

// geoReader is a singleton MaxMind handle, safe for concurrent reads.
// nil when no database is configured; lookups then return only the IP.
var geoReader *geoip2.Reader

// geoCache memoizes lookups per IP; a browser session hammers the service
// from one address, so the hit rate is high.
var (
	geoMu    sync.Mutex
	geoCache = cache.New(4096)
)

// InitGeo opens the GeoLite2-City database at startup.  Auditing works
// without it, so a missing or unreadable file is reported, not fatal.
func InitGeo(dbPath string) error {
	r, err := geoip2.Open(dbPath)
	if err != nil {
		return err
	}
	geoReader = r
	return nil
}

type ctxKey struct{} // unexported, collision-proof

// FromContext returns the pointer previously stored by Enrich, or nil if
// the middleware has not run.
func FromContext(ctx context.Context) *RequestInfo {
	v, _ := ctx.Value(ctxKey{}).(*RequestInfo)
	return v
}

// lookupGeo returns best-effort Geo data using the global reader.
func lookupGeo(ip net.IP) Geo {
	if geoReader == nil || ip == nil {
		return Geo{IP: ip}
	}

	key := ip.String()
	geoMu.Lock()
	if v, ok := geoCache.Get(key); ok {
		geoMu.Unlock()
		g := v.(Geo)
		g.IP = ip
		return g
	}
	geoMu.Unlock()

	rec, err := geoReader.City(ip)
	if err != nil {
		return Geo{IP: ip}
	}
	g := Geo{
		IP:         ip,
		CountryISO: rec.Country.IsoCode,
		City:       rec.City.Names["en"],
	}

	geoMu.Lock()
	geoCache.Add(key, g)
	geoMu.Unlock()
	return g
}
