package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/frahmantamala/epic-events-crm/internal"
	"github.com/frahmantamala/epic-events-crm/internal/transport"
)

// IPRateLimiter keeps a token bucket per client IP. It sits in front of the
// login route as a coarse transport limit; the per-identity lockout is
// enforced by the auth guard.
type IPRateLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	limit    rate.Limit
	burst    int
	ttl      time.Duration
	now      func() time.Time
	base     *transport.BaseHandler
	lastScan time.Time
}

type bucket struct {
	limiter *rate.Limiter
	seen    time.Time
}

func NewIPRateLimiter(perSecond float64, burst int, logger *slog.Logger) *IPRateLimiter {
	return &IPRateLimiter{
		buckets: make(map[string]*bucket),
		limit:   rate.Limit(perSecond),
		burst:   burst,
		ttl:     5 * time.Minute,
		now:     time.Now,
		base:    transport.NewBaseHandler(logger),
	}
}

// Allow reports whether the client at ip may make another request now.
func (l *IPRateLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.evict(now)

	b, ok := l.buckets[ip]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[ip] = b
	}
	b.seen = now
	return b.limiter.AllowN(now, 1)
}

// evict drops idle buckets at most once per ttl. Caller holds mu.
func (l *IPRateLimiter) evict(now time.Time) {
	if now.Sub(l.lastScan) < l.ttl {
		return
	}
	l.lastScan = now
	for ip, b := range l.buckets {
		if now.Sub(b.seen) > l.ttl {
			delete(l.buckets, ip)
		}
	}
}

func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(clientIP(r)) {
			w.Header().Set("Retry-After", "1")
			l.base.WriteAppError(w, internal.NewRateLimitedError("Too many requests"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP keys buckets on the peer address only. Forwarding headers are
// client controlled and would let a caller pick a fresh bucket per request.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
