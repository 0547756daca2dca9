package httpapi

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	goahttp "goa.design/goa/v3/http"
	"golang.org/x/time/rate"

	"lavishtravels/internal/logger"
	"lavishtravels/internal/metrics"
)

const (
	clientIdleTTL        = 10 * time.Minute
	clientCleanupPeriod  = 5 * time.Minute
	rateLimitExceededMsg = "Rate limit exceeded. Please try again later."
)

// RateLimiter limits requests per client IP with a token bucket per client.
// Idle clients expire from the table after clientIdleTTL.
type RateLimiter struct {
	perMinute int
	trusted   []*net.IPNet
	clients   *gocache.Cache
	mu        sync.Mutex
}

// NewRateLimiter creates a limiter allowing perMinute requests per client.
// Zero or less disables limiting. trustedProxies lists the IPs or CIDR ranges
// whose X-Forwarded-For header is believed; invalid entries are ignored.
func NewRateLimiter(perMinute int, trustedProxies []string) *RateLimiter {
	return &RateLimiter{
		perMinute: perMinute,
		trusted:   parseTrustedProxies(trustedProxies),
		clients:   gocache.New(clientIdleTTL, clientCleanupPeriod),
	}
}

// Allow reports whether the client may make a request now.
func (l *RateLimiter) Allow(client string) bool {
	if l.perMinute <= 0 {
		return true
	}

	l.mu.Lock()
	var limiter *rate.Limiter
	if v, ok := l.clients.Get(client); ok {
		limiter = v.(*rate.Limiter)
	} else {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(l.perMinute)), l.perMinute)
	}
	// refresh the idle expiry
	l.clients.SetDefault(client, limiter)
	l.mu.Unlock()

	return limiter.Allow()
}

// Wrap rejects requests over the limit with 429.
func (l *RateLimiter) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := l.clientIP(r)
		if !l.Allow(ip) {
			metrics.RecordRateLimited()
			logger.From(r.Context()).Warn("rate limit exceeded",
				logger.Component("ratelimit"),
				logger.String("client_ip", ip),
			)
			enc := goahttp.ResponseEncoder(r.Context(), w)
			w.Header().Set("Retry-After", "60")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = enc.Encode(map[string]string{"error": rateLimitExceededMsg})
			return
		}
		next(w, r)
	}
}

// clientIP returns the connecting peer's address. When the peer is a trusted
// proxy, X-Forwarded-For is walked from the right and the first hop that is
// not itself a trusted proxy is used.
func (l *RateLimiter) clientIP(r *http.Request) string {
	peer, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		peer = r.RemoteAddr
	}
	if !l.isTrusted(peer) {
		return peer
	}

	hops := strings.Split(strings.Join(r.Header.Values("X-Forwarded-For"), ","), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if net.ParseIP(hop) == nil {
			// a garbled hop cannot be attributed further
			break
		}
		if !l.isTrusted(hop) {
			return hop
		}
	}
	return peer
}

func (l *RateLimiter) isTrusted(addr string) bool {
	ip := net.ParseIP(addr)
	if ip == nil {
		return false
	}
	for _, n := range l.trusted {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

func parseTrustedProxies(entries []string) []*net.IPNet {
	nets := make([]*net.IPNet, 0, len(entries))
	for _, e := range entries {
		if _, n, err := net.ParseCIDR(e); err == nil {
			nets = append(nets, n)
			continue
		}
		ip := net.ParseIP(e)
		if ip == nil {
			continue
		}
		bits := 128
		if ip4 := ip.To4(); ip4 != nil {
			ip, bits = ip4, 32
		}
		nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
	}
	return nets
}
