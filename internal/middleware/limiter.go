package middleware

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"agrishop-be/internal/auth"

	"golang.org/x/time/rate"
)

// Tier is a token bucket policy.
type Tier struct {
	Name  string
	Limit rate.Limit
	Burst int
}

var (
	// TierStrict guards checkout and login.
	TierStrict = Tier{Name: "strict", Limit: rate.Limit(2), Burst: 5}
	// TierGeneral applies to everything else.
	TierGeneral = Tier{Name: "general", Limit: rate.Limit(10), Burst: 20}
	// TierAdmin applies to authenticated admin requests.
	TierAdmin = Tier{Name: "admin", Limit: rate.Limit(50), Burst: 100}
)

const visitorTTL = 3 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one bucket per client and tier.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	resolve  func(*http.Request) Tier
	now      func() time.Time
}

// NewRateLimiter uses resolve to pick the tier of each request.
func NewRateLimiter(resolve func(*http.Request) Tier) *RateLimiter {
	if resolve == nil {
		resolve = func(*http.Request) Tier { return TierGeneral }
	}
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		resolve:  resolve,
		now:      time.Now,
	}
}

// Run evicts idle visitors every minute until ctx is done.
func (l *RateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.cleanup()
		}
	}
}

func (l *RateLimiter) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for key, v := range l.visitors {
		if now.Sub(v.lastSeen) > visitorTTL {
			delete(l.visitors, key)
		}
	}
}

func (l *RateLimiter) limiter(key string, tier Tier) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(tier.Limit, tier.Burst)}
		l.visitors[key] = v
	}
	v.lastSeen = l.now()
	return v.limiter
}

func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tier := l.resolve(r)
		key := clientIdentity(r) + ":" + tier.Name

		if !l.limiter(key, tier).Allow() {
			w.Header().Set("Retry-After", "1")
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIdentity prefers the authenticated admin, then the remote IP.
func clientIdentity(r *http.Request) string {
	if c, ok := auth.ClaimsFrom(r.Context()); ok {
		return "admin:" + c.Username
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	return "ip:" + ip
}
