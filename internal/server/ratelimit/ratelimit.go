// Package ratelimit throttles API clients with one token bucket per client and route.
package ratelimit

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Rule limits requests matching Method and Path. A Path ending in "/" matches by prefix.
type Rule struct {
	Method string
	Path   string
	Limit  int           // requests per Window; 0 or less means unlimited
	Window time.Duration
	Burst  int // bucket capacity, defaults to Limit
}

// Config holds rate limiting configuration
type Config struct {
	Enabled       bool
	DefaultLimit  int
	DefaultWindow time.Duration
	// IdleTTL drops buckets not used for this long; 0 keeps them forever
	IdleTTL time.Duration
	// Exempt lists client IDs that are never limited
	Exempt map[string]bool
	Rules  []Rule
}

// DefaultConfig limits the pipeline endpoints more tightly than reads
func DefaultConfig() Config {
	return Config{
		Enabled:       true,
		DefaultLimit:  600,
		DefaultWindow: time.Minute,
		IdleTTL:       time.Hour,
		Rules: []Rule{
			{Method: "POST", Path: "/candidates", Limit: 60, Window: time.Minute, Burst: 10},
			{Method: "POST", Path: "/candidates/stream", Limit: 60, Window: time.Minute, Burst: 10},
			{Method: "POST", Path: "/extract", Limit: 120, Window: time.Minute, Burst: 20},
			{Method: "DELETE", Path: "/candidates/", Limit: 30, Window: time.Minute, Burst: 5},
		},
	}
}

// Info describes the limit applied to one request
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// bucket pairs a token bucket with its last use for idle pruning
type bucket struct {
	limiter  *rate.Limiter
	lastUsed time.Time
}

// Limiter tracks buckets for every client and route. Safe for concurrent use.
type Limiter struct {
	cfg     Config
	now     func() time.Time
	mu      sync.Mutex
	buckets map[string]*bucket
}

// NewLimiter creates a limiter; buckets idle for longer than IdleTTL are pruned lazily
func NewLimiter(cfg Config) *Limiter {
	return &Limiter{
		cfg:     cfg,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
}

// Allow consumes a token for clientID on method and path
func (l *Limiter) Allow(clientID, method, path string) Info {
	if !l.cfg.Enabled || l.cfg.Exempt[clientID] {
		return Info{Allowed: true}
	}

	rule := l.match(method, path)
	if rule.Limit <= 0 || rule.Window <= 0 {
		return Info{Allowed: true}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.prune(now)

	key := clientID + " " + rule.Method + " " + rule.Path
	b, ok := l.buckets[key]
	if !ok {
		burst := rule.Burst
		if burst <= 0 {
			burst = rule.Limit
		}
		every := rate.Limit(float64(rule.Limit) / rule.Window.Seconds())
		b = &bucket{limiter: rate.NewLimiter(every, burst)}
		l.buckets[key] = b
	}
	b.lastUsed = now

	lim := b.limiter
	info := Info{
		Allowed: lim.AllowN(now, 1),
		Limit:   rule.Limit,
	}
	tokens := lim.TokensAt(now)
	info.Remaining = max(0, int(tokens))
	info.ResetTime = now
	if missing := float64(lim.Burst()) - tokens; missing > 0 {
		info.ResetTime = now.Add(time.Duration(missing / float64(lim.Limit()) * float64(time.Second)))
	}
	if !info.Allowed {
		// time until the next whole token; the reservation is only a probe
		r := lim.ReserveN(now, 1)
		info.RetryAfter = r.DelayFrom(now)
		r.CancelAt(now)
	}
	return info
}

// match returns the rule for a request; health checks are never limited
func (l *Limiter) match(method, path string) Rule {
	if method == "GET" && path == "/health" {
		return Rule{}
	}
	for _, r := range l.cfg.Rules {
		if r.Method == method && r.Path == path {
			return r
		}
	}
	for _, r := range l.cfg.Rules {
		if r.Method == method && strings.HasSuffix(r.Path, "/") && strings.HasPrefix(path, r.Path) {
			return r
		}
	}
	return Rule{Method: "*", Path: "*", Limit: l.cfg.DefaultLimit, Window: l.cfg.DefaultWindow}
}

func (l *Limiter) prune(now time.Time) {
	if l.cfg.IdleTTL <= 0 {
		return
	}
	for key, b := range l.buckets {
		if now.Sub(b.lastUsed) > l.cfg.IdleTTL {
			delete(l.buckets, key)
		}
	}
}
