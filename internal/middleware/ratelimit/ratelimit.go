// Package ratelimit caps how many state-changing requests one client IP may
// send per minute.
package ratelimit

import (
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

const window = time.Minute

type Config struct {
	RequestsPerMinute int
	// CleanupInterval is how often idle clients are forgotten.
	CleanupInterval time.Duration
	// Methods counted against the budget. Everything else passes through.
	Methods []string
}

// DefaultConfig allows 60 POST or DELETE requests per minute.
func DefaultConfig() Config {
	return Config{
		RequestsPerMinute: 60,
		CleanupInterval:   5 * time.Minute,
		Methods:           []string{http.MethodPost, http.MethodDelete},
	}
}

type bucket struct {
	start time.Time
	used  int
}

// Limiter counts requests per client in fixed one-minute windows starting at
// the client's first request.
type Limiter struct {
	budget  int
	methods map[string]struct{}
	now     func() time.Time

	mu       sync.Mutex
	buckets  map[string]*bucket
	rejected atomic.Int64

	done     chan struct{}
	stopOnce sync.Once
}

// NewLimiter fills zero fields from DefaultConfig and starts the idle-client
// sweep. Stop releases it.
func NewLimiter(cfg Config) *Limiter {
	def := DefaultConfig()
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = def.RequestsPerMinute
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = def.CleanupInterval
	}
	if len(cfg.Methods) == 0 {
		cfg.Methods = def.Methods
	}

	l := &Limiter{
		budget:  cfg.RequestsPerMinute,
		methods: make(map[string]struct{}, len(cfg.Methods)),
		now:     time.Now,
		buckets: make(map[string]*bucket),
		done:    make(chan struct{}),
	}
	for _, m := range cfg.Methods {
		l.methods[m] = struct{}{}
	}
	go l.sweepEvery(cfg.CleanupInterval)
	return l
}

// Allow spends one request from ip's budget. When the budget is gone it
// returns false and how long until the window reopens.
func (l *Limiter) Allow(ip string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[ip]
	if !ok || now.Sub(b.start) >= window {
		l.buckets[ip] = &bucket{start: now, used: 1}
		return true, 0
	}
	if b.used >= l.budget {
		l.rejected.Add(1)
		return false, b.start.Add(window).Sub(now)
	}
	b.used++
	return true, 0
}

// Limits reports whether method is counted.
func (l *Limiter) Limits(method string) bool {
	_, ok := l.methods[method]
	return ok
}

func (l *Limiter) sweepEvery(interval time.Duration) {
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for {
		select {
		case <-l.done:
			return
		case <-tick.C:
			l.forgetIdle()
		}
	}
}

// forgetIdle drops clients whose window closed more than one window ago.
func (l *Limiter) forgetIdle() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-2 * window)
	dropped := 0
	for ip, b := range l.buckets {
		if b.start.Before(cutoff) {
			delete(l.buckets, ip)
			dropped++
		}
	}
	return dropped
}

func (l *Limiter) ActiveClients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// Stats is a snapshot for the readiness endpoint.
type Stats struct {
	Rejected int64
	Clients  int
}

func (l *Limiter) Stats() Stats {
	return Stats{Rejected: l.rejected.Load(), Clients: l.ActiveClients()}
}

// Stop ends the sweep. Further calls do nothing.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.done) })
}

// Middleware answers over-budget requests with 429 and a Retry-After header.
// reject, when set, writes the body; otherwise a plain-text message is sent.
func (l *Limiter) Middleware(clientIP func(*http.Request) string, reject http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Limits(r.Method) {
				next.ServeHTTP(w, r)
				return
			}
			ok, wait := l.Allow(clientIP(r))
			if ok {
				next.ServeHTTP(w, r)
				return
			}

			secs := int((wait + time.Second - 1) / time.Second)
			if secs < 1 {
				secs = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			if reject != nil {
				reject(w, r)
				return
			}
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
		})
	}
}
