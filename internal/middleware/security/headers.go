package security

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Policy is the set of response headers every page carries. Empty values are
// not sent.
type Policy struct {
	ContentSecurity []string
	FrameOptions    string
	ContentTypeOpts string
	Referrer        string
	Permissions     string
	OpenerPolicy    string
	ResourcePolicy  string
	HSTSMaxAge      time.Duration
	HSTSSubdomains  bool
}

// DefaultPolicy allows htmx from unpkg. Avatars may be data: URIs or the
// object store's https URLs.
func DefaultPolicy() Policy {
	return Policy{
		ContentSecurity: []string{
			"default-src 'self'",
			"script-src 'self' https://unpkg.com",
			"style-src 'self' 'unsafe-inline'",
			"img-src 'self' data: https:",
			"connect-src 'self'",
			"object-src 'none'",
			"frame-ancestors 'none'",
			"base-uri 'self'",
			"form-action 'self'",
		},
		FrameOptions:    "DENY",
		ContentTypeOpts: "nosniff",
		Referrer:        "strict-origin-when-cross-origin",
		Permissions:     "geolocation=(), microphone=(), camera=(), payment=()",
		OpenerPolicy:    "same-origin",
		ResourcePolicy:  "same-origin",
		HSTSMaxAge:      365 * 24 * time.Hour,
		HSTSSubdomains:  true,
	}
}

func (p Policy) header() http.Header {
	h := http.Header{}
	add := func(name, value string) {
		if value != "" {
			h.Set(name, value)
		}
	}
	add("Content-Security-Policy", strings.Join(p.ContentSecurity, "; "))
	add("X-Frame-Options", p.FrameOptions)
	add("X-Content-Type-Options", p.ContentTypeOpts)
	add("Referrer-Policy", p.Referrer)
	add("Permissions-Policy", p.Permissions)
	add("Cross-Origin-Opener-Policy", p.OpenerPolicy)
	add("Cross-Origin-Resource-Policy", p.ResourcePolicy)
	return h
}

func (p Policy) hsts() string {
	if p.HSTSMaxAge <= 0 {
		return ""
	}
	v := "max-age=" + strconv.FormatInt(int64(p.HSTSMaxAge/time.Second), 10)
	if p.HSTSSubdomains {
		v += "; includeSubDomains"
	}
	return v
}

// Handler sets the policy headers before calling next. HSTS is only sent on
// TLS connections.
func (p Policy) Handler(next http.Handler) http.Handler {
	fixed := p.header()
	hsts := p.hsts()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		for name, values := range fixed {
			h[name] = values
		}
		if hsts != "" && r.TLS != nil {
			h.Set("Strict-Transport-Security", hsts)
		}
		next.ServeHTTP(w, r)
	})
}

// CacheStatic marks responses as immutable for maxAge.
func CacheStatic(maxAge time.Duration, next http.Handler) http.Handler {
	value := "public, max-age=" + strconv.FormatInt(int64(maxAge/time.Second), 10) + ", immutable"
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", value)
		next.ServeHTTP(w, r)
	})
}
