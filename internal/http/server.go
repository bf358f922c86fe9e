package http

import (
	"context"
	"html/template"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/objectstore"
	"fintrack/internal/ports"
	"fintrack/internal/services"
	appweb "fintrack/web"
)

// Deps are the collaborators the handlers call into.
type Deps struct {
	Auth         *services.AuthService
	Dashboard    *services.DashboardService
	Transactions *services.TransactionService
	Profile      *services.ProfileService

	// LocalAvatars serves /avatars/{name}; nil when avatars live elsewhere.
	LocalAvatars *objectstore.Bucket
	// Health is pinged by /readyz; nil means always ready.
	Health     ports.HealthChecker
	Categories []string
}

type Options struct {
	SecureCookie bool
	RateLimit    ratelimit.Config
	Logger       *log.Logger
}

type Server struct {
	http.Server
	templates *template.Template

	auth         *services.AuthService
	dashboard    *services.DashboardService
	transactions *services.TransactionService
	profile      *services.ProfileService
	avatars      *objectstore.Bucket
	health       ports.HealthChecker
	categories   []string
	secureCookie bool

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware
	logger           *log.Logger
	started          time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, deps Deps, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}

	s := &Server{
		auth:         deps.Auth,
		dashboard:    deps.Dashboard,
		transactions: deps.Transactions,
		profile:      deps.Profile,
		avatars:      deps.LocalAvatars,
		health:       deps.Health,
		categories:   deps.Categories,
		secureCookie: opts.SecureCookie,
		rateLimiter:  ratelimit.NewLimiter(opts.RateLimit),
		logger:       logger.WithComponent(log.ComponentHTTP),
		started:      time.Now(),
	}
	s.securityDetector = security.NewDetector(logger)
	s.traceMiddleware = trace.NewMiddleware(logger, s.securityDetector.ExtractClientIP)

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "*.html")
	if err != nil {
		s.logger.Warn("Failed parsing templates", log.FieldError, err, log.FieldComponent, log.ComponentTemplate)
	} else {
		s.templates = t
	}

	mux := http.NewServeMux()

	static := http.StripPrefix("/static/", http.FileServer(http.FS(appweb.StaticFS)))
	mux.Handle("GET /static/", security.CacheStatic(time.Hour, static))

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("/login", s.handleLogin)
	mux.HandleFunc("/signup", s.handleSignUp)
	mux.HandleFunc("POST /logout", s.handleLogout)

	mux.HandleFunc("GET /dashboard", s.handleDashboard)
	mux.HandleFunc("GET /dashboard/chart.png", s.handleChart)
	mux.HandleFunc("GET /ui/transactions", s.handleLedgerPage)

	mux.HandleFunc("GET /dashboard/transactions/new", s.requireUser(s.handleNewTransaction))
	mux.HandleFunc("GET /dashboard/transactions/{id}/edit", s.requireUser(s.handleEditTransaction))
	mux.HandleFunc("POST /transactions", s.handleCreateTransaction)
	mux.HandleFunc("POST /transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /transactions/{id}", s.handleDeleteTransaction)
	mux.HandleFunc("POST /transactions/{id}/delete", s.handleDeleteTransaction)

	mux.HandleFunc("/dashboard/settings", s.requireUser(s.handleSettings))
	mux.HandleFunc("/dashboard/settings/avatar", s.requireUser(s.handleAvatar))
	mux.HandleFunc("GET /avatars/{name}", s.handleAvatarObject)

	policy := security.DefaultPolicy()
	limit := s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, s.onRateLimit)

	var h http.Handler = mux
	h = s.withSession(h)
	h = limit(h)
	h = policy.Handler(h)
	h = s.securityDetector.Middleware(h)
	h = s.traceMiddleware.Middleware(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Shutdown stops background routines and drains the HTTP server. It is safe
// to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.securityDetector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "Too many requests. Please try again in a minute.").
		Notify(NotifyError, "Too many requests").
		Write(w)
}
