package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"carteira/internal/auth"
	"carteira/internal/cache"
	"carteira/internal/log"
	"carteira/internal/middleware/ratelimit"
	"carteira/internal/middleware/security"
	"carteira/internal/middleware/trace"
	"carteira/internal/services"
	appweb "carteira/web"
)

// Options are the HTTP-facing settings from config.
type Options struct {
	Addr           string
	CookieSecure   bool
	SessionTTL     time.Duration
	RememberTTL    time.Duration
	UploadMaxBytes int64
}

// Pinger reports whether the data store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the services the handlers call.
type Deps struct {
	Auth   *services.AuthService
	Ledger *services.LedgerService
	Tokens *auth.TokenIssuer
	Store  Pinger
	Logger *log.Logger
	// Caches, when set, sweeps the rate limiter. Register before StartCleanup.
	Caches *cache.Manager
}

type Server struct {
	http.Server
	templates *template.Template
	opts      Options
	auth      *services.AuthService
	ledger    *services.LedgerService
	tokens    *auth.TokenIssuer
	store     Pinger
	logger    *log.Logger
	limiter   *ratelimit.Limiter
	tracer    *trace.Middleware
	detector  *security.Detector
	now       func() time.Time
}

// NewServer configures routes, middleware and templates, returning a
// ready-to-run server.
func NewServer(opts Options, deps Deps) (*Server, error) {
	t, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	if opts.UploadMaxBytes <= 0 {
		opts.UploadMaxBytes = 2 << 20
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		templates: t,
		opts:      opts,
		auth:      deps.Auth,
		ledger:    deps.Ledger,
		tokens:    deps.Tokens,
		store:     deps.Store,
		logger:    logger,
		limiter:   ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		detector:  security.NewDetector(logger),
		now:       time.Now,
	}
	s.tracer = trace.NewMiddleware(logger, s.detector.ClientIP)
	if deps.Caches != nil {
		deps.Caches.Register("rate_limit", s.limiter)
	}

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           s.chain(s.routes()),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

// chain wraps h with trace, context logger, probe detection, security
// headers and the form rate limit, outermost first.
func (s *Server) chain(h http.Handler) http.Handler {
	limited := s.limiter.Middleware(s.detector.ClientIP, func(w http.ResponseWriter, r *http.Request) {
		s.logger.WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldClientIP, s.detector.ClientIP(r), log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
		if isHTMX(r) {
			NewHTMXResponse().
				TriggerErrorNotification("Muitas requisições. Aguarde um minuto.").
				Status(http.StatusTooManyRequests).
				Write(w)
			return
		}
		http.Error(w, "Muitas requisições. Aguarde um minuto.", http.StatusTooManyRequests)
	})(h)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(limited)
	detected := s.detector.Middleware(headers)
	withID := log.RequestIDMiddleware(trace.FromRequest)(detected)
	withLogger := log.Middleware(s.logger)(withID)
	return s.tracer.Middleware(withLogger)
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /login", s.handleLoginPage)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("GET /register", s.handleRegisterPage)
	mux.HandleFunc("POST /register", s.handleRegister)

	protected := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, security.NoStore(s.requireUser(h)))
	}
	protected("POST /logout", s.handleLogout)

	protected("GET /{$}", s.handleHome)
	protected("GET /ui/summary", s.handleSummary)

	protected("GET /transactions/new", s.handleNewTransaction)
	protected("GET /transactions/{id}/edit", s.handleEditTransaction)
	protected("POST /transactions", s.handleCreateTransaction)
	protected("POST /transactions/{id}", s.handleUpdateTransaction)
	protected("DELETE /transactions/{id}", s.handleDeleteTransaction)

	protected("GET /analytics", s.handleAnalytics)
	protected("GET /analytics/export.pdf", s.handleExportPDF)

	protected("GET /notifications", s.handleNotifications)
	protected("POST /notifications/read", s.handleMarkNotificationsRead)
	protected("DELETE /notifications", s.handleClearNotifications)

	protected("GET /profile", s.handleProfile)
	protected("POST /profile/name", s.handleProfileName)
	protected("POST /profile/password", s.handleProfilePassword)
	protected("POST /profile/avatar", s.handleAvatarUpload)
	protected("DELETE /profile/avatar", s.handleAvatarRemove)
	protected("POST /profile/wallpaper", s.handleWallpaper)
	protected("POST /profile/theme", s.handleToggleTheme)
	protected("POST /profile/privacy", s.handleTogglePrivacy)

	protected("POST /categories", s.handleCreateCategory)
	protected("DELETE /categories/{id}", s.handleDeleteCategory)

	return mux
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.store.Ping(ctx); err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			http.Error(w, "store unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Metrics exposes request and limiter counters for logging at shutdown.
func (s *Server) Metrics() (trace.Metrics, ratelimit.Metrics, int64) {
	return s.tracer.GetMetrics(), s.limiter.GetMetrics(), s.detector.SuspiciousCount()
}
