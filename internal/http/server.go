package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"runrate/internal/export"
	applog "runrate/internal/log"
	"runrate/internal/middleware/ratelimit"
	"runrate/internal/middleware/security"
	"runrate/internal/middleware/trace"
	"runrate/internal/services"
	appweb "runrate/web"
)

const requestTimeout = 10 * time.Second

// Options configures the dashboard server.
type Options struct {
	Addr           string
	Logger         *applog.Logger
	ExportLimit    ratelimit.Config
	TrustedProxies []string
}

type Server struct {
	http.Server
	templates *template.Template
	dashboard *services.DashboardService
	xlsx      *export.XLSX
	pdf       *export.PDF

	logger           *applog.Logger
	structuredLogger *applog.StructuredLogger
	securityDetector *security.Detector
	exportLimiter    *ratelimit.Limiter
	traceMiddleware  *trace.Middleware

	startedAt    time.Time
	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(opts Options, dashboard *services.DashboardService) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)
	structured := applog.NewStructuredLogger(logger)

	detector := security.NewDetector()
	for _, cidr := range opts.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring invalid trusted proxy", "cidr", cidr, applog.FieldError, err)
		}
	}

	mux := http.NewServeMux()
	s := &Server{
		templates:        parseTemplates(logger),
		dashboard:        dashboard,
		xlsx:             export.NewXLSX(),
		pdf:              export.NewPDF(),
		logger:           logger,
		structuredLogger: structured,
		securityDetector: detector,
		exportLimiter:    ratelimit.NewLimiter(opts.ExportLimit),
		traceMiddleware:  trace.NewMiddleware(structured, detector.ExtractClientIP),
		startedAt:        time.Now(),
	}

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	limited := s.exportLimiter.Middleware(detector.ExtractClientIP, s.handleRateLimited)

	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.HandleFunc("GET /ui/range", s.handleRange)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/charts", s.handleCharts)
	mux.Handle("POST /api/reload", limited(http.HandlerFunc(s.handleReload)))
	mux.Handle("GET /export/xlsx", limited(http.HandlerFunc(s.handleExportXLSX)))
	mux.Handle("GET /export/pdf", limited(http.HandlerFunc(s.handleExportPDF)))
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	// Outermost first: probe filter, tracing, request-scoped logger, headers.
	var handler http.Handler = mux
	handler = headers.Middleware(handler)
	handler = applog.RequestIDMiddleware(trace.RequestIDFromRequest)(handler)
	handler = applog.Middleware(logger)(handler)
	handler = s.traceMiddleware.Middleware(handler)
	handler = detector.Middleware(handler)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func parseTemplates(logger *applog.Logger) *template.Template {
	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Error("Failed parsing templates",
			applog.FieldError, err,
			applog.FieldComponent, applog.ComponentTemplate)
		return nil
	}
	return t
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.exportLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
