package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"runrate/internal/export"
	applog "runrate/internal/log"
	"runrate/internal/services"
)

func (s *Server) build(r *http.Request) services.Dashboard {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	return s.dashboard.Build(ctx, s.parseQuery(r))
}

// handleDashboard renders the full dashboard page.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded",
			applog.FieldPath, r.URL.Path,
			applog.FieldComponent, applog.ComponentTemplate)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	d := s.build(r)
	if d.Notice != nil {
		s.logger.WarnContext(r.Context(), "Dashboard rendered with notice",
			applog.FieldNoticeKind, d.Notice.Kind,
			applog.FieldSource, d.Source)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "dashboard.html", d); err != nil {
		s.structuredLogger.LogError(r.Context(), "Dashboard template execution failed", err,
			applog.ComponentTemplate, applog.OpRender, applog.NewFields())
		http.Error(w, "render failed", http.StatusInternalServerError)
	}
}

// handleRange returns the start-date filtered table partial for htmx.
func (s *Server) handleRange(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if s.templates == nil {
		_, _ = w.Write([]byte(`<section id="range-results"><div class="placeholder">Templates not loaded</div></section>`))
		return
	}

	d := s.build(r)
	s.logger.DebugContext(r.Context(), "Range filter applied",
		applog.FieldRangeFrom, d.Range.From.String(),
		applog.FieldRangeTo, d.Range.To.String(),
		applog.FieldRows, d.Range.Count)

	if err := s.templates.ExecuteTemplate(w, "range_results", d); err != nil {
		s.structuredLogger.LogError(r.Context(), "Range template execution failed", err,
			applog.ComponentTemplate, applog.OpRender, applog.NewFields())
		_, _ = w.Write([]byte(`<section id="range-results"><div class="placeholder">Error rendering contracts</div></section>`))
	}
}

type summaryResponse struct {
	Title              string           `json:"title"`
	Source             string           `json:"source"`
	AsOf               string           `json:"as_of"`
	LoadedAt           string           `json:"loaded_at,omitempty"`
	HasData            bool             `json:"has_data"`
	RunRate            string           `json:"run_rate"`
	ActiveCount        int              `json:"active_count"`
	TotalContracts     int              `json:"total_contracts"`
	TotalBookedRevenue string           `json:"total_booked_revenue"`
	FirstStart         string           `json:"first_start,omitempty"`
	LastStart          string           `json:"last_start,omitempty"`
	Notice             *services.Notice `json:"notice,omitempty"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	d := s.build(r)
	resp := summaryResponse{
		Title:              d.Title,
		Source:             d.Source,
		AsOf:               d.GeneratedAt.Format("2006-01-02"),
		HasData:            d.HasData,
		RunRate:            d.RunRate().StringFixed(2),
		ActiveCount:        d.Summary.ActiveCount,
		TotalContracts:     d.Summary.TotalContracts,
		TotalBookedRevenue: d.Summary.TotalBookedRevenue.StringFixed(2),
		FirstStart:         d.Summary.FirstStart.String(),
		LastStart:          d.Summary.LastStart.String(),
		Notice:             d.Notice,
	}
	if !d.LoadedAt.IsZero() {
		resp.LoadedAt = d.LoadedAt.Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, resp)
}

type chartSeries struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

type chartsResponse struct {
	TopMonthly     chartSeries `json:"top_monthly"`
	StartsPerMonth chartSeries `json:"starts_per_month"`
	TopBooked      chartSeries `json:"top_booked"`
}

// handleCharts returns the three Chart.js series.
func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	d := s.build(r)
	resp := chartsResponse{
		TopMonthly:     chartSeries{Labels: []string{}, Values: []float64{}},
		StartsPerMonth: chartSeries{Labels: []string{}, Values: []float64{}},
		TopBooked:      chartSeries{Labels: []string{}, Values: []float64{}},
	}
	for _, c := range d.Summary.TopMonthly {
		resp.TopMonthly.Labels = append(resp.TopMonthly.Labels, c.Name)
		resp.TopMonthly.Values = append(resp.TopMonthly.Values, c.Amount.Round(2).InexactFloat64())
	}
	for _, m := range d.Summary.StartsPerMonth {
		resp.StartsPerMonth.Labels = append(resp.StartsPerMonth.Labels, m.Month)
		resp.StartsPerMonth.Values = append(resp.StartsPerMonth.Values, float64(m.Count))
	}
	for _, c := range d.Summary.TopBooked {
		resp.TopBooked.Labels = append(resp.TopBooked.Labels, c.Name)
		resp.TopBooked.Values = append(resp.TopBooked.Values, c.Amount.Round(2).InexactFloat64())
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleReload drops the cached dataset so the next request reads the source.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	s.dashboard.Reload("")
	s.logger.InfoContext(r.Context(), "Contracts cache invalidated",
		applog.FieldOperation, applog.OpReload,
		applog.FieldSource, s.dashboard.SourceKey())
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "reloading", "source": s.dashboard.SourceKey()})
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	s.handleExport(w, r, "xlsx", export.ContentTypeXLSX, s.xlsx.Generate)
}

func (s *Server) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	s.handleExport(w, r, "pdf", export.ContentTypePDF, s.pdf.Generate)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request, ext, contentType string, generate func(services.Dashboard) ([]byte, error)) {
	d := s.build(r)
	data, err := generate(d)
	if err != nil {
		s.structuredLogger.LogError(r.Context(), "Export failed", err,
			applog.ComponentExport, applog.OpExport,
			applog.NewFields().WithOperation(applog.OpExport))
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	s.logger.InfoContext(r.Context(), "Dashboard exported",
		applog.FieldFormat, ext,
		applog.FieldRows, d.Summary.TotalContracts,
		"bytes", len(data))

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.Filename(d, ext)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, s.securityDetector.ExtractClientIP(r),
		applog.FieldPath, r.URL.Path)
	http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).String(),
	})
}

// handleReady reports whether templates are loaded and the last contract
// load succeeded.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if ok, err := s.dashboard.Ready(); !ok {
		checks["source"] = fmt.Sprintf("failed: %v", err)
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["source"] = "ok"
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"source":    s.dashboard.SourceKey(),
		"checks":    checks,
	})
}

// handleMetrics provides request and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	securityMetrics := s.securityDetector.GetMetrics()
	rateLimitMetrics := s.exportLimiter.GetMetrics()
	traceMetrics := s.traceMiddleware.GetMetrics()

	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "# HELP http_requests_total Total number of HTTP requests\n")
	fmt.Fprintf(w, "# TYPE http_requests_total counter\n")
	fmt.Fprintf(w, "http_requests_total %d\n\n", traceMetrics.TotalRequests)

	fmt.Fprintf(w, "# HELP http_server_errors_total Responses with a 5xx status\n")
	fmt.Fprintf(w, "# TYPE http_server_errors_total counter\n")
	fmt.Fprintf(w, "http_server_errors_total %d\n\n", traceMetrics.ServerErrors)

	fmt.Fprintf(w, "# HELP rate_limit_hits_total Total rate limit hits\n")
	fmt.Fprintf(w, "# TYPE rate_limit_hits_total counter\n")
	fmt.Fprintf(w, "rate_limit_hits_total %d\n\n", rateLimitMetrics.TotalHits)

	fmt.Fprintf(w, "# HELP suspicious_requests_total Total suspicious requests detected\n")
	fmt.Fprintf(w, "# TYPE suspicious_requests_total counter\n")
	fmt.Fprintf(w, "suspicious_requests_total %d\n\n", securityMetrics.SuspiciousRequests)

	fmt.Fprintf(w, "# HELP runrate_cached_sources Contract snapshots held in memory\n")
	fmt.Fprintf(w, "# TYPE runrate_cached_sources gauge\n")
	fmt.Fprintf(w, "runrate_cached_sources %d\n\n", s.dashboard.CachedSources())

	fmt.Fprintf(w, "# HELP uptime_seconds Application uptime in seconds\n")
	fmt.Fprintf(w, "# TYPE uptime_seconds gauge\n")
	fmt.Fprintf(w, "uptime_seconds %.0f\n", time.Since(s.startedAt).Seconds())
}
