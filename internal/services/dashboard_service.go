package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"runrate/internal/amqp"
	"runrate/internal/cache"
	"runrate/internal/core"
	applog "runrate/internal/log"
	"runrate/internal/report"
	"runrate/internal/source"
)

// NoticeLevel is the severity of a load problem shown on the dashboard.
type NoticeLevel string

const (
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// NoticeKind classifies load problems.
type NoticeKind string

const (
	KindMissingFile NoticeKind = "missing_file"
	KindParseError  NoticeKind = "parse_error"
	KindNoData      NoticeKind = "no_data"
)

// Notice is a recoverable load problem. The dashboard still renders with an
// empty dataset.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Kind    NoticeKind  `json:"kind"`
	Message string      `json:"message"`
}

// DashboardQuery carries the interactive parameters of one request. Zero
// dates mean "use the dataset bounds".
type DashboardQuery struct {
	From core.Date
	To   core.Date
}

// RangeView is the start-date re-filter result.
type RangeView struct {
	Min       core.Date
	Max       core.Date
	From      core.Date
	To        core.Date
	Contracts []core.Contract
	Count     int
}

// Dashboard is the complete view model for one request.
type Dashboard struct {
	Title       string
	LogoURL     string
	Source      string
	GeneratedAt time.Time
	LoadedAt    time.Time
	HasData     bool
	Notice      *Notice
	TopN        int

	Summary report.Summary
	Range   RangeView
}

// RunRate is a convenience accessor for templates and exports.
func (d Dashboard) RunRate() decimal.Decimal { return d.Summary.RunRate }

// DashboardOptions configures DashboardService.
type DashboardOptions struct {
	Title    string
	LogoURL  string
	TopN     int
	Location *time.Location
	Now      func() time.Time
}

// DashboardService runs load, filter, aggregate for every request.
type DashboardService struct {
	reader source.ContractReader
	loader *cache.Loader
	opts   DashboardOptions
	logger *applog.StructuredLogger

	mu      sync.RWMutex
	lastErr error
}

func NewDashboardService(reader source.ContractReader, loader *cache.Loader, logger *applog.StructuredLogger, opts DashboardOptions) *DashboardService {
	if opts.TopN <= 0 {
		opts.TopN = 10
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		logger = applog.NewStructuredLogger(applog.New(applog.DefaultConfig()))
	}
	return &DashboardService{reader: reader, loader: loader, opts: opts, logger: logger}
}

// SourceKey identifies the configured contract source.
func (s *DashboardService) SourceKey() string { return s.reader.Key() }

// Build produces the dashboard for q. Load failures become a Notice; Build
// itself never fails.
func (s *DashboardService) Build(ctx context.Context, q DashboardQuery) Dashboard {
	now := s.opts.Now().In(s.opts.Location)
	d := Dashboard{
		Title:       s.opts.Title,
		LogoURL:     s.opts.LogoURL,
		Source:      s.reader.Key(),
		GeneratedAt: now,
		TopN:        s.opts.TopN,
	}

	ds, err := s.loader.Load(ctx, s.reader)
	s.recordAttempt(err)
	if err != nil {
		d.Notice = noticeFor(err)
		s.logger.LogError(ctx, "Contract load failed", err, applog.ComponentReport, applog.OpLoad,
			applog.NewFields().WithOperation(applog.OpLoad))
		return d
	}
	d.LoadedAt = ds.LoadedAt

	if len(ds.Contracts) == 0 {
		d.Notice = &Notice{Level: NoticeWarning, Kind: KindNoData, Message: "No data available. Check the data source path and format."}
		return d
	}

	d.HasData = true
	d.Summary = report.Summarize(ds.Contracts, now, s.opts.TopN)
	d.Range = buildRange(ds.Contracts, d.Summary.FirstStart, d.Summary.LastStart, q)
	return d
}

func buildRange(all []core.Contract, lower, upper core.Date, q DashboardQuery) RangeView {
	from, to := report.ClampRange(q.From, q.To, lower, upper)
	filtered := report.StartedBetween(all, from, to)
	return RangeView{
		Min:       lower,
		Max:       upper,
		From:      from,
		To:        to,
		Contracts: filtered,
		Count:     len(filtered),
	}
}

func noticeFor(err error) *Notice {
	switch {
	case source.IsNotFound(err):
		return &Notice{Level: NoticeWarning, Kind: KindMissingFile, Message: "Data source not found: " + err.Error()}
	case source.IsParseError(err):
		return &Notice{Level: NoticeError, Kind: KindParseError, Message: "Could not load contracts: " + err.Error()}
	default:
		return &Notice{Level: NoticeError, Kind: KindParseError, Message: "Could not load contracts: " + err.Error()}
	}
}

func (s *DashboardService) recordAttempt(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
}

// Ready reports whether the most recent load succeeded. A missing source is
// not ready either. Before the first load it reports true.
func (s *DashboardService) Ready() (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr == nil, s.lastErr
}

// CachedSources reports how many source snapshots the loader holds.
func (s *DashboardService) CachedSources() int { return s.loader.CachedSources() }

// Reload drops the cached dataset so the next Build reads the source again.
func (s *DashboardService) Reload(key string) bool {
	if key != "" && key != s.reader.Key() {
		return false
	}
	s.loader.Invalidate(s.reader.Key())
	return true
}

// HandleReload is the amqp.ReloadHandler for the dashboard process.
func (s *DashboardService) HandleReload(ctx context.Context, msg *amqp.ReloadMessage) error {
	if s.Reload(msg.Key) {
		slog.InfoContext(ctx, "Contracts cache invalidated", "component", applog.ComponentAMQP, "source", msg.Key, "rows", msg.Rows)
	} else {
		slog.DebugContext(ctx, "Reload for another source ignored", "component", applog.ComponentAMQP, "source", msg.Key)
	}
	return nil
}
