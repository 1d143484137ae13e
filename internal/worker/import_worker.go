package worker

import (
	"context"
	"log/slog"
	"time"
)

// Importer replaces a contract snapshot and reports the number of rows.
// *services.ImportService implements it.
type Importer interface {
	Import(ctx context.Context) (int, error)
}

// ImportWorker runs an Importer once at start and then on every tick.
type ImportWorker struct {
	importer Importer
	interval time.Duration
}

func NewImportWorker(importer Importer, interval time.Duration) *ImportWorker {
	return &ImportWorker{importer: importer, interval: interval}
}

// RunOnce performs a single import.
func (w *ImportWorker) RunOnce(ctx context.Context) (int, error) {
	start := time.Now()
	rows, err := w.importer.Import(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Import failed", "component", "worker", "error", err)
		return 0, err
	}
	slog.InfoContext(ctx, "Import completed",
		"component", "worker",
		"rows", rows,
		"duration_ms", time.Since(start).Milliseconds())
	return rows, nil
}

// Run imports immediately and then every interval until ctx is done. Failed
// imports are logged and retried on the next tick. A non-positive interval
// runs a single import.
func (w *ImportWorker) Run(ctx context.Context) error {
	if _, err := w.RunOnce(ctx); err != nil && w.interval <= 0 {
		return err
	}
	if w.interval <= 0 {
		return nil
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Import worker stopped", "component", "worker")
			return nil
		case <-ticker.C:
			_, _ = w.RunOnce(ctx)
		}
	}
}
