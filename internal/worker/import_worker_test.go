package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type fakeImporter struct {
	calls atomic.Int32
	err   error
}

func (f *fakeImporter) Import(ctx context.Context) (int, error) {
	f.calls.Add(1)
	if f.err != nil {
		return 0, f.err
	}
	return 3, nil
}

func TestRunOnce(t *testing.T) {
	imp := &fakeImporter{}
	rows, err := NewImportWorker(imp, 0).RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if rows != 3 {
		t.Errorf("rows = %d, want 3", rows)
	}
}

func TestRunSingleShotReturnsError(t *testing.T) {
	boom := errors.New("boom")
	imp := &fakeImporter{err: boom}
	if err := NewImportWorker(imp, 0).Run(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if got := imp.calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
}

func TestRunRepeatsUntilCancelled(t *testing.T) {
	imp := &fakeImporter{err: errors.New("transient")}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- NewImportWorker(imp, 5*time.Millisecond).Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for imp.calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("only %d imports before deadline", imp.calls.Load())
		case <-time.After(time.Millisecond):
		}
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v after cancel", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
