package services

import (
	"context"
	"fmt"
	"log/slog"

	"runrate/internal/source"
)

// SnapshotStore is a contract destination that is also readable by key, so
// readers of the same store can be told to reload.
type SnapshotStore interface {
	source.ContractWriter
	Key() string
}

// ReloadPublisher announces a replaced snapshot. *amqp.Client implements it.
type ReloadPublisher interface {
	PublishReload(ctx context.Context, key string, rows int) error
}

// ImportService copies contracts from a source into a snapshot store and
// notifies dashboards.
type ImportService struct {
	from      source.ContractReader
	to        SnapshotStore
	publisher ReloadPublisher
}

// NewImportService creates an import service. publisher may be nil.
func NewImportService(from source.ContractReader, to SnapshotStore, publisher ReloadPublisher) *ImportService {
	return &ImportService{from: from, to: to, publisher: publisher}
}

// Import reads every contract from the source and replaces the store's
// snapshot. A failed read or validation leaves the store untouched. The
// reload notification is best effort.
func (s *ImportService) Import(ctx context.Context) (int, error) {
	contracts, err := s.from.ReadContracts(ctx)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", s.from.Key(), err)
	}
	if err := s.to.ReplaceContracts(ctx, contracts); err != nil {
		return 0, fmt.Errorf("replace %s: %w", s.to.Key(), err)
	}

	slog.InfoContext(ctx, "Contracts imported",
		"component", "import",
		"from", s.from.Key(),
		"to", s.to.Key(),
		"rows", len(contracts))

	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping reload message")
		return len(contracts), nil
	}
	if err := s.publisher.PublishReload(ctx, s.to.Key(), len(contracts)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish reload message", "error", err, "source", s.to.Key())
	}
	return len(contracts), nil
}
