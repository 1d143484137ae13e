package source

import (
	"context"

	"runrate/internal/core"
)

// Ports for inbound data adapters.
type (
	// ContractReader loads the full set of contract records from one source.
	ContractReader interface {
		// Key identifies the source for caching and logging, e.g. the CSV path.
		Key() string
		// ReadContracts returns every record with MonthlyRevenue derived.
		ReadContracts(ctx context.Context) ([]core.Contract, error)
	}

	// ContractWriter replaces the stored contract snapshot.
	ContractWriter interface {
		ReplaceContracts(ctx context.Context, contracts []core.Contract) error
	}
)
