package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/shopspring/decimal"

	"runrate/internal/core"
	"runrate/internal/source"
)

// Store keeps contracts in process memory. It backs demos and tests.
type Store struct {
	mu    sync.RWMutex
	items []core.Contract
}

var (
	_ source.ContractReader = (*Store)(nil)
	_ source.ContractWriter = (*Store)(nil)
)

func New(contracts ...core.Contract) *Store {
	return &Store{items: slices.Clone(contracts)}
}

// NewSeeded returns a store populated with a small demo book of contracts.
func NewSeeded() *Store {
	return New(seedContracts()...)
}

func (s *Store) Key() string { return "memory" }

// ReadContracts returns a copy of the stored contracts.
func (s *Store) ReadContracts(_ context.Context) ([]core.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items), nil
}

// ReplaceContracts swaps the stored snapshot after validating every record.
func (s *Store) ReplaceContracts(_ context.Context, contracts []core.Contract) error {
	for _, c := range contracts {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = slices.Clone(contracts)
	return nil
}

func seedContracts() []core.Contract {
	type row struct {
		name                string
		start, end, booking core.Date
		booked              int64
		months              int
	}
	rows := []row{
		{"Acme", core.NewDate(2025, 1, 1), core.NewDate(2026, 12, 31), core.NewDate(2024, 12, 10), 24000, 24},
		{"Acme", core.NewDate(2025, 6, 1), core.NewDate(2026, 5, 31), core.NewDate(2025, 5, 20), 6000, 12},
		{"Globex", core.NewDate(2025, 3, 1), core.NewDate(2027, 2, 28), core.NewDate(2025, 2, 14), 36000, 24},
		{"Initech", core.NewDate(2024, 9, 1), core.NewDate(2025, 8, 31), core.NewDate(2024, 8, 1), 9600, 12},
		{"Umbrella", core.NewDate(2025, 9, 1), core.NewDate(2028, 8, 31), core.NewDate(2025, 8, 12), 72000, 36},
		{"Hooli", core.NewDate(2026, 1, 1), core.NewDate(2026, 12, 31), core.NewDate(2025, 12, 1), 18000, 12},
	}
	out := make([]core.Contract, 0, len(rows))
	for _, r := range rows {
		c, err := core.NewContract(r.name, r.start, r.end, r.booking, decimal.NewFromInt(r.booked), r.months)
		if err != nil {
			panic(err)
		}
		out = append(out, c)
	}
	return out
}
