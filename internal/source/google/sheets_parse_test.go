package google

import (
	"errors"
	"testing"

	"runrate/internal/core"
	"runrate/internal/source"
)

func TestDecodeValues(t *testing.T) {
	values := [][]interface{}{
		{"CustomerName", "ContractStartDate", "BookingDate", "ContractEndDate", "BookedRevenue", "ContractDurationMonths", "Owner"},
		{"Acme", "2025-01-01", "2024-12-15", "2025-12-31", "1200", 12, "mk"},
		{},
		{"Globex", "2025/03/01", "2025/02/01", "2025/08/31", 600.0, "6"},
	}
	got, err := decodeValues("Contracts", values)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 contracts, got %d", len(got))
	}
	if got[1].CustomerName != "Globex" || got[1].MonthlyRevenue.String() != "100" {
		t.Fatalf("unexpected Globex row: %+v", got[1])
	}
	if !got[1].StartDate.Equal(core.NewDate(2025, 3, 1).Time) {
		t.Fatalf("unexpected start date %s", got[1].StartDate)
	}
}

func TestDecodeValuesErrors(t *testing.T) {
	if _, err := decodeValues("Contracts", nil); !source.IsParseError(err) {
		t.Fatalf("empty sheet: expected ParseError, got %v", err)
	}

	values := [][]interface{}{
		{"CustomerName", "ContractStartDate", "BookingDate", "ContractEndDate", "BookedRevenue", "ContractDurationMonths"},
		{"Acme", "2025-01-01", "2024-12-15", "2025-12-31", "1200", "0"},
	}
	_, err := decodeValues("Contracts", values)
	if !errors.Is(err, core.ErrZeroDuration) {
		t.Fatalf("expected ErrZeroDuration, got %v", err)
	}
	var pe *source.ParseError
	if !errors.As(err, &pe) || pe.Line != 2 {
		t.Fatalf("expected ParseError on line 2, got %v", err)
	}
}
