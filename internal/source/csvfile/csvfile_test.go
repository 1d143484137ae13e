package csvfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"runrate/internal/core"
	"runrate/internal/source"
)

const header = "CustomerName,ContractStartDate,BookingDate,ContractEndDate,BookedRevenue,ContractDurationMonths\n"

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "crm_data.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func TestReadContracts(t *testing.T) {
	path := writeCSV(t, header+
		"Acme,2025-01-01,2024-12-15,2025-12-31,1200,12\n"+
		"Acme,2025-03-01,2025-02-20,2025-08-31,600,6\n"+
		"Globex,2024-06-01,2024-05-01,2026-05-31,\"24,000.00\",24\n")

	got, err := New(path).ReadContracts(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 contracts, got %d", len(got))
	}
	want := []struct {
		name    string
		monthly string
	}{
		{"Acme", "100"},
		{"Acme", "100"},
		{"Globex", "1000"},
	}
	for i, w := range want {
		if got[i].CustomerName != w.name {
			t.Errorf("row %d: customer = %q, want %q", i, got[i].CustomerName, w.name)
		}
		if !got[i].MonthlyRevenue.Equal(decimal.RequireFromString(w.monthly)) {
			t.Errorf("row %d: monthly = %s, want %s", i, got[i].MonthlyRevenue, w.monthly)
		}
	}
	if !got[0].StartDate.Equal(core.NewDate(2025, 1, 1).Time) {
		t.Errorf("start date = %s", got[0].StartDate)
	}
	if got[2].DurationMonths != 24 {
		t.Errorf("duration = %d", got[2].DurationMonths)
	}
}

func TestReadContractsQuotedThousandsAmounts(t *testing.T) {
	path := writeCSV(t, header+
		"Initech,2025-01-01,2024-12-15,2025-12-31,\"12,000\",12\n"+
		"Hooli,2025-01-01,2024-12-15,2025-12-31,\"1,234\",1\n"+
		"Umbrella,2025-01-01,2024-12-15,2025-12-31,\"1,200,000\",12\n")

	got, err := New(path).ReadContracts(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"12000", "1234", "1200000"}
	if len(got) != len(want) {
		t.Fatalf("expected %d contracts, got %d", len(want), len(got))
	}
	for i, w := range want {
		if !got[i].BookedRevenue.Equal(decimal.RequireFromString(w)) {
			t.Errorf("row %d: booked = %s, want %s", i, got[i].BookedRevenue, w)
		}
	}
}

func TestReadContractsMissingFile(t *testing.T) {
	r := New(filepath.Join(t.TempDir(), "nope.csv"))
	got, err := r.ReadContracts(context.Background())
	if !errors.Is(err, source.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no contracts, got %d", len(got))
	}
}

func TestReadContractsMissingColumn(t *testing.T) {
	path := writeCSV(t, "CustomerName,ContractStartDate,ContractEndDate,BookedRevenue,ContractDurationMonths\n"+
		"Acme,2025-01-01,2025-12-31,1200,12\n")

	got, err := New(path).ReadContracts(context.Background())
	var pe *source.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if !strings.Contains(pe.Error(), "BookingDate") {
		t.Errorf("error should name the missing column: %v", pe)
	}
	if len(got) != 0 {
		t.Fatalf("expected no contracts, got %d", len(got))
	}
}

func TestReadContractsMalformedValues(t *testing.T) {
	cases := []struct {
		name   string
		row    string
		line   int
		column string
		cause  error
	}{
		{"bad start date", "Acme,not-a-date,2024-12-15,2025-12-31,1200,12", 2, source.ColStartDate, core.ErrInvalidDate},
		{"bad revenue", "Acme,2025-01-01,2024-12-15,2025-12-31,lots,12", 2, source.ColBookedRevenue, core.ErrInvalidAmount},
		{"zero duration", "Acme,2025-01-01,2024-12-15,2025-12-31,1200,0", 2, source.ColDurationMonths, core.ErrZeroDuration},
		{"negative duration", "Acme,2025-01-01,2024-12-15,2025-12-31,1200,-1", 2, source.ColDurationMonths, core.ErrInvalidDuration},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeCSV(t, header+tc.row+"\n")
			_, err := New(path).ReadContracts(context.Background())
			var pe *source.ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected ParseError, got %v", err)
			}
			if pe.Line != tc.line || pe.Column != tc.column {
				t.Errorf("got line %d column %q, want line %d column %q", pe.Line, pe.Column, tc.line, tc.column)
			}
			if !errors.Is(err, tc.cause) {
				t.Errorf("expected cause %v, got %v", tc.cause, err)
			}
		})
	}
}

func TestDecodeWrongFieldCount(t *testing.T) {
	_, err := Decode("inline", strings.NewReader(header+"Acme,2025-01-01\n"))
	if !source.IsParseError(err) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestDecodeEmptyInput(t *testing.T) {
	_, err := Decode("inline", strings.NewReader(""))
	if !source.IsParseError(err) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestDecodeHeaderOnly(t *testing.T) {
	got, err := Decode("inline", strings.NewReader(header))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %d", len(got))
	}
}
