package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1200", "1200", true},
		{"1200.50", "1200.5", true},
		{"12,5", "12.5", true},
		{" 600 ", "600", true},
		{"1,234.50", "1234.5", true},
		{"1.234,50", "1234.5", true},
		{"1,234,567", "1234567", true},
		{"12,000", "12000", true},
		{"1,234", "1234", true},
		{"-12,000", "-12000", true},
		{"0,125", "0.125", true},
		{"1234,567", "1234.567", true},
		{"-250", "-250", true},
		{"0", "0", true},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"12€", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(decimal.RequireFromString(tc.out)) {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestFormatEuros(t *testing.T) {
	cases := []struct {
		in     string
		places int32
		out    string
	}{
		{"2400", 0, "2,400 €"},
		{"1234567.891", 2, "1,234,567.89 €"},
		{"999", 0, "999 €"},
		{"-1500.5", 2, "-1,500.50 €"},
		{"0", 0, "0 €"},
	}
	for _, tc := range cases {
		got := FormatEuros(decimal.RequireFromString(tc.in), tc.places)
		if got != tc.out {
			t.Errorf("FormatEuros(%s, %d) = %q, want %q", tc.in, tc.places, got, tc.out)
		}
	}
}
