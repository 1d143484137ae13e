package core

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in  string
		out Date
		ok  bool
	}{
		{"2025-01-31", NewDate(2025, 1, 31), true},
		{"2025-01-31 13:45:00", NewDate(2025, 1, 31), true},
		{"2025-01-31T23:59:59+02:00", NewDate(2025, 1, 31), true},
		{"2025/01/31", NewDate(2025, 1, 31), true},
		{"31.01.2025", NewDate(2025, 1, 31), true},
		{"", Date{}, false},
		{"31/31/2025", Date{}, false},
		{"yesterday", Date{}, false},
	}
	for _, tc := range cases {
		got, err := ParseDate(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(tc.out.Time) {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("%q expected ErrInvalidDate, got %v", tc.in, err)
		}
	}
}

func TestNewContractDerivesMonthlyRevenue(t *testing.T) {
	cases := []struct {
		booked  string
		months  int
		monthly string
	}{
		{"1200", 12, "100"},
		{"600", 6, "100"},
		{"1000", 4, "250"},
		{"99.99", 3, "33.33"},
		{"-120", 12, "-10"},
	}
	for _, tc := range cases {
		booked := decimal.RequireFromString(tc.booked)
		c, err := NewContract("Acme", NewDate(2025, 1, 1), NewDate(2025, 12, 31), NewDate(2024, 12, 1), booked, tc.months)
		if err != nil {
			t.Fatalf("%s/%d: unexpected error %v", tc.booked, tc.months, err)
		}
		if !c.MonthlyRevenue.Equal(decimal.RequireFromString(tc.monthly)) {
			t.Errorf("%s/%d: monthly = %s, want %s", tc.booked, tc.months, c.MonthlyRevenue, tc.monthly)
		}
		if !c.MonthlyRevenue.Equal(booked.Div(decimal.NewFromInt(int64(tc.months)))) {
			t.Errorf("%s/%d: monthly is not booked/months", tc.booked, tc.months)
		}
	}
}

func TestNewContractRejectsBadDuration(t *testing.T) {
	start, end := NewDate(2025, 1, 1), NewDate(2025, 12, 31)
	_, err := NewContract("Acme", start, end, start, decimal.NewFromInt(100), 0)
	if !errors.Is(err, ErrZeroDuration) {
		t.Fatalf("expected ErrZeroDuration, got %v", err)
	}
	_, err = NewContract("Acme", start, end, start, decimal.NewFromInt(100), -3)
	if !errors.Is(err, ErrInvalidDuration) {
		t.Fatalf("expected ErrInvalidDuration, got %v", err)
	}
	_, err = NewContract("Acme", Date{}, end, start, decimal.NewFromInt(100), 12)
	if !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestActiveOnIsInclusive(t *testing.T) {
	c := Contract{StartDate: NewDate(2025, 3, 1), EndDate: NewDate(2025, 3, 31)}
	cases := []struct {
		day  Date
		want bool
	}{
		{NewDate(2025, 2, 28), false},
		{NewDate(2025, 3, 1), true},
		{NewDate(2025, 3, 15), true},
		{NewDate(2025, 3, 31), true},
		{NewDate(2025, 4, 1), false},
	}
	for _, tc := range cases {
		if got := c.ActiveOn(tc.day); got != tc.want {
			t.Errorf("ActiveOn(%s) = %v, want %v", tc.day, got, tc.want)
		}
	}
}

func TestDateOfKeepsLocalCalendarDay(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	late := time.Date(2025, 6, 30, 23, 30, 0, 0, loc)
	if got := DateOf(late); !got.Equal(NewDate(2025, 6, 30).Time) {
		t.Fatalf("DateOf = %s, want 2025-06-30", got)
	}
	if got := DateOf(late).YearMonth(); got != "2025-06" {
		t.Fatalf("YearMonth = %q", got)
	}
}
