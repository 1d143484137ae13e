package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type (
	// Date is a calendar date; the time-of-day part is always midnight UTC.
	Date struct {
		time.Time
	}

	// Contract is one CRM contract record as exported by the sales team.
	Contract struct {
		CustomerName   string
		StartDate      Date
		EndDate        Date
		BookingDate    Date
		BookedRevenue  decimal.Decimal
		DurationMonths int
		// MonthlyRevenue is derived: BookedRevenue / DurationMonths.
		MonthlyRevenue decimal.Decimal
	}

	// CustomerAmount is an amount aggregated by customer name.
	CustomerAmount struct {
		Name   string
		Amount decimal.Decimal
	}

	// MonthCount counts records per year-month, Month formatted "2006-01".
	MonthCount struct {
		Month string
		Count int
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidDate     = errors.New("invalid date")
	ErrZeroDuration    = errors.New("contract duration is zero months")
	ErrInvalidDuration = errors.New("contract duration must be positive")
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006/01/02",
	"02.01.2006",
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t as seen in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses the date formats found in CRM exports. Any time-of-day
// component is dropped.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrInvalidDate
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

// YearMonth formats the date as YYYY-MM.
func (d Date) YearMonth() string {
	return d.Format("2006-01")
}

// NewContract builds a contract and derives its monthly revenue.
func NewContract(customer string, start, end, booking Date, booked decimal.Decimal, months int) (Contract, error) {
	c := Contract{
		CustomerName:   strings.TrimSpace(customer),
		StartDate:      start,
		EndDate:        end,
		BookingDate:    booking,
		BookedRevenue:  booked,
		DurationMonths: months,
	}
	if err := c.Validate(); err != nil {
		return Contract{}, err
	}
	c.MonthlyRevenue = MonthlyRevenue(booked, months)
	return c, nil
}

// MonthlyRevenue spreads the booked revenue evenly over the contract
// duration. Callers must validate months beforehand.
func MonthlyRevenue(booked decimal.Decimal, months int) decimal.Decimal {
	return booked.Div(decimal.NewFromInt(int64(months)))
}

// Validate checks the invariants a record needs before any revenue can be
// derived from it. Start <= End is not checked.
func (c Contract) Validate() error {
	switch {
	case c.DurationMonths == 0:
		return ErrZeroDuration
	case c.DurationMonths < 0:
		return ErrInvalidDuration
	}
	if c.StartDate.IsZero() || c.EndDate.IsZero() || c.BookingDate.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// ActiveOn reports whether day lies within [StartDate, EndDate], inclusive.
func (c Contract) ActiveOn(day Date) bool {
	return !day.Before(c.StartDate.Time) && !day.After(c.EndDate.Time)
}
