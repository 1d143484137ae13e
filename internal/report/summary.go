package report

import (
	"time"

	"github.com/shopspring/decimal"

	"runrate/internal/core"
)

// Summary bundles every figure the dashboard shows for one dataset.
type Summary struct {
	AsOf               core.Date
	Active             []core.Contract
	ActiveCount        int
	RunRate            decimal.Decimal
	TopMonthly         []core.CustomerAmount
	StartsPerMonth     []core.MonthCount
	TopBooked          []core.CustomerAmount
	FirstStart         core.Date
	LastStart          core.Date
	TotalContracts     int
	TotalBookedRevenue decimal.Decimal
}

// Summarize computes the dashboard figures for records as of at. The monthly
// ranking uses active contracts; the start histogram and booked ranking use
// the whole dataset.
func Summarize(records []core.Contract, at time.Time, n int) Summary {
	active := Active(records, at)
	first, last, _ := StartDateBounds(records)
	booked := decimal.Zero
	for _, c := range records {
		booked = booked.Add(c.BookedRevenue)
	}
	return Summary{
		AsOf:               core.DateOf(at),
		Active:             active,
		ActiveCount:        len(active),
		RunRate:            RunRate(active),
		TopMonthly:         TopCustomersByMonthlyRevenue(active, n),
		StartsPerMonth:     ContractsByStartMonth(records),
		TopBooked:          TopCustomersByBookedRevenue(records, n),
		FirstStart:         first,
		LastStart:          last,
		TotalContracts:     len(records),
		TotalBookedRevenue: booked,
	}
}
