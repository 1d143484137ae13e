// Package report holds the pure filtering and aggregation steps of the
// dashboard. Every function copies its input and never mutates it.
package report

import (
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"runrate/internal/core"
)

var twelve = decimal.NewFromInt(12)

// Active returns the contracts running on the calendar day of at, as seen in
// at's location. Both contract bounds are inclusive. Order is preserved.
func Active(records []core.Contract, at time.Time) []core.Contract {
	day := core.DateOf(at)
	return lo.Filter(records, func(c core.Contract, _ int) bool {
		return c.ActiveOn(day)
	})
}

// RunRate annualizes the monthly revenue of records: 12 x sum(MonthlyRevenue).
func RunRate(records []core.Contract) decimal.Decimal {
	return lo.Reduce(records, func(acc decimal.Decimal, c core.Contract, _ int) decimal.Decimal {
		return acc.Add(c.MonthlyRevenue)
	}, decimal.Zero).Mul(twelve)
}

// TopCustomersByMonthlyRevenue sums MonthlyRevenue per customer and returns
// the n largest totals.
func TopCustomersByMonthlyRevenue(records []core.Contract, n int) []core.CustomerAmount {
	return topCustomers(records, n, func(c core.Contract) decimal.Decimal { return c.MonthlyRevenue })
}

// TopCustomersByBookedRevenue sums BookedRevenue per customer and returns the
// n largest totals.
func TopCustomersByBookedRevenue(records []core.Contract, n int) []core.CustomerAmount {
	return topCustomers(records, n, func(c core.Contract) decimal.Decimal { return c.BookedRevenue })
}

// topCustomers orders by amount descending; equal amounts are ordered by
// customer name ascending.
func topCustomers(records []core.Contract, n int, amount func(core.Contract) decimal.Decimal) []core.CustomerAmount {
	if n <= 0 || len(records) == 0 {
		return []core.CustomerAmount{}
	}
	totals := map[string]decimal.Decimal{}
	for _, c := range records {
		totals[c.CustomerName] = totals[c.CustomerName].Add(amount(c))
	}
	out := lo.MapToSlice(totals, func(name string, sum decimal.Decimal) core.CustomerAmount {
		return core.CustomerAmount{Name: name, Amount: sum}
	})
	sort.Slice(out, func(i, j int) bool {
		if cmp := out[i].Amount.Cmp(out[j].Amount); cmp != 0 {
			return cmp > 0
		}
		return strings.Compare(out[i].Name, out[j].Name) < 0
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// ContractsByStartMonth counts contracts per start year-month, ascending.
func ContractsByStartMonth(records []core.Contract) []core.MonthCount {
	counts := lo.CountValuesBy(records, func(c core.Contract) string {
		return c.StartDate.YearMonth()
	})
	months := lo.Keys(counts)
	sort.Strings(months)
	return lo.Map(months, func(m string, _ int) core.MonthCount {
		return core.MonthCount{Month: m, Count: counts[m]}
	})
}

// StartedBetween returns the contracts whose start date lies in [from, to],
// compared by calendar day. Order is preserved.
func StartedBetween(records []core.Contract, from, to core.Date) []core.Contract {
	return lo.Filter(records, func(c core.Contract, _ int) bool {
		return !c.StartDate.Before(from.Time) && !c.StartDate.After(to.Time)
	})
}

// StartDateBounds returns the earliest and latest start dates. ok is false
// when records is empty.
func StartDateBounds(records []core.Contract) (min, max core.Date, ok bool) {
	if len(records) == 0 {
		return core.Date{}, core.Date{}, false
	}
	first := lo.MinBy(records, func(a, b core.Contract) bool { return a.StartDate.Before(b.StartDate.Time) })
	last := lo.MaxBy(records, func(a, b core.Contract) bool { return a.StartDate.After(b.StartDate.Time) })
	return first.StartDate, last.StartDate, true
}

// ClampRange normalizes an interactive date range so that it stays within
// [lower, upper]. A zero bound falls back to the matching limit; reversed
// bounds are swapped.
func ClampRange(from, to, lower, upper core.Date) (core.Date, core.Date) {
	if from.IsZero() {
		from = lower
	}
	if to.IsZero() {
		to = upper
	}
	if from.After(to.Time) {
		from, to = to, from
	}
	if from.Before(lower.Time) {
		from = lower
	}
	if from.After(upper.Time) {
		from = upper
	}
	if to.After(upper.Time) {
		to = upper
	}
	if to.Before(lower.Time) {
		to = lower
	}
	return from, to
}
