package source

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"runrate/internal/core"
)

// Column names required in every tabular contract export.
const (
	ColCustomerName   = "CustomerName"
	ColStartDate      = "ContractStartDate"
	ColBookingDate    = "BookingDate"
	ColEndDate        = "ContractEndDate"
	ColBookedRevenue  = "BookedRevenue"
	ColDurationMonths = "ContractDurationMonths"
)

// RequiredColumns lists the header names DecodeRows looks up.
var RequiredColumns = []string{
	ColCustomerName,
	ColStartDate,
	ColBookingDate,
	ColEndDate,
	ColBookedRevenue,
	ColDurationMonths,
}

var errMissingColumns = errors.New("missing required columns")

// columnIndex maps required column names to their position in a header row.
type columnIndex map[string]int

// indexHeader locates the required columns in header. Matching is
// case-insensitive and ignores surrounding whitespace and a UTF-8 BOM.
func indexHeader(src string, header []string) (columnIndex, error) {
	idx := columnIndex{}
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		for _, want := range RequiredColumns {
			if _, seen := idx[want]; !seen && strings.EqualFold(h, want) {
				idx[want] = i
			}
		}
	}
	var missing []string
	for _, want := range RequiredColumns {
		if _, ok := idx[want]; !ok {
			missing = append(missing, want)
		}
	}
	if len(missing) > 0 {
		return nil, &ParseError{
			Source: src,
			Line:   1,
			Err:    fmt.Errorf("%w: %s (got %v)", errMissingColumns, strings.Join(missing, ", "), header),
		}
	}
	return idx, nil
}

// DecodeRows converts a header row plus data rows into contracts. firstLine
// is the 1-based line number of rows[0] used in error messages. Fully blank
// rows are skipped.
func DecodeRows(src string, header []string, rows [][]string, firstLine int) ([]core.Contract, error) {
	idx, err := indexHeader(src, header)
	if err != nil {
		return nil, err
	}
	out := make([]core.Contract, 0, len(rows))
	for i, row := range rows {
		if isBlank(row) {
			continue
		}
		c, err := idx.decode(src, row, firstLine+i)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (idx columnIndex) decode(src string, row []string, line int) (core.Contract, error) {
	get := func(col string) string {
		i := idx[col]
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	fail := func(col string, err error) (core.Contract, error) {
		return core.Contract{}, &ParseError{Source: src, Line: line, Column: col, Err: err}
	}

	start, err := core.ParseDate(get(ColStartDate))
	if err != nil {
		return fail(ColStartDate, err)
	}
	end, err := core.ParseDate(get(ColEndDate))
	if err != nil {
		return fail(ColEndDate, err)
	}
	booking, err := core.ParseDate(get(ColBookingDate))
	if err != nil {
		return fail(ColBookingDate, err)
	}
	booked, err := core.ParseAmount(get(ColBookedRevenue))
	if err != nil {
		return fail(ColBookedRevenue, fmt.Errorf("%w: %q", err, get(ColBookedRevenue)))
	}
	months, err := parseMonths(get(ColDurationMonths))
	if err != nil {
		return fail(ColDurationMonths, err)
	}

	c, err := core.NewContract(get(ColCustomerName), start, end, booking, booked, months)
	if err != nil {
		return fail(ColDurationMonths, err)
	}
	return c, nil
}

// parseMonths accepts integers and integral floats such as "12.0", which
// spreadsheet exports produce for numeric columns.
func parseMonths(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return int(f), nil
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
