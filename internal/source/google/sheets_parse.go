package google

import (
	"errors"
	"fmt"
	"strings"

	"runrate/internal/core"
	"runrate/internal/source"
)

// decodeValues converts a values matrix (as returned by Sheets API) into
// contracts. The first row is the header; rows are numbered like the sheet.
func decodeValues(sheet string, values [][]interface{}) ([]core.Contract, error) {
	if len(values) == 0 {
		return nil, &source.ParseError{Source: sheet, Err: errors.New("empty sheet, no header row")}
	}
	header := toStrings(values[0])
	rows := make([][]string, 0, len(values)-1)
	for _, v := range values[1:] {
		rows = append(rows, toStrings(v))
	}
	return source.DecodeRows(sheet, header, rows, 2)
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		if v == nil {
			continue
		}
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
