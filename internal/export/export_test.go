package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"runrate/internal/core"
	"runrate/internal/report"
	"runrate/internal/services"
)

func mustContract(t *testing.T, name string, start core.Date, months int, booked int64) core.Contract {
	t.Helper()
	end := core.DateOf(start.AddDate(0, months, -1))
	c, err := core.NewContract(name, start, end, start, decimal.NewFromInt(booked), months)
	require.NoError(t, err)
	return c
}

func sampleDashboard(t *testing.T) services.Dashboard {
	t.Helper()
	records := []core.Contract{
		mustContract(t, "Acme", core.NewDate(2026, 1, 1), 12, 12000),
		mustContract(t, "Globex", core.NewDate(2026, 3, 1), 6, 30000),
		mustContract(t, "Initech", core.NewDate(2024, 1, 1), 12, 24000),
	}
	at := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	s := report.Summarize(records, at, 10)
	return services.Dashboard{
		Title:       "Run Rate",
		Source:      "memory",
		GeneratedAt: at,
		HasData:     true,
		TopN:        10,
		Summary:     s,
		Range: services.RangeView{
			Min: s.FirstStart, Max: s.LastStart,
			From: s.FirstStart, To: s.LastStart,
			Contracts: records, Count: len(records),
		},
	}
}

func TestFilename(t *testing.T) {
	d := sampleDashboard(t)
	assert.Equal(t, "runrate-2026-06-15.xlsx", Filename(d, "xlsx"))

	empty := services.Dashboard{GeneratedAt: time.Date(2026, 2, 3, 9, 0, 0, 0, time.UTC)}
	assert.Equal(t, "runrate-2026-02-03.pdf", Filename(empty, "pdf"))
}

func TestXLSXGenerate(t *testing.T) {
	data, err := NewXLSX().Generate(sampleDashboard(t))
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheetSummary, sheetActive, sheetMonthly, sheetStarts, sheetBooked, sheetRange}, f.GetSheetList())

	raw := excelize.Options{RawCellValue: true}
	runRate, err := f.GetCellValue(sheetSummary, "B4", raw)
	require.NoError(t, err)
	assert.Equal(t, "72000", runRate)

	active, err := f.GetCellValue(sheetSummary, "B5", raw)
	require.NoError(t, err)
	assert.Equal(t, "2", active)

	top, err := f.GetCellValue(sheetMonthly, "B2")
	require.NoError(t, err)
	assert.Equal(t, "Globex", top)

	rows, err := f.GetRows(sheetRange)
	require.NoError(t, err)
	assert.Len(t, rows, 4)
	assert.Equal(t, contractHeaders[0], rows[0][0])
}

func TestPDFGenerate(t *testing.T) {
	data, err := NewPDF().Generate(sampleDashboard(t))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestPDFGenerateWithoutData(t *testing.T) {
	d := services.Dashboard{
		Title:  "Run Rate",
		Notice: &services.Notice{Level: services.NoticeWarning, Kind: services.KindNoData, Message: "No data available."},
	}
	data, err := NewPDF().Generate(d)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}
