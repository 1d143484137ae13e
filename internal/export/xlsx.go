package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"runrate/internal/core"
	"runrate/internal/services"
)

const (
	sheetSummary = "Summary"
	sheetActive  = "Active Contracts"
	sheetMonthly = "Top Monthly"
	sheetStarts  = "Starts per Month"
	sheetBooked  = "Top Booked"
	sheetRange   = "Started in Range"
)

const euroFormat = `#,##0.00 "€"`

// XLSX writes one sheet per dashboard section.
type XLSX struct{}

func NewXLSX() *XLSX {
	return &XLSX{}
}

type workbook struct {
	file   *excelize.File
	bold   int
	amount int
}

func (g *XLSX) Generate(d services.Dashboard) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	wb := &workbook{file: file}
	var err error
	if wb.bold, err = file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		return nil, err
	}
	numFmt := euroFormat
	if wb.amount, err = file.NewStyle(&excelize.Style{CustomNumFmt: &numFmt}); err != nil {
		return nil, err
	}

	if err := file.SetSheetName("Sheet1", sheetSummary); err != nil {
		return nil, err
	}
	wb.writeSummary(d)

	for _, name := range []string{sheetActive, sheetMonthly, sheetStarts, sheetBooked, sheetRange} {
		if _, err := file.NewSheet(name); err != nil {
			return nil, fmt.Errorf("add sheet %s: %w", name, err)
		}
	}
	wb.writeContracts(sheetActive, d.Summary.Active)
	wb.writeCustomers(sheetMonthly, "Monthly revenue", d.Summary.TopMonthly)
	wb.writeStarts(d.Summary.StartsPerMonth)
	wb.writeCustomers(sheetBooked, "Booked revenue", d.Summary.TopBooked)
	wb.writeContracts(sheetRange, d.Range.Contracts)

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (wb *workbook) set(sheet string, col, row int, value any) {
	cell, _ := excelize.CoordinatesToCellName(col, row)
	_ = wb.file.SetCellValue(sheet, cell, value)
}

func (wb *workbook) header(sheet string, row int, labels ...string) {
	for i, label := range labels {
		wb.set(sheet, i+1, row, label)
	}
	first, _ := excelize.CoordinatesToCellName(1, row)
	last, _ := excelize.CoordinatesToCellName(len(labels), row)
	_ = wb.file.SetCellStyle(sheet, first, last, wb.bold)
}

func (wb *workbook) amountColumn(sheet, col string, fromRow, toRow int) {
	if toRow < fromRow {
		return
	}
	_ = wb.file.SetCellStyle(sheet, fmt.Sprintf("%s%d", col, fromRow), fmt.Sprintf("%s%d", col, toRow), wb.amount)
}

func (wb *workbook) writeSummary(d services.Dashboard) {
	s := d.Summary
	rows := []struct {
		label string
		value any
	}{
		{"Report", title(d)},
		{"Source", d.Source},
		{"As of", dateCell(s.AsOf)},
		{"Run rate", s.RunRate.InexactFloat64()},
		{"Active contracts", s.ActiveCount},
		{"Total contracts", s.TotalContracts},
		{"Total booked revenue", s.TotalBookedRevenue.InexactFloat64()},
		{"First start", dateCell(s.FirstStart)},
		{"Last start", dateCell(s.LastStart)},
		{"Range from", dateCell(d.Range.From)},
		{"Range to", dateCell(d.Range.To)},
		{"Started in range", d.Range.Count},
	}
	for i, r := range rows {
		wb.set(sheetSummary, 1, i+1, r.label)
		wb.set(sheetSummary, 2, i+1, r.value)
	}
	_ = wb.file.SetCellStyle(sheetSummary, "A1", fmt.Sprintf("A%d", len(rows)), wb.bold)
	_ = wb.file.SetCellStyle(sheetSummary, "B4", "B4", wb.amount)
	_ = wb.file.SetCellStyle(sheetSummary, "B7", "B7", wb.amount)
	_ = wb.file.SetColWidth(sheetSummary, "A", "A", 24)
	_ = wb.file.SetColWidth(sheetSummary, "B", "B", 40)
}

func (wb *workbook) writeContracts(sheet string, contracts []core.Contract) {
	wb.header(sheet, 1, contractHeaders...)
	for i, c := range contracts {
		row := i + 2
		wb.set(sheet, 1, row, c.CustomerName)
		wb.set(sheet, 2, row, c.StartDate.String())
		wb.set(sheet, 3, row, c.EndDate.String())
		wb.set(sheet, 4, row, c.BookingDate.String())
		wb.set(sheet, 5, row, c.BookedRevenue.InexactFloat64())
		wb.set(sheet, 6, row, c.DurationMonths)
		wb.set(sheet, 7, row, c.MonthlyRevenue.InexactFloat64())
	}
	last := len(contracts) + 1
	wb.amountColumn(sheet, "E", 2, last)
	wb.amountColumn(sheet, "G", 2, last)
	_ = wb.file.SetColWidth(sheet, "A", "A", 32)
	_ = wb.file.SetColWidth(sheet, "B", "D", 12)
	_ = wb.file.SetColWidth(sheet, "E", "G", 16)
}

func (wb *workbook) writeCustomers(sheet, amountLabel string, rows []core.CustomerAmount) {
	wb.header(sheet, 1, "Rank", "Customer", amountLabel)
	for i, r := range rows {
		wb.set(sheet, 1, i+2, i+1)
		wb.set(sheet, 2, i+2, r.Name)
		wb.set(sheet, 3, i+2, r.Amount.InexactFloat64())
	}
	wb.amountColumn(sheet, "C", 2, len(rows)+1)
	_ = wb.file.SetColWidth(sheet, "B", "B", 32)
	_ = wb.file.SetColWidth(sheet, "C", "C", 18)
}

func (wb *workbook) writeStarts(rows []core.MonthCount) {
	wb.header(sheetStarts, 1, "Month", "Contracts started")
	for i, r := range rows {
		wb.set(sheetStarts, 1, i+2, r.Month)
		wb.set(sheetStarts, 2, i+2, r.Count)
	}
	_ = wb.file.SetColWidth(sheetStarts, "B", "B", 18)
}

func dateCell(d core.Date) string {
	return d.String()
}
