package export

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"runrate/internal/core"
	"runrate/internal/services"
)

// PDF renders the KPIs and ranking tables on A4 landscape pages using the
// built-in Helvetica font.
type PDF struct {
	fontName string
}

func NewPDF() *PDF {
	return &PDF{fontName: "Helvetica"}
}

type pdfWriter struct {
	pdf  *gofpdf.Fpdf
	font string
	tr   func(string) string
}

func (g *PDF) Generate(d services.Dashboard) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	w := &pdfWriter{pdf: pdf, font: g.fontName, tr: pdf.UnicodeTranslatorFromDescriptor("")}

	pdf.SetFont(w.font, "B", 16)
	pdf.CellFormat(0, 10, w.tr(title(d)), "", 1, "L", false, 0, "")
	pdf.SetFont(w.font, "", 10)
	pdf.CellFormat(0, 6, w.tr(fmt.Sprintf("As of %s, source %s", d.Summary.AsOf, d.Source)), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	if !d.HasData {
		msg := "No data available."
		if d.Notice != nil {
			msg = d.Notice.Message
		}
		pdf.SetTextColor(200, 0, 0)
		pdf.MultiCell(0, 6, w.tr(msg), "", "L", false)
		pdf.SetTextColor(0, 0, 0)
		return output(pdf)
	}

	s := d.Summary
	w.section("Key figures")
	w.table([]string{"Run rate", "Active contracts", "Total contracts", "Total booked revenue"}, []float64{65, 65, 65, 72},
		[][]string{{
			core.FormatEuros(s.RunRate, 0),
			strconv.Itoa(s.ActiveCount),
			strconv.Itoa(s.TotalContracts),
			core.FormatEuros(s.TotalBookedRevenue, 0),
		}})

	w.section(fmt.Sprintf("Top %d customers by monthly revenue", d.TopN))
	w.table([]string{"#", "Customer", "Monthly revenue"}, []float64{15, 150, 60}, customerRows(s.TopMonthly))

	w.section(fmt.Sprintf("Top %d customers by booked revenue", d.TopN))
	w.table([]string{"#", "Customer", "Booked revenue"}, []float64{15, 150, 60}, customerRows(s.TopBooked))

	starts := make([][]string, 0, len(s.StartsPerMonth))
	for _, m := range s.StartsPerMonth {
		starts = append(starts, []string{m.Month, strconv.Itoa(m.Count)})
	}
	w.section("Contracts started per month")
	w.table([]string{"Month", "Contracts"}, []float64{40, 40}, starts)

	w.section(fmt.Sprintf("Active contracts (%d)", s.ActiveCount))
	w.table(contractHeaders, []float64{70, 25, 25, 25, 45, 20, 45}, contractRows(s.Active))

	return output(pdf)
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (w *pdfWriter) section(name string) {
	w.pdf.Ln(2)
	w.pdf.SetFont(w.font, "B", 12)
	w.pdf.CellFormat(0, 8, w.tr(name), "", 1, "L", false, 0, "")
}

func (w *pdfWriter) table(headers []string, widths []float64, rows [][]string) {
	w.pdf.SetFont(w.font, "B", 10)
	w.pdf.SetFillColor(255, 204, 0)
	for i, h := range headers {
		w.pdf.CellFormat(widths[i], 7, w.tr(h), "1", 0, "L", true, 0, "")
	}
	w.pdf.Ln(-1)

	w.pdf.SetFont(w.font, "", 10)
	for _, row := range rows {
		for i, col := range row {
			align := "L"
			if i > 0 && i == len(row)-1 || i >= 4 {
				align = "R"
			}
			w.pdf.CellFormat(widths[i], 7, w.tr(col), "1", 0, align, false, 0, "")
		}
		w.pdf.Ln(-1)
	}
}

func customerRows(rows []core.CustomerAmount) [][]string {
	out := make([][]string, 0, len(rows))
	for i, r := range rows {
		out = append(out, []string{strconv.Itoa(i + 1), r.Name, core.FormatEuros(r.Amount, 2)})
	}
	return out
}

func contractRows(contracts []core.Contract) [][]string {
	out := make([][]string, 0, len(contracts))
	for _, c := range contracts {
		out = append(out, []string{
			c.CustomerName,
			c.StartDate.String(),
			c.EndDate.String(),
			c.BookingDate.String(),
			core.FormatEuros(c.BookedRevenue, 2),
			strconv.Itoa(c.DurationMonths),
			core.FormatEuros(c.MonthlyRevenue, 2),
		})
	}
	return out
}
