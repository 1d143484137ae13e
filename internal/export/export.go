// Package export renders a dashboard snapshot as a downloadable workbook or
// PDF report.
package export

import (
	"fmt"

	"runrate/internal/core"
	"runrate/internal/services"
)

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypePDF  = "application/pdf"
)

var contractHeaders = []string{"Customer", "Start", "End", "Booking", "Booked revenue", "Months", "Monthly revenue"}

// Filename builds the attachment name for a dashboard export.
func Filename(d services.Dashboard, ext string) string {
	day := d.Summary.AsOf
	if day.IsZero() {
		day = core.DateOf(d.GeneratedAt)
	}
	return fmt.Sprintf("runrate-%s.%s", day.String(), ext)
}

func title(d services.Dashboard) string {
	if d.Title == "" {
		return "Run Rate"
	}
	return d.Title
}
