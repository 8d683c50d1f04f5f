package document

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jwalitptl/clinic-ledger/internal/model"
)

// SummarySheet is the worksheet name of the XLSX export.
const SummarySheet = "Patients Report"

// SummaryColumns are the export columns in order.
var SummaryColumns = []string{
	"Appointment Date",
	"Patient Name",
	"Mobile",
	"City",
	"Final Amount",
	"Total Paid",
	"Balance",
}

// Format selects the summary export encoding.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// ParseFormat accepts "xlsx" or "csv" in any case. Empty means xlsx.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatXLSX:
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// FileName is the download name of an export produced on day.
func (f Format) FileName(day time.Time) string {
	return fmt.Sprintf("patients_financial_report_%s.%s", day.Format(model.DateLayout), f)
}

// BuildSummary lays out one row per patient in the order given.
func BuildSummary(rows []model.SummaryRow) *Table {
	t := &Table{Columns: SummaryColumns, Rows: make([][]string, 0, len(rows))}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			date(r.AppointmentDate),
			r.Name,
			r.Mobile,
			r.City,
			Money(r.TotalAmount),
			Money(r.TotalPaid),
			Money(r.Balance),
		})
	}
	return t
}

// WriteSummary encodes rows in format f.
func WriteSummary(w io.Writer, f Format, rows []model.SummaryRow) error {
	switch f {
	case FormatCSV:
		return RenderCSV(BuildSummary(rows), w)
	case FormatXLSX:
		return RenderXLSX(rows, w)
	default:
		return fmt.Errorf("unsupported export format %q", f)
	}
}
