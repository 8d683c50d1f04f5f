package document

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/jwalitptl/clinic-ledger/internal/model"
)

// RenderXLSX writes rows to a single-sheet workbook. Money columns are
// numeric cells holding the exact decimal text, formatted with two decimals.
func RenderXLSX(rows []model.SummaryRow, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(SummaryColumns))
	for i, c := range SummaryColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(SummarySheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range rows {
		row := i + 2
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		values := []interface{}{date(r.AppointmentDate), r.Name, r.Mobile, r.City}
		if err := f.SetSheetRow(SummarySheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
		if err := setMoney(f, row, r.TotalAmount, r.TotalPaid, r.Balance); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := styleSummary(f, len(rows)); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write xlsx: %w", err)
	}
	return nil
}

// setMoney writes amounts into columns E onward. SetCellDefault stores the
// digits verbatim, so no float64 conversion touches the value.
func setMoney(f *excelize.File, row int, amounts ...decimal.Decimal) error {
	for i, a := range amounts {
		cell, err := excelize.CoordinatesToCellName(5+i, row)
		if err != nil {
			return err
		}
		if err := f.SetCellDefault(SummarySheet, cell, a.StringFixed(2)); err != nil {
			return err
		}
	}
	return nil
}

func styleSummary(f *excelize.File, n int) error {
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetCellStyle(SummarySheet, "A1", "G1", bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	if n > 0 {
		// builtin format 4 is "#,##0.00"
		money, err := f.NewStyle(&excelize.Style{NumFmt: 4})
		if err != nil {
			return fmt.Errorf("failed to create money style: %w", err)
		}
		last, err := excelize.CoordinatesToCellName(7, n+1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(SummarySheet, "E2", last, money); err != nil {
			return fmt.Errorf("failed to style amounts: %w", err)
		}
	}

	if err := f.SetColWidth(SummarySheet, "A", "A", 16); err != nil {
		return err
	}
	return f.SetColWidth(SummarySheet, "B", "G", 18)
}
