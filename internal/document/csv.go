package document

import (
	"encoding/csv"
	"fmt"
	"io"
)

// RenderCSV writes the header row followed by every table row.
func RenderCSV(t *Table, w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Columns); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	if err := writer.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("failed to write csv rows: %w", err)
	}
	return nil
}
