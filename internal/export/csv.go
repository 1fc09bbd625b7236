// Package export renders transaction export rows.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"saldo/internal/core"
)

// Header is the first line of every CSV export.
var Header = []string{"Date", "Type", "Category", "Amount", "Description", "Goal"}

// Record formats one row in header order. Amounts keep their sign and two
// decimals.
func Record(r core.ExportRow) []string {
	return []string{
		r.Date.String(),
		r.KindLabel,
		r.CategoryName,
		r.Amount.String(),
		r.Description,
		r.GoalName,
	}
}

// WriteCSV writes the header followed by rows in the given order.
func WriteCSV(w io.Writer, rows []core.ExportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i, r := range rows {
		if err := cw.Write(Record(r)); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
