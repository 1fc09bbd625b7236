package sheets

import (
	"context"

	"saldo/internal/core"
)

// Ports for outbound adapters.
type (
	// RowAppender appends export rows to an external spreadsheet and returns
	// the range that was written.
	RowAppender interface {
		AppendRows(ctx context.Context, rows []core.ExportRow) (rangeRef string, err error)
	}
)
