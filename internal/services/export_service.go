package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"saldo/internal/core"
	"saldo/internal/export"
	"saldo/internal/sheets"
	"saldo/internal/storage"
)

// ErrSinkNotConfigured is returned by PushToSheet when no spreadsheet is set up.
var ErrSinkNotConfigured = errors.New("spreadsheet export not configured")

// ExportService produces transaction exports, newest first.
type ExportService struct {
	storage *storage.SQLiteRepository
	sink    sheets.RowAppender
}

// NewExportService builds the service; sink may be nil.
func NewExportService(storage *storage.SQLiteRepository, sink sheets.RowAppender) *ExportService {
	return &ExportService{storage: storage, sink: sink}
}

func (s *ExportService) Rows(ctx context.Context, owner string, f core.TransactionFilter) ([]core.ExportRow, error) {
	rows, err := s.storage.ForOwner(owner).ExportRows(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("load export rows: %w", err)
	}
	return rows, nil
}

// WriteCSV streams the export for owner as CSV into w.
func (s *ExportService) WriteCSV(ctx context.Context, owner string, f core.TransactionFilter, w io.Writer) (int, error) {
	rows, err := s.Rows(ctx, owner, f)
	if err != nil {
		return 0, err
	}
	if err := export.WriteCSV(w, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// HasSink reports whether PushToSheet can be used.
func (s *ExportService) HasSink() bool {
	return s.sink != nil
}

// PushToSheet appends the export for owner to the configured spreadsheet.
func (s *ExportService) PushToSheet(ctx context.Context, owner string, f core.TransactionFilter) (string, int, error) {
	if s.sink == nil {
		return "", 0, ErrSinkNotConfigured
	}
	rows, err := s.Rows(ctx, owner, f)
	if err != nil {
		return "", 0, err
	}
	ref, err := s.sink.AppendRows(ctx, rows)
	if err != nil {
		return "", 0, fmt.Errorf("push export to sheet: %w", err)
	}
	slog.InfoContext(ctx, "Export pushed to spreadsheet",
		"owner", owner,
		"rows", len(rows),
		"range", ref)
	return ref, len(rows), nil
}
