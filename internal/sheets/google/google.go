package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"saldo/internal/core"
	"saldo/internal/export"
	ports "saldo/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const defaultSheetName = "Transactions"

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ ports.RowAppender = (*Client)(nil)

// Config selects the spreadsheet and the service account used to reach it.
type Config struct {
	SpreadsheetID      string
	SheetName          string // base name; the current year is prefixed
	ServiceAccountJSON string
	ServiceAccountFile string
}

// New creates a Sheets client authenticated with a service account.
// Extra options are passed to the Sheets service (tests point it at a fake
// endpoint with them).
func New(ctx context.Context, cfg Config, opts ...goption.ClientOption) (*Client, error) {
	spreadsheetID := strings.TrimSpace(cfg.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	base := strings.TrimSpace(cfg.SheetName)
	if base == "" {
		base = defaultSheetName
	}

	if len(opts) == 0 {
		credentials, err := loadCredentials(ctx, cfg)
		if err != nil {
			return nil, err
		}
		opts = []goption.ClientOption{
			goption.WithCredentialsJSON(credentials),
			goption.WithScopes(gsheet.SpreadsheetsScope),
		}
	}

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     yearPrefixedName(base, time.Now().Year()),
	}, nil
}

// loadCredentials reads the service account key, inline JSON first, then
// the file, then GOOGLE_APPLICATION_CREDENTIALS.
func loadCredentials(ctx context.Context, cfg Config) ([]byte, error) {
	inline := strings.TrimSpace(cfg.ServiceAccountJSON)
	file := strings.TrimSpace(cfg.ServiceAccountFile)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case inline != "":
		slog.DebugContext(ctx, "Using inline service account credentials", "component", "sheets")
		return []byte(inline), nil
	case file != "":
		slog.DebugContext(ctx, "Reading service account credentials", "component", "sheets", "path", file)
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// AppendRows writes rows after the last used row of the sheet. The header is
// written first when the sheet is empty.
func (c *Client) AppendRows(ctx context.Context, rows []core.ExportRow) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if len(rows) == 0 {
		return "", nil
	}

	existing, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.sheetName+"!A:A").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to get sheet dimensions for %s: %w", c.sheetName, err)
	}

	values := make([][]any, 0, len(rows)+1)
	if len(existing.Values) == 0 {
		values = append(values, toCells(export.Header))
	}
	for _, r := range rows {
		values = append(values, rowValues(r))
	}

	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, c.sheetName+"!A:F", &gsheet.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append rows to %s: %w", c.sheetName, err)
	}

	ref := ""
	if resp.Updates != nil {
		ref = resp.Updates.UpdatedRange
	}
	slog.InfoContext(ctx, "Rows appended to spreadsheet",
		"component", "sheets",
		"sheet", c.sheetName,
		"rows", len(rows),
		"range", ref)
	return ref, nil
}

// rowValues keeps the amount numeric so spreadsheet formulas can sum it.
func rowValues(r core.ExportRow) []any {
	return []any{
		r.Date.String(),
		r.KindLabel,
		r.CategoryName,
		r.Amount.Decimal().InexactFloat64(),
		r.Description,
		r.GoalName,
	}
}

func toCells(s []string) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a year.
func yearPrefixedName(base string, year int) string {
	b := strings.TrimSpace(base)
	if len(b) >= 5 && b[4] == ' ' {
		allDigits := true
		for _, r := range b[:4] {
			if r < '0' || r > '9' {
				allDigits = false
				break
			}
		}
		if allDigits {
			return b
		}
	}
	return fmt.Sprintf("%d %s", year, b)
}
