package sheets

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

// AuditLog appends one row per appointment transition to the clinic's
// spreadsheet. The sheet is a best-effort audit trail, not the source of
// truth; callers log and discard failures.
type AuditLog struct {
	svc           *gsheets.Service
	spreadsheetID string
}

// NewAuditLog builds a Sheets client from a service-account credentials file.
func NewAuditLog(ctx context.Context, credentialsFile, spreadsheetID string) (*AuditLog, error) {
	svc, err := gsheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(gsheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("sheets: create service: %w", err)
	}
	return &AuditLog{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// Append adds one row to the first sheet.
func (a *AuditLog) Append(ctx context.Context, row []string) error {
	values := make([]interface{}, len(row))
	for i, v := range row {
		values[i] = v
	}
	_, err := a.svc.Spreadsheets.Values.Append(a.spreadsheetID, "Sheet1!A1", &gsheets.ValueRange{
		Values: [][]interface{}{values},
	}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets: append row: %w", err)
	}
	return nil
}
