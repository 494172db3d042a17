package sheets

import (
	"context"

	"google.golang.org/api/sheets/v4"
)

// spreadsheetAPI is the part of the Sheets API the writer uses.
type spreadsheetAPI interface {
	Get(ctx context.Context, spreadsheetID string) (*sheets.Spreadsheet, error)
	Create(ctx context.Context, spreadsheet *sheets.Spreadsheet) (*sheets.Spreadsheet, error)
	BatchUpdate(ctx context.Context, spreadsheetID string, req *sheets.BatchUpdateSpreadsheetRequest) error
	ClearValues(ctx context.Context, spreadsheetID, rng string) error
	UpdateValues(ctx context.Context, spreadsheetID, rng string, values [][]any) error
}

type serviceAPI struct {
	srv *sheets.Service
}

func (a *serviceAPI) Get(ctx context.Context, spreadsheetID string) (*sheets.Spreadsheet, error) {
	return a.srv.Spreadsheets.Get(spreadsheetID).Context(ctx).Do()
}

func (a *serviceAPI) Create(ctx context.Context, spreadsheet *sheets.Spreadsheet) (*sheets.Spreadsheet, error) {
	return a.srv.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
}

func (a *serviceAPI) BatchUpdate(ctx context.Context, spreadsheetID string, req *sheets.BatchUpdateSpreadsheetRequest) error {
	_, err := a.srv.Spreadsheets.BatchUpdate(spreadsheetID, req).Context(ctx).Do()
	return err
}

func (a *serviceAPI) ClearValues(ctx context.Context, spreadsheetID, rng string) error {
	_, err := a.srv.Spreadsheets.Values.Clear(spreadsheetID, rng, &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

// UpdateValues writes RAW so free text starting with "=" is never evaluated as a formula.
func (a *serviceAPI) UpdateValues(ctx context.Context, spreadsheetID, rng string, values [][]any) error {
	_, err := a.srv.Spreadsheets.Values.Update(spreadsheetID, rng, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}
