package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	appConfig "github.com/heladeria/order-form-api/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// valueInputUserEntered makes Sheets parse cells as if typed by a user
const valueInputUserEntered = "USER_ENTERED"

var sheetsScopes = []string{
	sheets.DriveScope,
	sheets.DriveFileScope,
	sheets.SpreadsheetsScope,
}

// SheetsAppender appends one row of cell values to the order spreadsheet
type SheetsAppender interface {
	Append(ctx context.Context, row []string) (*AppendResult, error)
}

// AppendResult is the spreadsheet's answer to an append
type AppendResult struct {
	SpreadsheetID string         `json:"spreadsheetId"`
	TableRange    string         `json:"tableRange"`
	Updates       *AppendUpdates `json:"updates,omitempty"`
}

// AppendUpdates describes the cells written by an append
type AppendUpdates struct {
	SpreadsheetID  string `json:"spreadsheetId"`
	UpdatedRange   string `json:"updatedRange"`
	UpdatedRows    int64  `json:"updatedRows"`
	UpdatedColumns int64  `json:"updatedColumns"`
	UpdatedCells   int64  `json:"updatedCells"`
}

// SheetsError carries the status and message reported by the Sheets API
type SheetsError struct {
	Code    int
	Message string
	Timeout bool
	Err     error
}

func (e *SheetsError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("sheets append failed (%d): %s", e.Code, e.Message)
	}
	return fmt.Sprintf("sheets append failed: %s", e.Message)
}

func (e *SheetsError) Unwrap() error {
	return e.Err
}

// Status returns the HTTP status to relay to the caller.
// Codes outside the 4xx/5xx range fall back to 500.
func (e *SheetsError) Status() int {
	if e.Timeout {
		return http.StatusGatewayTimeout
	}
	if e.Code < 400 || e.Code > 599 {
		return http.StatusInternalServerError
	}
	return e.Code
}

// GoogleSheetsService appends rows through the Google Sheets v4 API
type GoogleSheetsService struct {
	service       *sheets.Service
	spreadsheetID string
	writeRange    string
}

var sheetsServiceInstance SheetsAppender

// InitSheetsService authenticates with the service account from cfg and
// stores the resulting client as the process-wide appender
func InitSheetsService(ctx context.Context, cfg *appConfig.Config) (SheetsAppender, error) {
	jwtConfig := &jwt.Config{
		Email:      cfg.GoogleClientEmail,
		PrivateKey: []byte(cfg.GooglePrivateKey),
		Scopes:     sheetsScopes,
		TokenURL:   google.JWTTokenURL,
	}

	svc, err := sheets.NewService(ctx, option.WithHTTPClient(jwtConfig.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}

	sheetsServiceInstance = &GoogleSheetsService{
		service:       svc,
		spreadsheetID: cfg.GoogleSheetID,
		writeRange:    cfg.GoogleSheetRange,
	}
	return sheetsServiceInstance, nil
}

// GetSheetsService returns the initialized sheets appender
func GetSheetsService() SheetsAppender {
	return sheetsServiceInstance
}

// SetSheetsService sets the sheets appender (primarily for testing)
func SetSheetsService(service SheetsAppender) {
	sheetsServiceInstance = service
}

// Append writes row as a new line below the table found in the configured range
func (s *GoogleSheetsService) Append(ctx context.Context, row []string) (*AppendResult, error) {
	cells := make([]interface{}, len(row))
	for i, value := range row {
		cells[i] = value
	}

	resp, err := s.service.Spreadsheets.Values.
		Append(s.spreadsheetID, s.writeRange, &sheets.ValueRange{
			Values: [][]interface{}{cells},
		}).
		ValueInputOption(valueInputUserEntered).
		Context(ctx).
		Do()
	if err != nil {
		return nil, translateSheetsError(ctx, err)
	}

	return newAppendResult(resp), nil
}

func newAppendResult(resp *sheets.AppendValuesResponse) *AppendResult {
	result := &AppendResult{
		SpreadsheetID: resp.SpreadsheetId,
		TableRange:    resp.TableRange,
	}
	if resp.Updates != nil {
		result.Updates = &AppendUpdates{
			SpreadsheetID:  resp.Updates.SpreadsheetId,
			UpdatedRange:   resp.Updates.UpdatedRange,
			UpdatedRows:    resp.Updates.UpdatedRows,
			UpdatedColumns: resp.Updates.UpdatedColumns,
			UpdatedCells:   resp.Updates.UpdatedCells,
		}
	}
	return result
}

// translateSheetsError keeps the API's own status and message where one exists
func translateSheetsError(ctx context.Context, err error) *SheetsError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &SheetsError{
			Code:    http.StatusGatewayTimeout,
			Message: "spreadsheet did not answer in time",
			Timeout: true,
			Err:     err,
		}
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		message := apiErr.Message
		if message == "" {
			message = apiErr.Error()
		}
		return &SheetsError{Code: apiErr.Code, Message: message, Err: err}
	}

	var authErr *oauth2.RetrieveError
	if errors.As(err, &authErr) {
		code := 0
		if authErr.Response != nil {
			code = authErr.Response.StatusCode
		}
		return &SheetsError{Code: code, Message: authErr.Error(), Err: err}
	}

	return &SheetsError{Message: err.Error(), Err: err}
}
