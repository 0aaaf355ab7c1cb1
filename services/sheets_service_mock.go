package services

import (
	"context"
	"fmt"
	"sync"
)

// MockSheetsService is an in-memory SheetsAppender for testing
type MockSheetsService struct {
	mu    sync.RWMutex
	rows  [][]string
	err   error
	sheet string
}

// NewMockSheetsService creates a mock that appends to "Hoja 1"
func NewMockSheetsService() *MockSheetsService {
	return &MockSheetsService{sheet: "Hoja 1"}
}

// SetAsMockForTesting sets this mock as the global sheets appender
func (m *MockSheetsService) SetAsMockForTesting() {
	SetSheetsService(m)
}

// FailWith makes every following Append return err
func (m *MockSheetsService) FailWith(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

// Append records row and reports the range it would occupy
func (m *MockSheetsService) Append(ctx context.Context, row []string) (*AppendResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, translateSheetsError(ctx, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}

	copied := append([]string(nil), row...)
	m.rows = append(m.rows, copied)

	line := len(m.rows) + 1
	lastColumn := string(rune('A' + len(row) - 1))
	updated := fmt.Sprintf("'%s'!A%d:%s%d", m.sheet, line, lastColumn, line)

	return &AppendResult{
		SpreadsheetID: "mock-spreadsheet",
		TableRange:    fmt.Sprintf("'%s'!A1:%s%d", m.sheet, lastColumn, line-1),
		Updates: &AppendUpdates{
			SpreadsheetID:  "mock-spreadsheet",
			UpdatedRange:   updated,
			UpdatedRows:    1,
			UpdatedColumns: int64(len(row)),
			UpdatedCells:   int64(len(row)),
		},
	}, nil
}

// Rows returns a copy of every appended row (for testing assertions)
func (m *MockSheetsService) Rows() [][]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows := make([][]string, len(m.rows))
	for i, row := range m.rows {
		rows[i] = append([]string(nil), row...)
	}
	return rows
}

// Calls returns the number of successful appends
func (m *MockSheetsService) Calls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rows)
}

// Clear removes all recorded rows and any configured failure
func (m *MockSheetsService) Clear() {
	m.mu.Lock()
	m.rows = nil
	m.err = nil
	m.mu.Unlock()
}
