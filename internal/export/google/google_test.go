package google

import (
	"context"
	"errors"
	"strings"
	"testing"

	"spendlog/internal/core"
)

func TestNewClient_MissingSpreadsheetID(t *testing.T) {
	_, err := NewClient(context.Background(), Config{})
	if err == nil {
		t.Fatal("expected error for missing spreadsheet ID")
	}
	if err.Error() != "missing spreadsheet ID" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNewClient_MissingCredentials(t *testing.T) {
	_, err := NewClient(context.Background(), Config{SpreadsheetID: "test-id"})
	if err == nil {
		t.Fatal("expected error for missing credentials")
	}
	if !strings.Contains(err.Error(), "missing service account credentials") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNewClient_UnreadableCredentialsFile(t *testing.T) {
	_, err := NewClient(context.Background(), Config{
		SpreadsheetID:      "test-id",
		ServiceAccountFile: "/non/existent/file.json",
	})
	if err == nil {
		t.Fatal("expected error for unreadable credentials file")
	}
	if !strings.Contains(err.Error(), "read service account file") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestClient_AppendValidatesRecord(t *testing.T) {
	c := &Client{spreadsheetID: "test", sheetName: "Expenses"}

	invalid := core.ExpenseRecord{
		Date:     "2025-03-14",
		Category: "food",
		Amount:   core.Money{Cents: 0},
		Currency: "USD",
	}

	_, err := c.Append(context.Background(), invalid)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got: %v", err)
	}
}

func TestClient_AppendWithoutService(t *testing.T) {
	c := &Client{spreadsheetID: "test", sheetName: "Expenses"}

	valid := core.ExpenseRecord{
		Date:     "2025-03-14",
		Category: "food",
		Amount:   core.Money{Cents: 1250},
		Currency: "USD",
	}

	_, err := c.Append(context.Background(), valid)
	if err == nil {
		t.Fatal("expected error with nil service")
	}
	if !strings.Contains(err.Error(), "not initialized") {
		t.Errorf("unexpected error: %v", err)
	}
}
