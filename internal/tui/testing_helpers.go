package tui

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/studiowebux/insightcli/internal/client"
	"github.com/studiowebux/insightcli/internal/config"
	"github.com/studiowebux/insightcli/internal/history"
)

// CreateTestModel creates a Model pointed at baseURL with a temporary
// history database and highlighting disabled.
func CreateTestModel(t *testing.T, baseURL string) *Model {
	t.Helper()

	c, err := client.New(client.Options{BaseURL: baseURL})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	store, err := history.NewManager(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create history manager: %v", err)
	}

	cfg := config.Default()
	cfg.BaseURL = baseURL
	cfg.Highlight = false

	m, err := New(Options{
		Client:  c,
		Config:  cfg,
		History: store,
		Logger:  zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("Failed to create test model: %v", err)
	}
	t.Cleanup(m.Cleanup)

	return &m
}

// AssertModelField is a generic helper for checking model field values
func AssertModelField[T comparable](t *testing.T, fieldName string, got, want T) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %v, want %v", fieldName, got, want)
	}
}

// AssertNoError verifies that an error is nil
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}

// AssertError verifies that an error occurred
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Error("Expected error but got nil")
	}
}
