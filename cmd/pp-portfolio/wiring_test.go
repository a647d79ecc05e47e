package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/badmin-c/pp-portfolio/internal/config"
	"github.com/badmin-c/pp-portfolio/internal/domain"
)

func TestOpenSnapshotsDisabled(t *testing.T) {
	svc, closeFn, err := openSnapshots(context.Background(), config.Defaults())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer closeFn()
	if svc != nil {
		t.Error("snapshot service created without DATABASE_URL")
	}
}

func TestOpenSnapshotsSQLite(t *testing.T) {
	cfg := config.Defaults()
	cfg.DatabaseURL = "sqlite://" + filepath.Join(t.TempDir(), "pp.db")

	svc, closeFn, err := openSnapshots(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer closeFn()

	status := domain.NewStatus()
	if err := svc.AfterRefresh(context.Background(), domain.EmptyResult(), status); err != nil {
		t.Fatalf("recording snapshot: %v", err)
	}
	if _, err := svc.GetLatest(context.Background()); err != nil {
		t.Errorf("latest snapshot: %v", err)
	}
}

func TestOpenSnapshotsUnsupportedURL(t *testing.T) {
	cfg := config.Defaults()
	cfg.DatabaseURL = "mysql://localhost/pp"
	if _, _, err := openSnapshots(context.Background(), cfg); err == nil {
		t.Error("expected error for unsupported scheme")
	}
}

func TestNewExporter(t *testing.T) {
	cfg := config.Defaults()
	if n := newExporter(context.Background(), cfg).Len(); n != 0 {
		t.Errorf("writers = %d, want 0", n)
	}

	cfg.XLSXExportPath = filepath.Join(t.TempDir(), "pp.xlsx")
	cfg.SheetsSpreadsheetID = "sheet-id" // no credentials: skipped
	if n := newExporter(context.Background(), cfg).Len(); n != 1 {
		t.Errorf("writers = %d, want 1", n)
	}
}
