package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/text/message"

	"github.com/badmin-c/pp-portfolio/internal/config"
	"github.com/badmin-c/pp-portfolio/internal/database"
	"github.com/badmin-c/pp-portfolio/internal/export"
	"github.com/badmin-c/pp-portfolio/internal/external"
	"github.com/badmin-c/pp-portfolio/internal/ingest"
	"github.com/badmin-c/pp-portfolio/internal/snapshot"
)

// setupLogger installs the process-wide slog handler.
func setupLogger(cfg config.Config) {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// newIngester builds the ingestion service, with quote enrichment when live prices are on.
func newIngester(cfg config.Config, p *message.Printer) *ingest.Service {
	if !cfg.LivePrices {
		return ingest.NewService(p, nil)
	}
	yahoo := external.NewYahooClient(cfg.QuoteURL, cfg.QuoteTimeout)
	return ingest.NewService(p, external.NewEnricher(yahoo, cfg.QuoteBatchSize))
}

// openSnapshots connects the snapshot store named by DATABASE_URL and runs its
// migrations. It returns a nil service when persistence is not configured.
func openSnapshots(ctx context.Context, cfg config.Config) (*snapshot.Service, func(), error) {
	driver, dsn, err := database.ParseURL(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}

	if driver == database.DriverNone {
		slog.Info("DATABASE_URL not set, snapshots disabled")
		return nil, func() {}, nil
	}
	migrations, err := database.Migrations(driver)
	if err != nil {
		return nil, nil, fmt.Errorf("loading migrations: %w", err)
	}

	switch driver {
	case database.DriverPostgres:
		pool, err := database.Connect(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		if err := database.RunMigrations(ctx, pool, migrations); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("running migrations: %w", err)
		}
		return snapshot.NewService(snapshot.NewPgRepository(pool)), pool.Close, nil

	case database.DriverSQLite:
		db, err := database.OpenSQLite(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		if err := database.RunSQLiteMigrations(ctx, db, migrations); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("running migrations: %w", err)
		}
		return snapshot.NewService(snapshot.NewSQLiteRepository(db)), func() { db.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// newExporter builds the export hook from the configured destinations.
func newExporter(ctx context.Context, cfg config.Config) *export.Service {
	var writers []export.Writer

	if cfg.XLSXExportPath != "" {
		writers = append(writers, export.NewXLSXWriter(cfg.XLSXExportPath))
	}

	if cfg.SheetsSpreadsheetID != "" {
		if cfg.GoogleCredentialsJSON == "" {
			slog.Warn("SHEETS_SPREADSHEET_ID set without GOOGLE_CREDENTIALS_JSON, sheets export disabled")
		} else {
			sw, err := export.NewSheetsWriter(ctx, cfg.SheetsSpreadsheetID, cfg.GoogleCredentialsJSON)
			if err != nil {
				slog.Error("sheets export disabled", "error", err)
			} else {
				writers = append(writers, sw)
			}
		}
	}

	return export.NewService(writers...)
}
