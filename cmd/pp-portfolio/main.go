package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/badmin-c/pp-portfolio/internal/api"
	"github.com/badmin-c/pp-portfolio/internal/config"
	"github.com/badmin-c/pp-portfolio/internal/export"
	"github.com/badmin-c/pp-portfolio/internal/i18n"
	"github.com/badmin-c/pp-portfolio/internal/report"
	"github.com/badmin-c/pp-portfolio/internal/worker"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	setupLogger(cfg)

	sourceFlags := func(extra ...cli.Flag) []cli.Flag {
		return append([]cli.Flag{
			&cli.StringFlag{
				Name:    "path",
				Aliases: []string{"p"},
				Value:   cfg.Path,
				Usage:   "Portfolio Performance export (.csv, .xml or .portfolio)",
			},
			&cli.BoolFlag{
				Name:  "live-prices",
				Value: cfg.LivePrices,
				Usage: "fill missing prices from the quote service",
			},
		}, extra...)
	}

	app := &cli.App{
		Name:  "pp-portfolio",
		Usage: "read Portfolio Performance exports and serve the resulting holdings",
		Commands: []*cli.Command{
			{
				Name:  "ingest",
				Usage: "parse the export once and print the result",
				Flags: sourceFlags(
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "json", Usage: "json or markdown"},
					&cli.StringFlag{Name: "style", Usage: "markdown style (dark, light, notty); empty detects the terminal"},
				),
				Action: func(c *cli.Context) error {
					cfg.Path = c.String("path")
					cfg.LivePrices = c.Bool("live-prices")
					return runIngest(c.Context, cfg, c.String("format"), c.String("style"))
				},
			},
			{
				Name:  "serve",
				Usage: "refresh periodically and serve the HTTP API",
				Flags: sourceFlags(),
				Action: func(c *cli.Context) error {
					cfg.Path = c.String("path")
					cfg.LivePrices = c.Bool("live-prices")
					return runServe(c.Context, cfg)
				},
			},
			{
				Name:  "export",
				Usage: "parse the export once and write it to a workbook",
				Flags: sourceFlags(
					&cli.StringFlag{Name: "xlsx", Value: cfg.XLSXExportPath, Usage: "output workbook", Required: cfg.XLSXExportPath == ""},
				),
				Action: func(c *cli.Context) error {
					cfg.Path = c.String("path")
					cfg.LivePrices = c.Bool("live-prices")
					return runExport(c.Context, cfg, c.String("xlsx"))
				},
			},
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func runIngest(ctx context.Context, cfg config.Config, format, style string) error {
	result, status, err := newIngester(cfg, i18n.NewPrinter(cfg.Language)).Ingest(ctx, cfg.Path)
	if err != nil {
		return err
	}

	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(worker.State{Result: result, Status: status})
	case "markdown", "md":
		out, err := report.Render(report.Markdown(result, status), style, 100)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(os.Stdout, out)
		return err
	default:
		return fmt.Errorf("unknown format %q, want json or markdown", format)
	}
}

func runExport(ctx context.Context, cfg config.Config, xlsxPath string) error {
	result, status, err := newIngester(cfg, i18n.NewPrinter(cfg.Language)).Ingest(ctx, cfg.Path)
	if err != nil {
		return err
	}
	if !status.OK {
		slog.Warn("exporting a not-ok result", "message", status.Message)
	}
	if err := export.NewXLSXWriter(xlsxPath).Write(ctx, result, status); err != nil {
		return err
	}
	slog.Info("workbook written", "path", xlsxPath, "holdings", len(result.Holdings))
	return nil
}

func runServe(ctx context.Context, cfg config.Config) error {
	p := i18n.NewPrinter(cfg.Language)

	snapshots, closeDB, err := openSnapshots(ctx, cfg)
	if err != nil {
		return fmt.Errorf("opening snapshot store: %w", err)
	}
	defer closeDB()

	var hooks []worker.AfterRefreshHook
	if snapshots != nil {
		hooks = append(hooks, snapshots)
	}
	if exporter := newExporter(ctx, cfg); exporter.Len() > 0 {
		hooks = append(hooks, exporter)
	}

	store := worker.NewStore()
	refresher := worker.NewRefreshWorker(newIngester(cfg, p), cfg.Path, cfg.ScanInterval, store, p, hooks...)
	go refresher.Run(ctx)

	if cfg.AdminAPIKey == "" {
		slog.Warn("ADMIN_API_KEY not set, refresh endpoint is unprotected")
	}

	srv := api.NewServer(api.Options{
		Port:           cfg.HTTPPort,
		AdminAPIKey:    cfg.AdminAPIKey,
		IncludeDetails: cfg.IncludeDetails,
	}, store, refresher, snapshots)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	slog.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}
	slog.Info("Shutdown complete")
	return nil
}
