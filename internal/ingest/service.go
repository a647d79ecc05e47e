// Package ingest routes a Portfolio Performance export to the matching parser.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/message"

	"github.com/badmin-c/pp-portfolio/internal/csvimport"
	"github.com/badmin-c/pp-portfolio/internal/domain"
	"github.com/badmin-c/pp-portfolio/internal/i18n"
	"github.com/badmin-c/pp-portfolio/internal/portfolio"
	"github.com/badmin-c/pp-portfolio/internal/ppxml"
)

var (
	typeMarkers  = []string{"typ", "type", "buchungsart"}
	shareMarkers = []string{"stück", "shares", "anteile"}
)

// HoldingEnricher fills in missing market data.
type HoldingEnricher interface {
	Enrich(ctx context.Context, holdings []domain.Holding) []domain.Holding
}

// Service ingests export files.
type Service struct {
	p        *message.Printer
	csv      *csvimport.Parser
	xml      *ppxml.Parser
	enricher HoldingEnricher // optional
}

// NewService creates an ingestion service. enricher may be nil to skip live prices.
func NewService(p *message.Printer, enricher HoldingEnricher) *Service {
	if p == nil {
		p = i18n.Default()
	}
	return &Service{
		p:        p,
		csv:      csvimport.NewParser(p),
		xml:      ppxml.NewParser(p),
		enricher: enricher,
	}
}

// Ingest parses the file at path. Problems with the file's content are reported
// through the returned Status; an error means the file could not be read at all.
func (s *Service) Ingest(ctx context.Context, path string) (domain.Result, domain.Status, error) {
	if _, err := os.Stat(path); err != nil {
		status := domain.NewStatus()
		status.Source = sourceForExt(path)
		if errors.Is(err, fs.ErrNotExist) {
			status.Fail(s.p.Sprintf(i18n.FileNotFound, path))
			slog.Warn("Ingest: file not found", "path", path, "runId", status.RunID)
			return domain.EmptyResult(), status, nil
		}
		status.Fail(err.Error())
		return domain.EmptyResult(), status, fmt.Errorf("checking %s: %w", path, err)
	}

	result, status, err := s.parse(path)
	if err != nil {
		return domain.EmptyResult(), status, err
	}

	if s.enricher != nil && len(result.Holdings) > 0 {
		result.Holdings = s.enricher.Enrich(ctx, result.Holdings)
	}
	result = portfolio.NewResult(result.Holdings)

	slog.Info("Ingest: loaded holdings",
		"holdings", len(result.Holdings),
		"value", domain.Round2(result.Totals.Value),
		"cost", domain.Round2(result.Totals.Cost),
		"gain", domain.Round2(result.Totals.GainAbs),
		"pct", domain.Round2(result.Totals.GainPct),
		"source", status.Source,
		"ok", status.OK,
		"runId", status.RunID,
	)
	return result, status, nil
}

func (s *Service) parse(path string) (domain.Result, domain.Status, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		raw, err := readText(path)
		if err != nil {
			return domain.EmptyResult(), failed(domain.SourceHoldingsCSV, err), err
		}
		if isTransactionLedger(raw) {
			result, status := s.csv.ParseTransactions(raw)
			return result, status, nil
		}
		result, status := s.csv.ParseHoldings(raw)
		return result, status, nil

	case ".portfolio":
		result, status, err := s.xml.ParseContainer(path)
		if err != nil {
			return result, status, fmt.Errorf("reading container: %w", err)
		}
		return result, status, nil

	case ".xml":
		f, err := os.Open(path)
		if err != nil {
			err = fmt.Errorf("opening %s: %w", path, err)
			return domain.EmptyResult(), failed(domain.SourceXML, err), err
		}
		defer f.Close()
		result, status := s.xml.Parse(f)
		return result, status, nil

	default:
		raw, err := readText(path)
		if err != nil {
			return domain.EmptyResult(), failed(domain.SourceAuto, err), err
		}
		result, status := s.csv.ParseHoldings(raw)
		status.Source = domain.SourceAuto
		return result, status, nil
	}
}

// isTransactionLedger reports whether the header line names both a transaction
// type and a share count.
func isTransactionLedger(raw string) bool {
	first, _, _ := strings.Cut(raw, "\n")
	first = strings.ToLower(first)
	has := func(markers []string) bool {
		return lo.SomeBy(markers, func(m string) bool { return strings.Contains(first, m) })
	}
	return has(typeMarkers) && has(shareMarkers)
}

// readText reads a text export. Files that are not valid UTF-8 are taken to be
// Windows-1252, the encoding of older German PP installations.
func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	if utf8.Valid(data) {
		return string(data), nil
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decoding %s: %w", path, err)
	}
	return string(decoded), nil
}

func sourceForExt(path string) domain.Source {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return domain.SourceHoldingsCSV
	case ".portfolio":
		return domain.SourceContainer
	case ".xml":
		return domain.SourceXML
	default:
		return domain.SourceAuto
	}
}

func failed(source domain.Source, err error) domain.Status {
	status := domain.NewStatus()
	status.Source = source
	status.Fail(err.Error())
	return status
}
