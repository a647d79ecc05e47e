package ingest

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/badmin-c/pp-portfolio/internal/domain"
	"github.com/badmin-c/pp-portfolio/internal/i18n"
)

const holdingsCSV = "Wertpapier;Symbol;Bestand;Kurs;Einstandswert;Marktwert\n" +
	"Apple;AAPL;10;150,00;1.200,00;1.500,00\n" +
	"SAP;SAP;5;0;500,00;0\n"

const ledgerCSV = "Datum;Typ;Ticker;Stück;Betrag\n" +
	"2024-01-02;Kauf;ABC;5;100,00\n" +
	"2024-01-03;Kauf;ABC;3;60,00\n"

const portfolioXML = `<client><securities><security><uuid>u1</uuid><name>Alpha</name>
<prices><price t="2024-01-01" v="5000000000"/></prices></security></securities>
<portfolio-transaction><amount>10000</amount><security reference="securities/security[1]"/><shares>2000000000</shares><type>BUY</type></portfolio-transaction>
</client>`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

type mockEnricher struct {
	calls int
	price float64
}

func (m *mockEnricher) Enrich(_ context.Context, holdings []domain.Holding) []domain.Holding {
	m.calls++
	out := make([]domain.Holding, len(holdings))
	for i, h := range holdings {
		if h.Price == 0 {
			h.Price = m.price
			h.Value = h.Price * h.Quantity
		}
		out[i] = h
	}
	return out
}

func TestIngestMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.csv")

	result, status, err := NewService(nil, nil).Ingest(context.Background(), path)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.OK {
		t.Error("status ok for missing file")
	}
	if want := "Datei nicht gefunden: " + path; status.Message != want {
		t.Errorf("Message = %q, want %q", status.Message, want)
	}
	if result.Holdings == nil || len(result.Holdings) != 0 {
		t.Errorf("Holdings = %#v, want empty non-nil slice", result.Holdings)
	}
	if result.Totals != (domain.Totals{}) {
		t.Errorf("Totals = %+v, want zero", result.Totals)
	}
}

func TestIngestRoutesByExtension(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		source   domain.Source
		holdings int
	}{
		{"holdings csv", "bestand.csv", holdingsCSV, domain.SourceHoldingsCSV, 2},
		{"upper case extension", "BESTAND.CSV", holdingsCSV, domain.SourceHoldingsCSV, 2},
		{"transaction ledger", "umsaetze.csv", ledgerCSV, domain.SourceTransactionCSV, 1},
		{"xml", "depot.xml", portfolioXML, domain.SourceXML, 1},
		{"unknown extension", "export.txt", holdingsCSV, domain.SourceAuto, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.content)

			result, status, err := NewService(nil, nil).Ingest(context.Background(), path)

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !status.OK {
				t.Errorf("status not ok: %s", status.Message)
			}
			if status.Source != tt.source {
				t.Errorf("Source = %q, want %q", status.Source, tt.source)
			}
			if len(result.Holdings) != tt.holdings {
				t.Errorf("holdings = %d, want %d", len(result.Holdings), tt.holdings)
			}
		})
	}
}

func TestIngestContainer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "depot.portfolio")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating archive: %v", err)
	}
	zw := zip.NewWriter(f)
	w, err := zw.Create("data.xml")
	if err != nil {
		t.Fatalf("creating member: %v", err)
	}
	if _, err := w.Write([]byte(portfolioXML)); err != nil {
		t.Fatalf("writing member: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing archive: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("closing file: %v", err)
	}

	result, status, err := NewService(nil, nil).Ingest(context.Background(), path)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !status.OK {
		t.Errorf("status not ok: %s", status.Message)
	}
	if status.Source != domain.SourceContainer {
		t.Errorf("Source = %q, want %q", status.Source, domain.SourceContainer)
	}
	if len(result.Holdings) != 1 {
		t.Fatalf("holdings = %d, want 1", len(result.Holdings))
	}
	if result.Holdings[0].Price != 50 {
		t.Errorf("Price = %v, want 50", result.Holdings[0].Price)
	}
	if result.Totals.Value != 100 {
		t.Errorf("Totals.Value = %v, want 100", result.Totals.Value)
	}
}

func TestIngestCorruptContainerIsAnError(t *testing.T) {
	path := writeFile(t, "broken.portfolio", "not a zip")

	result, _, err := NewService(nil, nil).Ingest(context.Background(), path)

	if err == nil {
		t.Error("expected error for corrupt container")
	}
	if len(result.Holdings) != 0 {
		t.Errorf("holdings = %d, want 0", len(result.Holdings))
	}
}

func TestIngestIsIdempotent(t *testing.T) {
	path := writeFile(t, "umsaetze.csv", ledgerCSV)
	svc := NewService(nil, nil)

	first, _, err := svc.Ingest(context.Background(), path)
	if err != nil {
		t.Fatalf("first ingest: %v", err)
	}
	second, _, err := svc.Ingest(context.Background(), path)
	if err != nil {
		t.Fatalf("second ingest: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("results differ:\n%+v\n%+v", first, second)
	}
	if second.Holdings[0].Quantity != 8 || second.Totals.Cost != 160 {
		t.Errorf("quantity/cost = %v/%v, want 8/160", second.Holdings[0].Quantity, second.Totals.Cost)
	}
}

func TestIngestFreshStatusPerCall(t *testing.T) {
	svc := NewService(nil, nil)
	missing := filepath.Join(t.TempDir(), "missing.csv")
	present := writeFile(t, "bestand.csv", holdingsCSV)

	_, first, _ := svc.Ingest(context.Background(), missing)
	_, second, _ := svc.Ingest(context.Background(), present)

	if first.OK || !second.OK {
		t.Errorf("ok = %v/%v, want false/true", first.OK, second.OK)
	}
	if second.Message != "" {
		t.Errorf("Message = %q, want empty", second.Message)
	}
	if first.RunID == second.RunID {
		t.Errorf("RunID reused: %v", first.RunID)
	}
}

func TestIngestEnrichesAndRecomputesTotals(t *testing.T) {
	path := writeFile(t, "umsaetze.csv", ledgerCSV)
	enricher := &mockEnricher{price: 25}

	result, _, err := NewService(i18n.NewPrinter("en"), enricher).Ingest(context.Background(), path)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if enricher.calls != 1 {
		t.Errorf("enricher calls = %d, want 1", enricher.calls)
	}
	if len(result.Holdings) != 1 {
		t.Fatalf("holdings = %d, want 1", len(result.Holdings))
	}
	if result.Holdings[0].Value != 200 {
		t.Errorf("Value = %v, want 200", result.Holdings[0].Value)
	}
	if result.Totals.Value != 200 || result.Totals.Cost != 160 {
		t.Errorf("Totals = %+v, want value 200 cost 160", result.Totals)
	}
}

func TestIngestWindows1252(t *testing.T) {
	content := "Wertpapier;St\xfcck;Kurs;W\xe4hrung\nM\xfcnchener R\xfcck;2;300,00;EUR\n"
	path := writeFile(t, "bestand.csv", content)

	result, status, err := NewService(nil, nil).Ingest(context.Background(), path)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !status.OK {
		t.Fatalf("status not ok: %s", status.Message)
	}
	if len(result.Holdings) != 1 {
		t.Fatalf("holdings = %d, want 1", len(result.Holdings))
	}
	if result.Holdings[0].Name != "Münchener Rück" {
		t.Errorf("Name = %q, want Münchener Rück", result.Holdings[0].Name)
	}
	if result.Holdings[0].Value != 600 {
		t.Errorf("Value = %v, want 600", result.Holdings[0].Value)
	}
}

func TestIsTransactionLedger(t *testing.T) {
	tests := []struct {
		head string
		want bool
	}{
		{"Datum;Typ;Wertpapier;Stück\n", true},
		{"Date,Type,Symbol,Shares\n", true},
		{"Buchungsart;Anteile;ISIN", true},
		{"Wertpapier;Bestand;Kurs\nKauf;Stück\n", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := isTransactionLedger(tt.head); got != tt.want {
			t.Errorf("isTransactionLedger(%q) = %v, want %v", tt.head, got, tt.want)
		}
	}
}
