// Package i18n holds the status message catalog shown to users.
//
// Message keys are the English texts; German translations follow the wording
// used by Portfolio Performance itself.
package i18n

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys.
const (
	FileNotFound       = "File not found: %s"
	RefreshFailed      = "Refresh failed: %v"
	UnknownName        = "Unknown"
	CSVEmpty           = "CSV is empty"
	CSVSecuritiesList  = "CSV looks like a securities list. In PP use 'Reports → Holdings → Export (CSV)' instead."
	TxMissingColumns   = "Transaction CSV needs a type column, a shares column and one of ticker, ISIN or name."
	TxUnpriced         = "Transaction CSV ok: %d positions (unpriced, values need live prices)."
	XMLUnreadable      = "XML could not be read: %v"
	XMLNoPositions     = "PP XML detected, but no holding transactions found."
	XMLOK              = "XML ok: %d positions."
	ContainerBinary    = "Binary .portfolio detected (PPPBV*). In PP use File → Save as… → **XML**, or Reports → Holdings → export CSV."
	ContainerUnknown   = "Unknown .portfolio inner format."
	ContainerEmpty     = "Empty or unknown .portfolio archive."
	ContainerNoArchive = "File is not a .portfolio archive: %v"
)

var german = map[string]string{
	FileNotFound:       "Datei nicht gefunden: %s",
	RefreshFailed:      "Aktualisierung fehlgeschlagen: %v",
	UnknownName:        "Unbekannt",
	CSVEmpty:           "CSV leer",
	CSVSecuritiesList:  "CSV scheint eine Wertpapierliste zu sein. Bitte in PP 'Berichte → Bestände → Exportieren (CSV)' verwenden.",
	TxMissingColumns:   "Umsatz-CSV braucht eine Typ-Spalte, eine Stück-Spalte und Ticker, ISIN oder Name.",
	TxUnpriced:         "Umsatz-CSV ok: %d Positionen (ohne Kurse, Werte erst mit Live-Kursen).",
	XMLUnreadable:      "XML konnte nicht gelesen werden: %v",
	XMLNoPositions:     "PP-XML erkannt, aber keine Bestands-Transaktionen gefunden.",
	XMLOK:              "XML ok: %d Positionen.",
	ContainerBinary:    "Binary .portfolio erkannt (PPPBV*). Bitte in PP: Datei → Speichern unter… → **XML** oder Berichte → Bestände → CSV exportieren.",
	ContainerUnknown:   "Unbekanntes .portfolio-Innenformat.",
	ContainerEmpty:     "Leeres oder unbekanntes .portfolio-Archiv.",
	ContainerNoArchive: "Datei ist kein .portfolio-Archiv: %v",
}

var (
	cat     = newCatalog()
	matcher = language.NewMatcher(cat.Languages())
)

func newCatalog() *catalog.Builder {
	b, err := buildCatalog(german)
	if err != nil {
		panic(err)
	}
	return b
}

// buildCatalog registers each key in English and its German translation.
func buildCatalog(translations map[string]string) (*catalog.Builder, error) {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, text := range translations {
		if err := b.SetString(language.German, key, text); err != nil {
			return nil, fmt.Errorf("german message %q: %w", key, err)
		}
		if err := b.SetString(language.English, key, key); err != nil {
			return nil, fmt.Errorf("english message %q: %w", key, err)
		}
	}
	return b, nil
}

// NewPrinter returns a printer for the best catalog match of lang ("de", "en-US", ...).
// Unparseable input falls back to German, the language of the export files.
func NewPrinter(lang string) *message.Printer {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.German
	}
	_, idx, _ := matcher.Match(tag)
	return message.NewPrinter(cat.Languages()[idx], message.Catalog(cat))
}

// Default is the printer used when a caller does not supply one.
func Default() *message.Printer {
	return NewPrinter("de")
}
