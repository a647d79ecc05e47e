package csvimport

import (
	"encoding/csv"
	"strings"
)

// DefaultDelimiter is used when a sample gives no hint at all.
const DefaultDelimiter = ';'

// candidates in tie-break priority order.
var candidates = []rune{';', ',', '\t'}

// DetectDelimiter guesses the field separator of a CSV sample.
//
// A candidate wins structurally when every non-empty line splits into the same
// number of fields, and that number is greater than one. When no candidate fits,
// the most frequent of ';' and ',' is used, then tab, then DefaultDelimiter.
func DetectDelimiter(sample string) rune {
	for _, c := range candidates {
		if splitsEvenly(sample, c) {
			return c
		}
	}

	semicolons := strings.Count(sample, ";")
	commas := strings.Count(sample, ",")
	switch {
	case semicolons > 0 && semicolons >= commas:
		return ';'
	case commas > 0:
		return ','
	case strings.ContainsRune(sample, '\t'):
		return '\t'
	default:
		return DefaultDelimiter
	}
}

func splitsEvenly(sample string, delim rune) bool {
	r := csv.NewReader(strings.NewReader(sample))
	r.Comma = delim
	r.LazyQuotes = true
	// FieldsPerRecord 0 pins the count to the first record and rejects deviations.
	r.FieldsPerRecord = 0

	records, err := r.ReadAll()
	if err != nil || len(records) == 0 {
		return false
	}
	return len(records[0]) > 1
}

// sampleLines returns the first n lines of raw joined by newlines.
func sampleLines(raw string, n int) string {
	lines := strings.SplitN(raw, "\n", n+1)
	if len(lines) > n {
		lines = lines[:n]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return strings.Join(lines, "\n")
}
