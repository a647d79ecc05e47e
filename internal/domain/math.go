package domain

import (
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
)

var numberNoise = strings.NewReplacer("€", "", "%", "", "\u00a0", " ")

// ParseNumber parses a locale-ambiguous numeric cell into a float, returning zero for
// empty, placeholder or unparseable input.
//
// When both ',' and '.' occur, whichever appears last is the decimal separator.
// A lone ',' is a decimal separator; otherwise ',' is a thousands separator.
// "1.234,56" and "1,234.56" both yield 1234.56.
func ParseNumber(text string) float64 {
	s := strings.TrimSpace(text)
	if s == "" || s == "-" {
		return 0
	}
	s = strings.TrimSpace(numberNoise.Replace(s))
	s = strings.ReplaceAll(s, " ", "")

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma < lastDot {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		}
	case lastComma >= 0:
		s = strings.ReplaceAll(s, ",", ".")
	default:
		s = strings.ReplaceAll(s, ",", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		slog.Debug("could not parse number", "text", text)
		return 0
	}
	f, _ := d.Float64()
	return f
}
