package csvimport

import "testing"

func TestDetectDelimiter(t *testing.T) {
	tests := []struct {
		name   string
		sample string
		want   rune
	}{
		{"three column semicolon", "Name;Bestand;Wert\nApple;10;1.500,00\nSAP;5;600,00", ';'},
		{"unambiguous comma", "name,shares,value\nApple,10,1500.00\nSAP,5,600.00", ','},
		{"tab separated", "name\tshares\nApple\t10", '\t'},
		{"no delimiter falls back to default", "justonecolumn\nanother", ';'},
		{"empty sample", "", ';'},
		{"quoted comma inside semicolon file", "Name;Wert\n\"Foo, Inc.\";1,5\nBar;2,5", ';'},
		{"ragged semicolon prefers frequency", "a;b;c\nd;e\nf", ';'},
		{"ragged comma only", "a,b,c\nd,e\nf", ','},
		{"ragged tab only", "a\tb\tc\nd", '\t'},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectDelimiter(tt.sample); got != tt.want {
				t.Errorf("DetectDelimiter() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectDelimiterTieUsesPriority(t *testing.T) {
	// Both ';' and ',' split every line into two fields.
	if got := DetectDelimiter("a;b,c\nd;e,f"); got != ';' {
		t.Errorf("DetectDelimiter() = %q, want ';'", got)
	}
}

func TestSampleLines(t *testing.T) {
	if got := sampleLines("1\r\n2\r\n3\n4\n5\n6\n7", 5); got != "1\n2\n3\n4\n5" {
		t.Errorf("sampleLines() = %q, want first five lines", got)
	}
	if got := sampleLines("only", 5); got != "only" {
		t.Errorf("sampleLines() = %q, want %q", got, "only")
	}
}
