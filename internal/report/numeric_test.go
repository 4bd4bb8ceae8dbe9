package report

import (
	"encoding/json"
	"testing"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input any
		name  string
		want  float64
	}{
		{name: "grouping separators", input: "1,234.56", want: 1234.56},
		{name: "empty string", input: "", want: 0},
		{name: "absent", input: nil, want: 0},
		{name: "negative becomes absolute", input: "-50", want: 50},
		{name: "plain integer string", input: "42", want: 42},
		{name: "surrounding whitespace", input: "  1,000 ", want: 1000},
		{name: "unparsable", input: "n/a", want: 0},
		{name: "negative float", input: -12.5, want: 12.5},
		{name: "positive float", input: 12.5, want: 12.5},
		{name: "int", input: -7, want: 7},
		{name: "json number", input: json.Number("99.9"), want: 99.9},
		{name: "unsupported type", input: []string{"1"}, want: 0},
		{name: "multiple separators", input: "12,345,678.90", want: 12345678.90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseAmount(tt.input); got != tt.want {
				t.Errorf("ParseAmount(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsParseableAmount(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "zero is parseable", input: "0", want: true},
		{name: "empty is not", input: "", want: false},
		{name: "whitespace only is not", input: "   ", want: false},
		{name: "garbage is not", input: "abc", want: false},
		{name: "negative is parseable", input: "-10.00", want: true},
		{name: "grouped is parseable", input: "1,234", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsParseableAmount(tt.input); got != tt.want {
				t.Errorf("IsParseableAmount(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
