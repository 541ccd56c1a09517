package app

import (
	"reflect"
	"testing"
)

func TestExtractSymbols(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		want   []string
	}{
		{"explicit ticker", "Should I buy AAPL?", []string{"AAPL"}},
		{"company name", "Is apple overvalued right now?", []string{"AAPL"}},
		{"multiple tickers", "Compare MSFT and NVDA for growth", []string{"MSFT", "NVDA"}},
		{"name and ticker dedupe", "Thoughts on Tesla (TSLA)?", []string{"TSLA"}},
		{"stopwords ignored", "What is the CEO impact on the IPO market?", nil},
		{"no symbols", "How should I diversify a portfolio?", nil},
		{"mixed", "Does nvidia beat AMD this quarter?", []string{"AMD", "NVDA"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractSymbols(tt.prompt, 3)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractSymbols(%q) = %v, want %v", tt.prompt, got, tt.want)
			}
		})
	}
}

func TestExtractSymbols_CapsAtMax(t *testing.T) {
	got := ExtractSymbols("Compare AAPL MSFT NVDA TSLA AMZN", 3)
	if len(got) != 3 {
		t.Errorf("len = %d, want 3", len(got))
	}
	// Deterministic order: alphabetical, then truncated
	want := []string{"AAPL", "AMZN", "MSFT"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
