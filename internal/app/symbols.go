package app

import (
	"regexp"
	"sort"
	"strings"
)

// tickerPattern matches candidate ticker symbols: 2 to 5 capital letters
// standing alone as a word.
var tickerPattern = regexp.MustCompile(`\b[A-Z]{2,5}\b`)

// tickerStopwords are common all-caps words that look like tickers but
// almost never are in analysis prompts.
var tickerStopwords = map[string]bool{
	"AI": true, "API": true, "CEO": true, "CFO": true, "ETF": true,
	"GDP": true, "IPO": true, "NYSE": true, "PE": true, "SEC": true,
	"USA": true, "USD": true, "VS": true, "YOY": true, "THE": true,
	"AND": true, "FOR": true, "NOT": true, "ARE": true, "WHAT": true,
	"RISK": true, "FED": true,
}

// companyTickers maps lowercase company names to their symbols.
var companyTickers = map[string]string{
	"apple":     "AAPL",
	"tesla":     "TSLA",
	"microsoft": "MSFT",
	"google":    "GOOGL",
	"alphabet":  "GOOGL",
	"nvidia":    "NVDA",
	"amazon":    "AMZN",
	"meta":      "META",
	"facebook":  "META",
}

// bellwethers are resolved when a market-wide or investment prompt names no
// symbol of its own, so the narrative still has real data to anchor on.
var bellwethers = []string{"AAPL", "MSFT", "TSLA"}

// ExtractSymbols pulls ticker symbols out of a prompt, by explicit ticker
// mention or company name, capped at maxSymbols in deterministic order.
func ExtractSymbols(prompt string, maxSymbols int) []string {
	seen := make(map[string]bool)
	var symbols []string
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			symbols = append(symbols, s)
		}
	}

	lower := strings.ToLower(prompt)
	for name, ticker := range companyTickers {
		if strings.Contains(lower, name) {
			add(ticker)
		}
	}

	for _, candidate := range tickerPattern.FindAllString(prompt, -1) {
		if !tickerStopwords[candidate] {
			add(candidate)
		}
	}

	sort.Strings(symbols)
	if maxSymbols > 0 && len(symbols) > maxSymbols {
		symbols = symbols[:maxSymbols]
	}
	return symbols
}
