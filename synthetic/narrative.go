package synthetic

import (
	"fmt"
	"sort"
	"strings"

	"fintech-analyst/models"
)

// Momentum buckets classify a quote's change_percent into narrative tone.
// Thresholds are strict and evaluated top-down; first match wins.
const (
	MomentumStrongUpward   = "strong upward"
	MomentumPositive       = "positive"
	MomentumNeutral        = "neutral"
	MomentumSlightWeakness = "slight weakness"
	MomentumDecline        = "decline"
)

// MomentumBucket maps a percentage change to its momentum bucket.
func MomentumBucket(changePercent float64) string {
	switch {
	case changePercent > 2:
		return MomentumStrongUpward
	case changePercent > 0.5:
		return MomentumPositive
	case changePercent > -0.5:
		return MomentumNeutral
	case changePercent > -2:
		return MomentumSlightWeakness
	default:
		return MomentumDecline
	}
}

// companyAliases maps lowercase company names mentioned in prompts to
// ticker symbols.
var companyAliases = map[string]string{
	"apple": "AAPL", "tesla": "TSLA", "microsoft": "MSFT",
	"google": "GOOGL", "alphabet": "GOOGL", "nvidia": "NVDA",
	"amazon": "AMZN", "meta": "META", "facebook": "META",
}

// macroTerms trigger the market-outlook template when no symbol dominates.
var macroTerms = []string{"market", "economy", "inflation", "fed", "rates", "recession"}

// momentumSignals holds the per-bucket narrative lines used in the momentum
// section of a symbol analysis.
var momentumSignals = map[string][2]string{
	MomentumStrongUpward:   {"Breaking through resistance with conviction", "Consider entries at current levels with tight risk controls"},
	MomentumPositive:       {"Bullish intraday pattern developing", "Favorable entry conditions present"},
	MomentumNeutral:        {"Consolidation phase, range-bound trading", "Wait for a clearer directional move"},
	MomentumSlightWeakness: {"Testing near-term support levels", "Potential buying opportunity on the dip"},
	MomentumDecline:        {"Breaking key support levels", "Wait for stabilization before entry"},
}

// Narrative produces a rule-based multi-section analysis for the request.
// Template selection keys on detected entities and macro terms; when live
// quote data is attached, the momentum section is derived from the actual
// change_percent values.
func (g *Generator) Narrative(req models.GenerationRequest) string {
	var b strings.Builder

	symbols := detectedSymbols(req)

	switch {
	case len(symbols) > 0:
		g.writeSymbolAnalysis(&b, req, symbols)
	case containsMacroTerm(req.Prompt):
		g.writeMarketOutlook(&b, req)
	default:
		g.writeGeneralAnalysis(&b, req)
	}

	if len(req.Quotes) > 0 {
		writeMarketDataSection(&b, req.Quotes)
	}

	return b.String()
}

func (g *Generator) writeSymbolAnalysis(b *strings.Builder, req models.GenerationRequest, symbols []string) {
	fmt.Fprintf(b, "%s ANALYSIS: %s\n\n", strings.ToUpper(string(req.AnalysisType)), strings.Join(symbols, ", "))

	b.WriteString("EXECUTIVE SUMMARY\n")
	fmt.Fprintf(b, "Assessment of %s across valuation, momentum, and risk positioning based on the data available for this request.\n\n", strings.Join(symbols, ", "))

	b.WriteString("KEY FACTORS\n")
	b.WriteString("- Valuation relative to sector peers and historical multiples\n")
	b.WriteString("- Revenue durability and margin trajectory\n")
	b.WriteString("- Institutional positioning and liquidity conditions\n\n")

	for _, symbol := range symbols {
		quote, ok := req.Quotes[symbol]
		if !ok || quote == nil {
			continue
		}
		bucket := MomentumBucket(quote.ChangePercent)
		signals := momentumSignals[bucket]

		fmt.Fprintf(b, "MOMENTUM: %s\n", symbol)
		fmt.Fprintf(b, "Intraday move of %+.2f%% indicates %s momentum.\n", quote.ChangePercent, bucket)
		fmt.Fprintf(b, "- Technical: %s\n", signals[0])
		fmt.Fprintf(b, "- Signal: %s\n", signals[1])
		fmt.Fprintf(b, "- Current level: $%s\n\n", quote.Price.StringFixed(2))
	}

	writeRiskSection(b, req.AnalysisType)
}

func (g *Generator) writeMarketOutlook(b *strings.Builder, req models.GenerationRequest) {
	b.WriteString("MARKET OUTLOOK\n\n")
	b.WriteString("CURRENT ENVIRONMENT\n")
	b.WriteString("Markets are balancing moderating inflation against an evolving rate path; breadth and sector rotation remain the key near-term signals.\n\n")

	if len(req.Quotes) > 0 {
		avg := averageChange(req.Quotes)
		fmt.Fprintf(b, "LIVE SENTIMENT\n")
		fmt.Fprintf(b, "Average movement across tracked bellwethers: %+.2f%% (%s bias).\n\n", avg, sentimentLabel(avg))
	}

	b.WriteString("POSITIONING\n")
	b.WriteString("- Favor quality balance sheets over leverage while rate policy is unsettled\n")
	b.WriteString("- Keep duration short until the cut path firms up\n")
	b.WriteString("- Hold a cash sleeve for dislocations\n\n")

	writeRiskSection(b, req.AnalysisType)
}

func (g *Generator) writeGeneralAnalysis(b *strings.Builder, req models.GenerationRequest) {
	b.WriteString("FINANCIAL ANALYSIS\n\n")
	fmt.Fprintf(b, "QUESTION\n%s\n\n", strings.TrimSpace(req.Prompt))

	b.WriteString("FRAMEWORK\n")
	b.WriteString("- Market context: valuation environment and macro backdrop\n")
	b.WriteString("- Risk factors: systematic, specific, and liquidity exposures\n")
	b.WriteString("- Opportunity: expected return across time horizons and portfolio fit\n\n")

	b.WriteString("NEXT STEPS\n")
	b.WriteString("- Define objectives and constraints before sizing any position\n")
	b.WriteString("- Establish entry, exit, and review criteria up front\n\n")

	writeRiskSection(b, req.AnalysisType)
}

func writeRiskSection(b *strings.Builder, analysisType models.AnalysisType) {
	b.WriteString("RISK ASSESSMENT\n")
	switch analysisType {
	case models.AnalysisRisk:
		b.WriteString("Primary exposures should be quantified individually; concentrate mitigation on the two largest before acting on the rest.\n\n")
	case models.AnalysisInvestment:
		b.WriteString("Position sizing should reflect both conviction and downside tolerance; predefine the exit before the entry.\n\n")
	case models.AnalysisMarket:
		b.WriteString("Regime shifts dominate single-name risk in the current environment; watch breadth deterioration as the early signal.\n\n")
	default:
		b.WriteString("Treat conclusions drawn without live data as directional, not actionable.\n\n")
	}
}

func writeMarketDataSection(b *strings.Builder, quotes map[string]*models.Quote) {
	b.WriteString("MARKET DATA\n")
	for _, symbol := range sortedSymbols(quotes) {
		q := quotes[symbol]
		fmt.Fprintf(b, "%s: $%s (%+.2f%%) high $%s low $%s volume %d [%s via %s]\n",
			symbol, q.Price.StringFixed(2), q.ChangePercent,
			q.High.StringFixed(2), q.Low.StringFixed(2), q.Volume,
			q.Quality, q.Source)
	}
}

// detectedSymbols returns the symbols relevant to the prompt: tickers or
// company names mentioned directly, otherwise the symbols live data was
// fetched for.
func detectedSymbols(req models.GenerationRequest) []string {
	seen := make(map[string]bool)
	var symbols []string
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			symbols = append(symbols, s)
		}
	}

	upper := strings.ToUpper(req.Prompt)
	lower := strings.ToLower(req.Prompt)
	for name, ticker := range companyAliases {
		if strings.Contains(lower, name) || containsWord(upper, ticker) {
			add(ticker)
		}
	}
	for symbol := range req.Quotes {
		if containsWord(upper, symbol) {
			add(symbol)
		}
	}
	sort.Strings(symbols)
	return symbols
}

// containsWord reports whether s contains token as a whole word.
func containsWord(s, token string) bool {
	idx := 0
	for {
		i := strings.Index(s[idx:], token)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(token)
		before := start == 0 || !isWordChar(s[start-1])
		after := end == len(s) || !isWordChar(s[end])
		if before && after {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(c byte) bool {
	return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9'
}

func containsMacroTerm(prompt string) bool {
	lower := strings.ToLower(prompt)
	for _, term := range macroTerms {
		if containsWord(strings.ToUpper(lower), strings.ToUpper(term)) {
			return true
		}
	}
	return false
}

func averageChange(quotes map[string]*models.Quote) float64 {
	if len(quotes) == 0 {
		return 0
	}
	var sum float64
	for _, q := range quotes {
		sum += q.ChangePercent
	}
	return sum / float64(len(quotes))
}

func sentimentLabel(avgChange float64) string {
	switch {
	case avgChange > 1:
		return "risk-on"
	case avgChange > 0.3:
		return "cautiously optimistic"
	case avgChange > -0.3:
		return "neutral"
	case avgChange > -1:
		return "cautious"
	default:
		return "risk-off"
	}
}

func sortedSymbols(quotes map[string]*models.Quote) []string {
	symbols := make([]string, 0, len(quotes))
	for s := range quotes {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols
}
