package app

import (
	"fmt"
	"sort"
	"strings"

	"fintech-analyst/models"
)

// systemPrompts frame the generation request per analysis type.
var systemPrompts = map[models.AnalysisType]string{
	models.AnalysisInvestment: "You are a senior investment analyst. Provide a structured investment analysis with an executive summary, key factors, momentum read, and a risk assessment. Be specific and quantify where the data allows.",
	models.AnalysisRisk:       "You are a risk analyst. Identify and rank the material risks in the scenario described, quantify exposure where possible, and recommend concrete mitigations.",
	models.AnalysisMarket:     "You are a market strategist. Assess the current market environment, breadth, and sector rotation, and give a positioning view with clear caveats.",
	models.AnalysisGeneral:    "You are a financial analyst. Answer the question with a structured analysis covering market context, risk factors, and actionable next steps.",
}

// SystemPrompt returns the framing prompt for the analysis type.
func SystemPrompt(analysisType models.AnalysisType) string {
	if p, ok := systemPrompts[analysisType]; ok {
		return p
	}
	return systemPrompts[models.AnalysisGeneral]
}

// UserPrompt builds the user message, appending a market-context block when
// live quote data was resolved for the request.
func UserPrompt(req models.GenerationRequest) string {
	if len(req.Quotes) == 0 {
		return req.Prompt
	}

	var b strings.Builder
	b.WriteString(req.Prompt)
	b.WriteString("\n\nCurrent market data:\n")

	symbols := make([]string, 0, len(req.Quotes))
	for s := range req.Quotes {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	for _, symbol := range symbols {
		q := req.Quotes[symbol]
		if q == nil {
			continue
		}
		fmt.Fprintf(&b, "%s: $%s (%+.2f%%), day range $%s-$%s, volume %d [%s]\n",
			symbol, q.Price.StringFixed(2), q.ChangePercent,
			q.Low.StringFixed(2), q.High.StringFixed(2), q.Volume, q.Quality)
	}
	b.WriteString("\nGround your analysis in this data where relevant.")

	return b.String()
}
