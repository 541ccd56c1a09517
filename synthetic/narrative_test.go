package synthetic

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"fintech-analyst/models"
)

func TestMomentumBucket(t *testing.T) {
	tests := []struct {
		changePercent float64
		want          string
	}{
		{3.5, MomentumStrongUpward},
		{2.1, MomentumStrongUpward},
		{2.0, MomentumPositive}, // boundary is strict
		{0.6, MomentumPositive},
		{0.5, MomentumNeutral},
		{0.0, MomentumNeutral},
		{-0.5, MomentumSlightWeakness},
		{-1.9, MomentumSlightWeakness},
		{-2.0, MomentumDecline},
		{-3.0, MomentumDecline},
	}

	for _, tt := range tests {
		if got := MomentumBucket(tt.changePercent); got != tt.want {
			t.Errorf("MomentumBucket(%v) = %q, want %q", tt.changePercent, got, tt.want)
		}
	}
}

func liveQuote(symbol string, price, changePercent float64) *models.Quote {
	return &models.Quote{
		Symbol:        symbol,
		Price:         decimal.NewFromFloat(price),
		ChangePercent: changePercent,
		High:          decimal.NewFromFloat(price * 1.01),
		Low:           decimal.NewFromFloat(price * 0.99),
		Volume:        1_000_000,
		Source:        "yahoo",
		Quality:       models.QualityLive,
	}
}

func TestNarrative_SymbolAnalysisUsesLiveData(t *testing.T) {
	gen := NewGenerator(1)
	text := gen.Narrative(models.GenerationRequest{
		Prompt:       "Should I invest in AAPL right now?",
		AnalysisType: models.AnalysisInvestment,
		Quotes: map[string]*models.Quote{
			"AAPL": liveQuote("AAPL", 195.50, 2.8),
		},
	})

	if !strings.Contains(text, "AAPL") {
		t.Error("narrative should name the detected symbol")
	}
	if !strings.Contains(text, MomentumStrongUpward) {
		t.Errorf("narrative should reflect the live momentum bucket:\n%s", text)
	}
	if !strings.Contains(text, "$195.50") {
		t.Error("narrative should quote the live price")
	}
	if !strings.Contains(text, "MARKET DATA") {
		t.Error("narrative should include the market data section")
	}
}

func TestNarrative_CompanyNameDetection(t *testing.T) {
	gen := NewGenerator(1)
	text := gen.Narrative(models.GenerationRequest{
		Prompt:       "Is tesla a good long-term hold?",
		AnalysisType: models.AnalysisInvestment,
	})

	if !strings.Contains(text, "TSLA") {
		t.Errorf("company name should map to its ticker:\n%s", text)
	}
}

func TestNarrative_MacroPromptGetsMarketOutlook(t *testing.T) {
	gen := NewGenerator(1)
	text := gen.Narrative(models.GenerationRequest{
		Prompt:       "How will inflation affect the economy this year?",
		AnalysisType: models.AnalysisMarket,
	})

	if !strings.Contains(text, "MARKET OUTLOOK") {
		t.Errorf("macro prompt should select the market outlook template:\n%s", text)
	}
}

func TestNarrative_GeneralPromptGetsFramework(t *testing.T) {
	gen := NewGenerator(1)
	text := gen.Narrative(models.GenerationRequest{
		Prompt:       "How should someone think about diversification?",
		AnalysisType: models.AnalysisGeneral,
	})

	if !strings.Contains(text, "FINANCIAL ANALYSIS") {
		t.Errorf("prompt without entities should select the general template:\n%s", text)
	}
	if !strings.Contains(text, "RISK ASSESSMENT") {
		t.Error("every narrative should carry a risk assessment")
	}
}

func TestNarrative_LiveSentimentFromAverageChange(t *testing.T) {
	gen := NewGenerator(1)
	text := gen.Narrative(models.GenerationRequest{
		Prompt:       "What is the market doing today?",
		AnalysisType: models.AnalysisMarket,
		Quotes: map[string]*models.Quote{
			"AAPL": liveQuote("AAPL", 195, 2.0),
			"MSFT": liveQuote("MSFT", 420, 1.5),
		},
	})

	if !strings.Contains(text, "LIVE SENTIMENT") {
		t.Errorf("quotes should produce a live sentiment block:\n%s", text)
	}
	if !strings.Contains(text, "risk-on") {
		t.Errorf("average +1.75%% should read as risk-on:\n%s", text)
	}
}
