// Package synthetic produces the fallback payloads used when every real
// provider is blocked or failed: bounded-random simulated quotes and a
// rule-based narrative engine. All randomness flows through one seeded
// source so fallback behavior is reproducible in tests.
package synthetic

import (
	"math/rand"
	"sync"
	"time"

	"fintech-analyst/models"

	"github.com/shopspring/decimal"
)

// Reference prices for widely-held symbols; unknown symbols draw a base
// price from a bounded range instead.
var basePrices = map[string]float64{
	"AAPL": 195.0, "MSFT": 420.0, "GOOGL": 145.0, "TSLA": 250.0, "NVDA": 900.0,
	"AMZN": 155.0, "META": 495.0, "BRK.B": 460.0, "LLY": 780.0, "UNH": 530.0,
	"JPM": 185.0, "V": 285.0, "PG": 165.0, "MA": 470.0, "JNJ": 160.0,
}

// Market caps in billions of dollars.
var marketCaps = map[string]int64{
	"AAPL": 2950, "MSFT": 3150, "GOOGL": 1750, "TSLA": 800, "NVDA": 2250,
	"AMZN": 1550, "META": 1250, "BRK.B": 820, "LLY": 780, "UNH": 500,
}

var peRatios = map[string]float64{
	"AAPL": 28.5, "MSFT": 32.1, "GOOGL": 25.3, "TSLA": 65.2, "NVDA": 58.7,
	"AMZN": 45.8, "META": 22.9, "BRK.B": 15.2, "LLY": 45.3, "UNH": 24.1,
}

// Movement bounds for one simulated session.
const (
	maxDailyMovePct  = 4.0
	unknownBaseMin   = 50.0
	unknownBaseMax   = 500.0
	week52LowFactor  = 0.7 // lower bound of the 52-week-low factor range
	week52LowSpread  = 0.2
	week52HighFactor = 1.1 // lower bound of the 52-week-high factor range
	week52HighSpread = 0.3
)

// Generator is the synthetic fallback producer. Safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// NewGenerator creates a generator with the given seed.
func NewGenerator(seed int64) *Generator {
	return &Generator{
		rng: rand.New(rand.NewSource(seed)),
		now: time.Now,
	}
}

// WithClock overrides the timestamp source; returns the generator for chaining.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Quote produces a simulated quote for the symbol. The result is always
// tagged quality SIMULATED with source "synthetic" so it can never pass for
// a real provider's output.
func (g *Generator) Quote(symbol string) *models.Quote {
	g.mu.Lock()
	defer g.mu.Unlock()

	base, known := basePrices[symbol]
	if !known {
		base = g.uniform(unknownBaseMin, unknownBaseMax)
	}

	changePct := g.uniform(-maxDailyMovePct, maxDailyMovePct)
	change := base * changePct / 100
	price := base + change

	low52 := price * (week52LowFactor + g.rng.Float64()*week52LowSpread)
	high52 := price * (week52HighFactor + g.rng.Float64()*week52HighSpread)

	marketCap := marketCaps[symbol]
	if marketCap == 0 {
		marketCap = int64(g.uniform(50, 500))
	}
	marketCap *= 1_000_000_000 // table holds billions
	pe := peRatios[symbol]
	if pe == 0 {
		pe = round1(g.uniform(15.0, 50.0))
	}

	dayLow := price * (1 - g.rng.Float64()*0.015)
	dayHigh := price * (1 + g.rng.Float64()*0.015)

	return &models.Quote{
		Symbol:        symbol,
		Price:         money(price),
		Change:        money(change),
		ChangePercent: round2(changePct),
		Open:          money(base),
		High:          money(dayHigh),
		Low:           money(dayLow),
		PreviousClose: money(base),
		Volume:        1_000_000 + g.rng.Int63n(49_000_000),
		Week52High:    money(high52),
		Week52Low:     money(low52),
		MarketCap:     marketCap,
		PERatio:       pe,
		Timestamp:     g.now(),
		Source:        models.SyntheticSource,
		Quality:       models.QualitySimulated,
	}
}

func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

func money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

func round1(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(1).Float64()
	return f
}

func round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
