package synthetic

import (
	"testing"

	"fintech-analyst/models"
)

func TestGenerator_QuoteAlwaysTaggedSynthetic(t *testing.T) {
	gen := NewGenerator(42)

	for _, symbol := range []string{"AAPL", "UNKNOWN", "ZZZZ"} {
		q := gen.Quote(symbol)
		if q.Source != models.SyntheticSource {
			t.Errorf("%s: source = %q, want synthetic", symbol, q.Source)
		}
		if q.Quality != models.QualitySimulated {
			t.Errorf("%s: quality = %q, want SIMULATED", symbol, q.Quality)
		}
		if q.Symbol != symbol {
			t.Errorf("symbol = %q, want %q", q.Symbol, symbol)
		}
	}
}

func TestGenerator_SeedDeterminism(t *testing.T) {
	a := NewGenerator(7)
	b := NewGenerator(7)

	for i := 0; i < 5; i++ {
		qa := a.Quote("AAPL")
		qb := b.Quote("AAPL")
		if !qa.Price.Equal(qb.Price) || qa.ChangePercent != qb.ChangePercent || qa.Volume != qb.Volume {
			t.Fatalf("iteration %d: same seed produced different quotes: %v vs %v", i, qa.Price, qb.Price)
		}
	}
}

func TestGenerator_QuoteBounds(t *testing.T) {
	gen := NewGenerator(99)

	for i := 0; i < 200; i++ {
		q := gen.Quote("AAPL")

		if q.ChangePercent < -maxDailyMovePct || q.ChangePercent > maxDailyMovePct {
			t.Fatalf("change percent %f outside daily bound", q.ChangePercent)
		}

		price, _ := q.Price.Float64()
		low52, _ := q.Week52Low.Float64()
		high52, _ := q.Week52High.Float64()
		if low52 >= price {
			t.Fatalf("52-week low %f not below price %f", low52, price)
		}
		if high52 <= price {
			t.Fatalf("52-week high %f not above price %f", high52, price)
		}

		if q.Volume < 1_000_000 || q.Volume >= 50_000_000 {
			t.Fatalf("volume %d outside expected range", q.Volume)
		}
	}
}

func TestGenerator_UnknownSymbolBasePrice(t *testing.T) {
	gen := NewGenerator(3)

	for i := 0; i < 100; i++ {
		q := gen.Quote("OBSCURE")
		open, _ := q.Open.Float64()
		if open < unknownBaseMin || open > unknownBaseMax {
			t.Fatalf("unknown symbol base %f outside [%f, %f]", open, unknownBaseMin, unknownBaseMax)
		}
	}
}

func TestGenerator_KnownSymbolUsesTable(t *testing.T) {
	gen := NewGenerator(1)
	q := gen.Quote("MSFT")

	open, _ := q.Open.Float64()
	if open != basePrices["MSFT"] {
		t.Errorf("open = %f, want table base %f", open, basePrices["MSFT"])
	}
	if q.MarketCap != marketCaps["MSFT"]*1_000_000_000 {
		t.Errorf("market cap = %d", q.MarketCap)
	}
	if q.PERatio != peRatios["MSFT"] {
		t.Errorf("pe ratio = %f", q.PERatio)
	}
}
