package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DataQuality labels the provenance of a resolved quote.
type DataQuality string

const (
	// QualityLive marks data produced by a registered real provider.
	QualityLive DataQuality = "LIVE"
	// QualitySimulated marks data produced by the synthetic fallback.
	QualitySimulated DataQuality = "SIMULATED"
)

// SyntheticSource is the reserved source id for synthetic payloads.
// No real provider may register under this id.
const SyntheticSource = "synthetic"

// Quote represents a market quote for a single symbol.
type Quote struct {
	Symbol        string          `json:"symbol"`
	Price         decimal.Decimal `json:"price"`
	Change        decimal.Decimal `json:"change"`
	ChangePercent float64         `json:"change_percent"`
	Open          decimal.Decimal `json:"open"`
	High          decimal.Decimal `json:"high"`
	Low           decimal.Decimal `json:"low"`
	PreviousClose decimal.Decimal `json:"previous_close"`
	Volume        int64           `json:"volume"`
	Week52High    decimal.Decimal `json:"52_week_high"`
	Week52Low     decimal.Decimal `json:"52_week_low"`
	MarketCap     int64           `json:"market_cap,omitempty"`
	PERatio       float64         `json:"pe_ratio,omitempty"`
	Timestamp     time.Time       `json:"timestamp"`
	Source        string          `json:"source"`
	Quality       DataQuality     `json:"data_quality"`
}

// IsLive reports whether the quote came from a real provider.
func (q *Quote) IsLive() bool {
	return q != nil && q.Quality == QualityLive
}
