package services

import (
	"context"
	"fmt"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/shopspring/decimal"

	"fintech-analyst/models"
)

// AlpacaService fetches market data from the Alpaca data API
type AlpacaService struct {
	dataClient *marketdata.Client
}

// NewAlpacaService creates a new AlpacaService instance
func NewAlpacaService(apiKey, apiSecret string) *AlpacaService {
	dataClient := marketdata.NewClient(marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	})

	return &AlpacaService{dataClient: dataClient}
}

// FetchQuote returns the latest quote for a symbol, assembled from the
// snapshot endpoint so a single call yields price, daily bar, and the
// previous session close.
func (s *AlpacaService) FetchQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	return WithCircuitBreaker(ctx, BreakerAlpaca, func() (*models.Quote, error) {
		snapshot, err := s.dataClient.GetSnapshot(symbol, marketdata.GetSnapshotRequest{})
		if err != nil {
			return nil, fmt.Errorf("failed to get snapshot for %s: %w", symbol, err)
		}
		if snapshot == nil || snapshot.LatestTrade == nil {
			return nil, fmt.Errorf("no snapshot data for %s", symbol)
		}

		price := snapshot.LatestTrade.Price
		quote := &models.Quote{
			Symbol:    symbol,
			Price:     decimal.NewFromFloat(price).Round(2),
			Timestamp: snapshot.LatestTrade.Timestamp,
		}
		if quote.Timestamp.IsZero() {
			quote.Timestamp = time.Now().UTC()
		}

		if bar := snapshot.DailyBar; bar != nil {
			quote.Open = decimal.NewFromFloat(bar.Open).Round(2)
			quote.High = decimal.NewFromFloat(bar.High).Round(2)
			quote.Low = decimal.NewFromFloat(bar.Low).Round(2)
			quote.Volume = int64(bar.Volume)
		}

		if prev := snapshot.PrevDailyBar; prev != nil && prev.Close != 0 {
			quote.PreviousClose = decimal.NewFromFloat(prev.Close).Round(2)
			change := price - prev.Close
			quote.Change = decimal.NewFromFloat(change).Round(2)
			quote.ChangePercent = change / prev.Close * 100
		}

		return quote, nil
	})
}
