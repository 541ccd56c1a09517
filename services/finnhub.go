package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"fintech-analyst/models"
	"fintech-analyst/resolver"
)

// FinnhubService handles communication with the Finnhub quote API
type FinnhubService struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewFinnhubService creates a new FinnhubService instance
func NewFinnhubService(apiKey string) *FinnhubService {
	return &FinnhubService{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    "https://finnhub.io/api/v1",
	}
}

// finnhubQuote represents the /quote response. Field names follow the API:
// c=current, d=change, dp=change percent, h=high, l=low, o=open,
// pc=previous close.
type finnhubQuote struct {
	Current       float64 `json:"c"`
	Change        float64 `json:"d"`
	ChangePercent float64 `json:"dp"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Open          float64 `json:"o"`
	PrevClose     float64 `json:"pc"`
}

// FetchQuote returns the latest quote for a symbol
func (s *FinnhubService) FetchQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	return WithCircuitBreaker(ctx, BreakerFinnhub, func() (*models.Quote, error) {
		params := url.Values{}
		params.Set("symbol", symbol)
		params.Set("token", s.apiKey)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/quote?"+params.Encode(), nil)
		if err != nil {
			return nil, fmt.Errorf("failed to build request: %w", err)
		}

		resp, err := s.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch quote: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, fmt.Errorf("finnhub rate limited: %w", resolver.ErrQuotaSignal)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("quote request returned status %d", resp.StatusCode)
		}

		var q finnhubQuote
		if err := json.NewDecoder(resp.Body).Decode(&q); err != nil {
			return nil, fmt.Errorf("failed to decode quote: %w", err)
		}

		// Finnhub returns zeros for unknown symbols rather than an error
		if q.Current == 0 {
			return nil, fmt.Errorf("no quote data for %s", symbol)
		}

		return &models.Quote{
			Symbol:        symbol,
			Price:         decimal.NewFromFloat(q.Current).Round(2),
			Change:        decimal.NewFromFloat(q.Change).Round(2),
			ChangePercent: q.ChangePercent,
			Open:          decimal.NewFromFloat(q.Open).Round(2),
			High:          decimal.NewFromFloat(q.High).Round(2),
			Low:           decimal.NewFromFloat(q.Low).Round(2),
			PreviousClose: decimal.NewFromFloat(q.PrevClose).Round(2),
			Timestamp:     time.Now().UTC(),
		}, nil
	})
}
