package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"fintech-analyst/models"
)

// YahooService fetches quotes from the Yahoo Finance chart API. The endpoint
// is keyless, so the service is always eligible.
type YahooService struct {
	httpClient *http.Client
	baseURL    string
}

// NewYahooService creates a new YahooService instance
func NewYahooService() *YahooService {
	return &YahooService{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    "https://query1.finance.yahoo.com/v8/finance/chart",
	}
}

// chartResponse represents the chart endpoint response
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol                string  `json:"symbol"`
				RegularMarketPrice    float64 `json:"regularMarketPrice"`
				ChartPreviousClose    float64 `json:"chartPreviousClose"`
				RegularMarketDayHigh  float64 `json:"regularMarketDayHigh"`
				RegularMarketDayLow   float64 `json:"regularMarketDayLow"`
				RegularMarketVolume   int64   `json:"regularMarketVolume"`
				FiftyTwoWeekHigh      float64 `json:"fiftyTwoWeekHigh"`
				FiftyTwoWeekLow       float64 `json:"fiftyTwoWeekLow"`
				RegularMarketDayOpen  float64 `json:"regularMarketOpen"`
				PreviousClose         float64 `json:"previousClose"`
				RegularMarketTime     int64   `json:"regularMarketTime"`
				ExchangeTimezoneName  string  `json:"exchangeTimezoneName"`
				InstrumentType        string  `json:"instrumentType"`
				Currency              string  `json:"currency"`
				RegularMarketChange   float64 `json:"regularMarketChange"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchQuote returns the latest quote for a symbol
func (s *YahooService) FetchQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	return WithCircuitBreaker(ctx, BreakerYahoo, func() (*models.Quote, error) {
		url := fmt.Sprintf("%s/%s?interval=1d&range=1d", s.baseURL, symbol)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to build request: %w", err)
		}
		// Yahoo rejects requests without a browser-like user agent
		req.Header.Set("User-Agent", "Mozilla/5.0")

		resp, err := s.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch chart: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("chart request returned status %d", resp.StatusCode)
		}

		var chart chartResponse
		if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
			return nil, fmt.Errorf("failed to decode chart: %w", err)
		}

		if chart.Chart.Error != nil {
			return nil, fmt.Errorf("chart error for %s: %s", symbol, chart.Chart.Error.Description)
		}
		if len(chart.Chart.Result) == 0 {
			return nil, fmt.Errorf("no chart data for %s", symbol)
		}

		meta := chart.Chart.Result[0].Meta
		if meta.RegularMarketPrice == 0 {
			return nil, fmt.Errorf("no market price for %s", symbol)
		}

		price := meta.RegularMarketPrice
		prevClose := meta.ChartPreviousClose
		change := price - prevClose
		var changePercent float64
		if prevClose != 0 {
			changePercent = change / prevClose * 100
		}

		return &models.Quote{
			Symbol:        symbol,
			Price:         decimal.NewFromFloat(price).Round(2),
			Change:        decimal.NewFromFloat(change).Round(2),
			ChangePercent: changePercent,
			Open:          decimal.NewFromFloat(meta.RegularMarketDayOpen).Round(2),
			High:          decimal.NewFromFloat(meta.RegularMarketDayHigh).Round(2),
			Low:           decimal.NewFromFloat(meta.RegularMarketDayLow).Round(2),
			PreviousClose: decimal.NewFromFloat(prevClose).Round(2),
			Volume:        meta.RegularMarketVolume,
			Week52High:    decimal.NewFromFloat(meta.FiftyTwoWeekHigh).Round(2),
			Week52Low:     decimal.NewFromFloat(meta.FiftyTwoWeekLow).Round(2),
			Timestamp:     time.Now().UTC(),
		}, nil
	})
}
