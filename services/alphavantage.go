package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fintech-analyst/models"
	"fintech-analyst/observability"
	"fintech-analyst/resolver"
)

// AlphaVantageService handles communication with the Alpha Vantage API.
// The free tier caps daily requests; the API signals exhaustion with a
// "Note" or "Information" body instead of an error status.
type AlphaVantageService struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewAlphaVantageService creates a new AlphaVantageService instance
func NewAlphaVantageService(apiKey string) *AlphaVantageService {
	return &AlphaVantageService{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    "https://www.alphavantage.co/query",
	}
}

// QuoteResponse represents a GLOBAL_QUOTE response from Alpha Vantage
type QuoteResponse struct {
	GlobalQuote struct {
		Symbol        string `json:"01. symbol"`
		Open          string `json:"02. open"`
		High          string `json:"03. high"`
		Low           string `json:"04. low"`
		Price         string `json:"05. price"`
		Volume        string `json:"06. volume"`
		LatestDay     string `json:"07. latest trading day"`
		PrevClose     string `json:"08. previous close"`
		Change        string `json:"09. change"`
		ChangePercent string `json:"10. change percent"`
	} `json:"Global Quote"`
	Note        string `json:"Note"`
	Information string `json:"Information"`
}

// FetchQuote returns the latest quote for a symbol
func (s *AlphaVantageService) FetchQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	return WithCircuitBreaker(ctx, BreakerAlphaVantage, func() (*models.Quote, error) {
		params := url.Values{}
		params.Set("function", "GLOBAL_QUOTE")
		params.Set("symbol", symbol)
		params.Set("apikey", s.apiKey)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
		if err != nil {
			return nil, fmt.Errorf("failed to build request: %w", err)
		}

		resp, err := s.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch quote: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, fmt.Errorf("alphavantage rate limited: %w", resolver.ErrQuotaSignal)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("quote request returned status %d", resp.StatusCode)
		}

		var quoteResp QuoteResponse
		if err := json.NewDecoder(resp.Body).Decode(&quoteResp); err != nil {
			return nil, fmt.Errorf("failed to decode quote: %w", err)
		}

		// A populated Note or Information field means the daily cap is hit
		if quoteResp.Note != "" || quoteResp.Information != "" {
			return nil, fmt.Errorf("alphavantage daily limit reached: %w", resolver.ErrQuotaSignal)
		}

		gq := quoteResp.GlobalQuote
		if gq.Price == "" {
			return nil, fmt.Errorf("no quote data for %s", symbol)
		}

		price, err := decimal.NewFromString(gq.Price)
		if err != nil {
			return nil, fmt.Errorf("failed to parse price %q: %w", gq.Price, err)
		}
		change, _ := decimal.NewFromString(gq.Change)
		open, _ := decimal.NewFromString(gq.Open)
		high, _ := decimal.NewFromString(gq.High)
		low, _ := decimal.NewFromString(gq.Low)
		prevClose, _ := decimal.NewFromString(gq.PrevClose)

		var changePercent float64
		if pct := strings.TrimSuffix(gq.ChangePercent, "%"); pct != "" {
			changePercent, err = strconv.ParseFloat(pct, 64)
			if err != nil {
				observability.Warn("failed to parse change percent",
					"value", gq.ChangePercent,
					"error", err)
			}
		}

		var volume int64
		if gq.Volume != "" {
			volume, err = strconv.ParseInt(gq.Volume, 10, 64)
			if err != nil {
				observability.Warn("failed to parse volume",
					"value", gq.Volume,
					"error", err)
			}
		}

		return &models.Quote{
			Symbol:        symbol,
			Price:         price,
			Change:        change,
			ChangePercent: changePercent,
			Open:          open,
			High:          high,
			Low:           low,
			PreviousClose: prevClose,
			Volume:        volume,
			Timestamp:     time.Now().UTC(),
		}, nil
	})
}
