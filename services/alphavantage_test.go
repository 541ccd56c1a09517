package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"fintech-analyst/resolver"
)

// resetBreakers isolates circuit breaker state between tests. The initial
// GetGlobalRegistry call settles the lazy init so the override sticks.
func resetBreakers(t *testing.T) {
	t.Helper()
	GetGlobalRegistry()
	SetGlobalRegistry(NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig))
}

const globalQuoteBody = `{
	"Global Quote": {
		"01. symbol": "AAPL",
		"02. open": "194.20",
		"03. high": "196.90",
		"04. low": "193.80",
		"05. price": "195.50",
		"06. volume": "48201500",
		"07. latest trading day": "2025-03-10",
		"08. previous close": "192.10",
		"09. change": "3.40",
		"10. change percent": "1.7699%"
	}
}`

func TestAlphaVantage_FetchQuote(t *testing.T) {
	resetBreakers(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("function"); got != "GLOBAL_QUOTE" {
			t.Errorf("function = %q, want GLOBAL_QUOTE", got)
		}
		if got := r.URL.Query().Get("symbol"); got != "AAPL" {
			t.Errorf("symbol = %q, want AAPL", got)
		}
		w.Write([]byte(globalQuoteBody))
	}))
	defer server.Close()

	svc := NewAlphaVantageService("test-key")
	svc.baseURL = server.URL

	quote, err := svc.FetchQuote(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if quote.Price.String() != "195.5" {
		t.Errorf("price = %s, want 195.5", quote.Price)
	}
	if quote.ChangePercent != 1.7699 {
		t.Errorf("change percent = %v, want 1.7699", quote.ChangePercent)
	}
	if quote.Volume != 48201500 {
		t.Errorf("volume = %d, want 48201500", quote.Volume)
	}
	if quote.PreviousClose.String() != "192.1" {
		t.Errorf("previous close = %s, want 192.1", quote.PreviousClose)
	}
}

func TestAlphaVantage_NoteIsQuotaSignal(t *testing.T) {
	resetBreakers(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Note": "Thank you for using Alpha Vantage! Our standard API rate limit is 25 requests per day."}`))
	}))
	defer server.Close()

	svc := NewAlphaVantageService("test-key")
	svc.baseURL = server.URL

	_, err := svc.FetchQuote(context.Background(), "AAPL")
	if err == nil {
		t.Fatal("expected error when daily limit is reached")
	}
	if !resolver.IsQuotaSignal(err) {
		t.Errorf("Note response should classify as quota signal, got %v", err)
	}
}

func TestAlphaVantage_429IsQuotaSignal(t *testing.T) {
	resetBreakers(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	svc := NewAlphaVantageService("test-key")
	svc.baseURL = server.URL

	_, err := svc.FetchQuote(context.Background(), "AAPL")
	if !resolver.IsQuotaSignal(err) {
		t.Errorf("429 should classify as quota signal, got %v", err)
	}
}

func TestAlphaVantage_EmptyQuoteIsSoftFailure(t *testing.T) {
	resetBreakers(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Global Quote": {}}`))
	}))
	defer server.Close()

	svc := NewAlphaVantageService("test-key")
	svc.baseURL = server.URL

	_, err := svc.FetchQuote(context.Background(), "ZZZZ")
	if err == nil {
		t.Fatal("expected error for empty quote")
	}
	if resolver.IsQuotaSignal(err) {
		t.Error("empty quote is a soft failure, not a quota signal")
	}
}
