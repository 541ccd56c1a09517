package services

import (
	"context"

	"fintech-analyst/models"
)

// QuoteFetcher fetches a live market quote for a single symbol.
type QuoteFetcher interface {
	FetchQuote(ctx context.Context, symbol string) (*models.Quote, error)
}

// GenerationFetcher produces analysis text from a system and user prompt.
type GenerationFetcher interface {
	FetchGeneration(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Compile-time interface checks
var (
	_ QuoteFetcher = (*YahooService)(nil)
	_ QuoteFetcher = (*AlpacaService)(nil)
	_ QuoteFetcher = (*AlphaVantageService)(nil)
	_ QuoteFetcher = (*FinnhubService)(nil)

	_ GenerationFetcher = (*OpenAIService)(nil)
	_ GenerationFetcher = (*BedrockService)(nil)
	_ GenerationFetcher = (*HuggingFaceService)(nil)
)
