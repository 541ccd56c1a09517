package app

import (
	"context"
	"fmt"
	"time"

	"fintech-analyst/config"
	"fintech-analyst/models"
	"fintech-analyst/observability"
	"fintech-analyst/resolver"
	"fintech-analyst/services"
	"fintech-analyst/synthetic"
)

// Quote provider priority ranks. Lower rank is tried first.
const (
	priorityYahoo = iota + 1
	priorityAlpaca
	priorityAlphaVantage
	priorityFinnhub
)

// Generation provider priority ranks.
const (
	priorityOpenAI = iota + 1
	priorityBedrock
	priorityHuggingFace
)

// NewQuoteResolver wires the quote provider chain in priority order. A
// provider without credentials is registered disabled so it still shows up
// in status reporting.
func NewQuoteResolver(cfg *config.Config, quotas *resolver.QuotaTracker, gen *synthetic.Generator) (*resolver.Resolver[string, *models.Quote], error) {
	registry := resolver.NewRegistry[string, *models.Quote](resolver.ResourceQuote)
	timeout := time.Duration(cfg.Resolver.ProviderTimeoutSeconds) * time.Second

	yahoo := services.NewYahooService()
	if err := registry.Register(resolver.Descriptor{
		ID:       "yahoo",
		Resource: resolver.ResourceQuote,
		Priority: priorityYahoo,
		Quota:    resolver.UnlimitedQuota(),
		Timeout:  timeout,
		Enabled:  true,
	}, yahoo.FetchQuote); err != nil {
		return nil, err
	}

	if err := registry.Register(resolver.Descriptor{
		ID:       "alpaca",
		Resource: resolver.ResourceQuote,
		Priority: priorityAlpaca,
		Quota:    resolver.UnlimitedQuota(),
		Timeout:  timeout,
		Enabled:  cfg.HasAlpaca(),
	}, quoteHandler(cfg.HasAlpaca(), func() services.QuoteFetcher {
		return services.NewAlpacaService(cfg.Alpaca.APIKey, cfg.Alpaca.APISecret)
	})); err != nil {
		return nil, err
	}

	if err := registry.Register(resolver.Descriptor{
		ID:       "alphavantage",
		Resource: resolver.ResourceQuote,
		Priority: priorityAlphaVantage,
		Quota:    resolver.CappedDaily(cfg.AlphaVantage.DailyCap),
		Timeout:  timeout,
		Enabled:  cfg.HasAlphaVantage(),
	}, quoteHandler(cfg.HasAlphaVantage(), func() services.QuoteFetcher {
		return services.NewAlphaVantageService(cfg.AlphaVantage.APIKey)
	})); err != nil {
		return nil, err
	}

	if err := registry.Register(resolver.Descriptor{
		ID:       "finnhub",
		Resource: resolver.ResourceQuote,
		Priority: priorityFinnhub,
		Quota:    resolver.UnlimitedQuota(),
		Timeout:  timeout,
		Enabled:  cfg.HasFinnhub(),
	}, quoteHandler(cfg.HasFinnhub(), func() services.QuoteFetcher {
		return services.NewFinnhubService(cfg.Finnhub.APIKey)
	})); err != nil {
		return nil, err
	}

	fallback := func(symbol string) *models.Quote {
		return gen.Quote(symbol)
	}

	return resolver.New(registry, quotas, fallback), nil
}

// NewNarrativeResolver wires the text generation chain in priority order.
func NewNarrativeResolver(ctx context.Context, cfg *config.Config, quotas *resolver.QuotaTracker, gen *synthetic.Generator) (*resolver.Resolver[models.GenerationRequest, string], error) {
	registry := resolver.NewRegistry[models.GenerationRequest, string](resolver.ResourceGeneration)
	timeout := time.Duration(cfg.Resolver.ProviderTimeoutSeconds) * time.Second

	var openaiHandler resolver.Handler[models.GenerationRequest, string]
	if cfg.HasOpenAI() {
		svc, err := services.NewOpenAIService(cfg)
		if err != nil {
			return nil, err
		}
		openaiHandler = generationHandler(svc)
	} else {
		openaiHandler = disabledGeneration("openai")
	}
	if err := registry.Register(resolver.Descriptor{
		ID:       "openai",
		Resource: resolver.ResourceGeneration,
		Priority: priorityOpenAI,
		Quota:    resolver.UnlimitedQuota(),
		Timeout:  timeout,
		Enabled:  cfg.HasOpenAI(),
	}, openaiHandler); err != nil {
		return nil, err
	}

	bedrockHandler := disabledGeneration("bedrock")
	bedrockEnabled := false
	if cfg.HasBedrock() {
		svc, err := services.NewBedrockService(ctx, cfg.Bedrock.Region, cfg.Bedrock.ModelID, cfg.Bedrock.MaxTokens)
		if err != nil {
			// AWS config failure disables the tier rather than failing startup
			observability.Warn("bedrock unavailable, registering disabled",
				"error", err)
		} else {
			bedrockHandler = generationHandler(svc)
			bedrockEnabled = true
		}
	}
	if err := registry.Register(resolver.Descriptor{
		ID:       "bedrock",
		Resource: resolver.ResourceGeneration,
		Priority: priorityBedrock,
		Quota:    resolver.UnlimitedQuota(),
		Timeout:  timeout,
		Enabled:  bedrockEnabled,
	}, bedrockHandler); err != nil {
		return nil, err
	}

	var hfHandler resolver.Handler[models.GenerationRequest, string]
	if cfg.HasHuggingFace() {
		hfHandler = generationHandler(services.NewHuggingFaceService(cfg.HuggingFace.APIToken))
	} else {
		hfHandler = disabledGeneration("huggingface")
	}
	if err := registry.Register(resolver.Descriptor{
		ID:       "huggingface",
		Resource: resolver.ResourceGeneration,
		Priority: priorityHuggingFace,
		Quota:    resolver.UnlimitedQuota(),
		Timeout:  timeout,
		Enabled:  cfg.HasHuggingFace(),
	}, hfHandler); err != nil {
		return nil, err
	}

	fallback := func(req models.GenerationRequest) string {
		return gen.Narrative(req)
	}

	return resolver.New(registry, quotas, fallback), nil
}

// quoteHandler defers service construction until credentials are known to
// be present; disabled providers get a handler that is never invoked.
func quoteHandler(enabled bool, build func() services.QuoteFetcher) resolver.Handler[string, *models.Quote] {
	if !enabled {
		return func(ctx context.Context, symbol string) (*models.Quote, error) {
			return nil, fmt.Errorf("provider not configured")
		}
	}
	svc := build()
	return svc.FetchQuote
}

// generationHandler adapts a GenerationFetcher to the resolver contract,
// building the system and user prompts from the request.
func generationHandler(svc services.GenerationFetcher) resolver.Handler[models.GenerationRequest, string] {
	return func(ctx context.Context, req models.GenerationRequest) (string, error) {
		return svc.FetchGeneration(ctx, SystemPrompt(req.AnalysisType), UserPrompt(req))
	}
}

func disabledGeneration(id string) resolver.Handler[models.GenerationRequest, string] {
	return func(ctx context.Context, req models.GenerationRequest) (string, error) {
		return "", fmt.Errorf("provider %s not configured", id)
	}
}
