package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"fintech-analyst/config"
	"fintech-analyst/models"
	"fintech-analyst/observability"
	"fintech-analyst/report"
	"fintech-analyst/resolver"
	"fintech-analyst/services"
	"fintech-analyst/synthetic"
)

// ErrQueueFull rejects requests when the concurrency limit is reached.
var ErrQueueFull = errors.New("analysis queue full, too many concurrent requests - try again later")

// snapshotSymbols are the fixed set served by the market-snapshot endpoint.
var snapshotSymbols = []string{"AAPL", "MSFT", "GOOGL", "TSLA", "NVDA"}

// HistoryStore is the persistence surface App needs. Nil means history is
// disabled; report generation never depends on it.
type HistoryStore interface {
	SaveReport(ctx context.Context, rec *models.ReportRecord) error
	RecentReports(ctx context.Context, limit int) ([]models.ReportRecord, error)
	Health(ctx context.Context) error
	Close()
}

// App holds the resolvers and wiring for one running instance.
type App struct {
	cfg        *config.Config
	quotes     *resolver.Resolver[string, *models.Quote]
	narratives *resolver.Resolver[models.GenerationRequest, string]
	history    HistoryStore

	// analysisSem bounds concurrent analysis requests
	analysisSem chan struct{}
}

// New wires the full provider chains and returns a ready App.
func New(ctx context.Context, cfg *config.Config, history HistoryStore) (*App, error) {
	quotas := resolver.NewQuotaTracker()

	seed := cfg.Synthetic.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	gen := synthetic.NewGenerator(seed)

	quotes, err := NewQuoteResolver(cfg, quotas, gen)
	if err != nil {
		return nil, fmt.Errorf("failed to build quote resolver: %w", err)
	}

	narratives, err := NewNarrativeResolver(ctx, cfg, quotas, gen)
	if err != nil {
		return nil, fmt.Errorf("failed to build narrative resolver: %w", err)
	}

	return &App{
		cfg:         cfg,
		quotes:      quotes,
		narratives:  narratives,
		history:     history,
		analysisSem: make(chan struct{}, cfg.Resolver.ConcurrencyLimit),
	}, nil
}

// NewWithResolvers creates an App over prebuilt resolvers (for testing).
func NewWithResolvers(cfg *config.Config, quotes *resolver.Resolver[string, *models.Quote], narratives *resolver.Resolver[models.GenerationRequest, string], history HistoryStore) *App {
	return &App{
		cfg:         cfg,
		quotes:      quotes,
		narratives:  narratives,
		history:     history,
		analysisSem: make(chan struct{}, cfg.Resolver.ConcurrencyLimit),
	}
}

// Shutdown releases held resources.
func (a *App) Shutdown() {
	if a.history != nil {
		a.history.Close()
	}
}

// History returns the history store, or nil when persistence is disabled.
func (a *App) History() HistoryStore {
	return a.history
}

// Analyze runs the full pipeline for one request: symbol extraction,
// concurrent quote resolution, narrative resolution, and assembly. It
// always produces a report; total provider failure degrades to synthetic
// content rather than an error.
func (a *App) Analyze(ctx context.Context, req models.AnalysisRequest) (*models.Report, error) {
	select {
	case a.analysisSem <- struct{}{}:
		defer func() { <-a.analysisSem }()
	default:
		return nil, ErrQueueFull
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(a.cfg.Resolver.RequestTimeoutSeconds)*time.Second)
	defer cancel()

	start := time.Now()
	analysisType := models.ParseAnalysisType(req.AnalysisType)

	var quotes map[string]*models.Quote
	if req.IncludeRealTimeData {
		symbols := ExtractSymbols(req.Prompt, a.cfg.Resolver.MaxSymbolsPerRequest)
		// Market-wide prompts get bellwether context instead of nothing
		if len(symbols) == 0 && (analysisType == models.AnalysisMarket || analysisType == models.AnalysisInvestment) {
			symbols = bellwethers
		}
		quotes = a.resolveQuotes(ctx, symbols)
	}

	genReq := models.GenerationRequest{
		Prompt:       req.Prompt,
		AnalysisType: analysisType,
		Quotes:       quotes,
	}
	outcome := a.narratives.Resolve(ctx, genReq)

	rep := report.Assemble(report.Input{
		Prompt:            req.Prompt,
		AnalysisType:      analysisType,
		Quotes:            quotes,
		Narrative:         outcome.Payload,
		NarrativeProvider: outcome.Provider,
		NarrativeQuality:  outcome.Quality,
		ProcessingTime:    time.Since(start),
	})

	a.saveHistory(req.Prompt, analysisType, rep, quotes)

	return rep, nil
}

// resolveQuotes fans out one resolution per symbol and collects the
// results. Each quote is stamped with the provider and quality the
// resolver reported.
func (a *App) resolveQuotes(ctx context.Context, symbols []string) map[string]*models.Quote {
	if len(symbols) == 0 {
		return nil
	}

	quotes := make(map[string]*models.Quote, len(symbols))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, symbol := range symbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			outcome := a.quotes.Resolve(ctx, symbol)
			quote := outcome.Payload
			if quote == nil {
				return
			}
			quote.Source = outcome.Provider
			quote.Quality = outcome.Quality

			mu.Lock()
			quotes[symbol] = quote
			mu.Unlock()
		}(symbol)
	}
	wg.Wait()

	return quotes
}

// Snapshot resolves quotes for the fixed snapshot symbols and pairs each
// with a one-line outlook derived from its momentum.
func (a *App) Snapshot(ctx context.Context) *models.MarketSnapshot {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(a.cfg.Resolver.RequestTimeoutSeconds)*time.Second)
	defer cancel()

	quotes := a.resolveQuotes(ctx, snapshotSymbols)

	entries := make(map[string]models.SnapshotEntry, len(quotes))
	for symbol, quote := range quotes {
		entries[symbol] = models.SnapshotEntry{
			Quote:   quote,
			Outlook: fmt.Sprintf("%s momentum on %+.2f%% move", synthetic.MomentumBucket(quote.ChangePercent), quote.ChangePercent),
		}
	}

	return &models.MarketSnapshot{
		Entries:   entries,
		Timestamp: time.Now().UTC(),
	}
}

// ProviderStatus reports each registered provider's availability and usage
// across both resolvers.
func (a *App) ProviderStatus() []models.ProviderStatus {
	statuses := a.quotes.Status()
	return append(statuses, a.narratives.Status()...)
}

// saveHistory persists a report trace when a store is configured. Failures
// are logged and swallowed; history is best effort.
func (a *App) saveHistory(prompt string, analysisType models.AnalysisType, rep *models.Report, quotes map[string]*models.Quote) {
	if a.history == nil {
		return
	}

	liveData := false
	for _, q := range quotes {
		if q.IsLive() {
			liveData = true
			break
		}
	}

	rec := &models.ReportRecord{
		ID:           uuid.New(),
		Prompt:       prompt,
		AnalysisType: analysisType,
		ProviderUsed: rep.ProviderUsed,
		Confidence:   rep.ConfidenceScore,
		LiveData:     liveData,
		CreatedAt:    rep.Timestamp,
	}

	// Detached context so a request deadline does not cancel the write
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := services.WithRetry(ctx, services.DefaultRetryConfig, func() error {
		return a.history.SaveReport(ctx, rec)
	})
	if err != nil {
		observability.Error("failed to persist report history", "error", err)
	}
}
