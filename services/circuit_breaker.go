package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"

	"fintech-analyst/observability"
)

// Circuit breaker names, one per upstream provider. The resolver treats an
// open breaker as an ordinary soft failure, so tripping never changes the
// fallback order; it only spares the latency of calls known to fail.
const (
	BreakerYahoo        = "yahoo"
	BreakerAlpaca       = "alpaca"
	BreakerAlphaVantage = "alphavantage"
	BreakerFinnhub      = "finnhub"
	BreakerOpenAI       = "openai"
	BreakerBedrock      = "bedrock"
	BreakerHuggingFace  = "huggingface"
)

// CircuitBreakerConfig tunes breaker behavior. Zero values for the trip
// rule fall back to the defaults below.
type CircuitBreakerConfig struct {
	MaxRequests  uint32        // probes allowed while half-open
	Interval     time.Duration // closed-state window for clearing counts
	Timeout      time.Duration // open-state duration before half-open
	MinRequests  uint32        // minimum samples before the trip rule applies
	FailureRatio float64       // failure share at or above which the breaker trips
}

// DefaultCircuitBreakerConfig trips on a 50% failure rate over at least 5
// calls and probes again after 30 seconds.
var DefaultCircuitBreakerConfig = CircuitBreakerConfig{
	MaxRequests:  5,
	Interval:     time.Minute,
	Timeout:      30 * time.Second,
	MinRequests:  5,
	FailureRatio: 0.5,
}

// CircuitBreakerRegistry lazily creates one breaker per provider name and
// hands out the same instance for the process lifetime.
type CircuitBreakerRegistry struct {
	mu       sync.RWMutex
	config   CircuitBreakerConfig
	breakers map[string]*gobreaker.CircuitBreaker[any]
}

// NewCircuitBreakerRegistry creates an empty registry with the given config.
func NewCircuitBreakerRegistry(config CircuitBreakerConfig) *CircuitBreakerRegistry {
	return &CircuitBreakerRegistry{
		config:   config,
		breakers: make(map[string]*gobreaker.CircuitBreaker[any]),
	}
}

// GetBreaker returns the breaker for a provider, creating it on first use.
func (r *CircuitBreakerRegistry) GetBreaker(name string) *gobreaker.CircuitBreaker[any] {
	r.mu.RLock()
	cb, ok := r.breakers[name]
	r.mu.RUnlock()
	if ok {
		return cb
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if cb, ok = r.breakers[name]; ok {
		return cb
	}

	cb = gobreaker.NewCircuitBreaker[any](r.settingsFor(name))
	r.breakers[name] = cb
	return cb
}

func (r *CircuitBreakerRegistry) settingsFor(name string) gobreaker.Settings {
	minRequests := r.config.MinRequests
	if minRequests == 0 {
		minRequests = DefaultCircuitBreakerConfig.MinRequests
	}
	ratio := r.config.FailureRatio
	if ratio == 0 {
		ratio = DefaultCircuitBreakerConfig.FailureRatio
	}

	return gobreaker.Settings{
		Name:        name,
		MaxRequests: r.config.MaxRequests,
		Interval:    r.config.Interval,
		Timeout:     r.config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= minRequests && failureRatio >= ratio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			observability.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String())

			metrics := observability.GetMetrics()
			metrics.SetCircuitBreakerState(name, stateToInt(to))
			if to == gobreaker.StateOpen {
				metrics.RecordCircuitBreakerTrip(name)
			}
		},
	}
}

// Execute runs fn through the named breaker. gobreaker returns fn's error
// unchanged, so classified provider errors (quota signals in particular)
// survive the wrapper; only the breaker's own rejections are rewritten.
func (r *CircuitBreakerRegistry) Execute(ctx context.Context, name string, fn func() (any, error)) (any, error) {
	result, err := r.GetBreaker(name).Execute(func() (any, error) {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return fn()
	})

	switch err {
	case gobreaker.ErrOpenState:
		observability.Warn("circuit breaker open, rejecting request", "breaker", name)
		return nil, fmt.Errorf("service %s unavailable: circuit breaker open", name)
	case gobreaker.ErrTooManyRequests:
		observability.Warn("circuit breaker half-open, probe budget spent", "breaker", name)
		return nil, fmt.Errorf("service %s unavailable: circuit breaker open to new requests", name)
	}

	return result, err
}

// CircuitBreakerStatus is the point-in-time view of one breaker, exposed on
// the health endpoint.
type CircuitBreakerStatus struct {
	Name             string `json:"name"`
	State            string `json:"state"`
	Requests         uint32 `json:"requests"`
	TotalSuccesses   uint32 `json:"total_successes"`
	TotalFailures    uint32 `json:"total_failures"`
	ConsecutiveSucc  uint32 `json:"consecutive_successes"`
	ConsecutiveFails uint32 `json:"consecutive_failures"`
}

// Status reports the state and counts of every breaker created so far.
func (r *CircuitBreakerRegistry) Status() map[string]CircuitBreakerStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	status := make(map[string]CircuitBreakerStatus, len(r.breakers))
	for name, cb := range r.breakers {
		counts := cb.Counts()
		status[name] = CircuitBreakerStatus{
			Name:             name,
			State:            cb.State().String(),
			Requests:         counts.Requests,
			TotalSuccesses:   counts.TotalSuccesses,
			TotalFailures:    counts.TotalFailures,
			ConsecutiveSucc:  counts.ConsecutiveSuccesses,
			ConsecutiveFails: counts.ConsecutiveFailures,
		}
	}
	return status
}

var (
	globalRegistry *CircuitBreakerRegistry
	registryOnce   sync.Once
)

// GetGlobalRegistry returns the process-wide breaker registry.
func GetGlobalRegistry() *CircuitBreakerRegistry {
	registryOnce.Do(func() {
		if globalRegistry == nil {
			globalRegistry = NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig)
		}
	})
	return globalRegistry
}

// SetGlobalRegistry overrides the global registry (useful for testing).
func SetGlobalRegistry(r *CircuitBreakerRegistry) {
	globalRegistry = r
}

// WithCircuitBreaker wraps a typed call with breaker protection.
func WithCircuitBreaker[T any](ctx context.Context, name string, fn func() (T, error)) (T, error) {
	result, err := GetGlobalRegistry().Execute(ctx, name, func() (any, error) {
		return fn()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result.(T), nil
}

// stateToInt maps breaker states for the gauge: 0=closed, 1=half-open, 2=open.
func stateToInt(state gobreaker.State) int {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
