package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// Resolution metrics
	ResolutionRequestsTotal *prometheus.CounterVec
	ResolutionDuration      *prometheus.HistogramVec
	SyntheticFallbacksTotal *prometheus.CounterVec

	// Provider metrics
	ProviderAttemptsTotal *prometheus.CounterVec
	ProviderSkipsTotal    *prometheus.CounterVec
	ProviderDuration      *prometheus.HistogramVec
	QuotaExhaustionsTotal *prometheus.CounterVec

	// Report metrics
	ConfidenceScores prometheus.Histogram

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Circuit breaker metrics
	CircuitBreakerState *prometheus.GaugeVec
	CircuitBreakerTrips *prometheus.CounterVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBErrorsTotal   *prometheus.CounterVec
}

// defaultBuckets are the default histogram buckets for duration metrics (in seconds)
var defaultBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}

// confidenceBuckets are histogram buckets for confidence scores (0 to 1)
var confidenceBuckets = []float64{0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1}

// globalMetrics is the global metrics instance
var globalMetrics *Metrics

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)

	m := &Metrics{
		ResolutionRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fintech_analyst",
				Subsystem: "resolution",
				Name:      "requests_total",
				Help:      "Total number of resolution requests by resource type",
			},
			[]string{"resource"},
		),
		ResolutionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "fintech_analyst",
				Subsystem: "resolution",
				Name:      "duration_seconds",
				Help:      "Duration of resolution requests by resource type and outcome",
				Buckets:   defaultBuckets,
			},
			[]string{"resource", "outcome"},
		),
		SyntheticFallbacksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fintech_analyst",
				Subsystem: "resolution",
				Name:      "synthetic_fallbacks_total",
				Help:      "Total number of resolutions served by the synthetic fallback",
			},
			[]string{"resource"},
		),
		ProviderAttemptsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fintech_analyst",
				Subsystem: "provider",
				Name:      "attempts_total",
				Help:      "Total provider handler invocations by outcome",
			},
			[]string{"provider", "outcome"},
		),
		ProviderSkipsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fintech_analyst",
				Subsystem: "provider",
				Name:      "skips_total",
				Help:      "Total provider attempts skipped without handler invocation",
			},
			[]string{"provider", "reason"},
		),
		ProviderDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "fintech_analyst",
				Subsystem: "provider",
				Name:      "duration_seconds",
				Help:      "Duration of provider handler invocations",
				Buckets:   defaultBuckets,
			},
			[]string{"provider"},
		),
		QuotaExhaustionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fintech_analyst",
				Subsystem: "provider",
				Name:      "quota_exhaustions_total",
				Help:      "Total explicit quota-exhaustion signals by provider",
			},
			[]string{"provider"},
		),
		ConfidenceScores: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "fintech_analyst",
				Subsystem: "report",
				Name:      "confidence_score",
				Help:      "Confidence scores of assembled reports",
				Buckets:   confidenceBuckets,
			},
		),
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fintech_analyst",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "fintech_analyst",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests",
				Buckets:   defaultBuckets,
			},
			[]string{"method", "route"},
		),
		HTTPResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "fintech_analyst",
				Subsystem: "http",
				Name:      "response_size_bytes",
				Help:      "Size of HTTP responses",
				Buckets:   []float64{256, 1024, 4096, 16384, 65536, 262144, 1048576},
			},
			[]string{"method", "route"},
		),
		CircuitBreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "fintech_analyst",
				Subsystem: "circuit_breaker",
				Name:      "state",
				Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
			},
			[]string{"breaker"},
		),
		CircuitBreakerTrips: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fintech_analyst",
				Subsystem: "circuit_breaker",
				Name:      "trips_total",
				Help:      "Total circuit breaker trips",
			},
			[]string{"breaker"},
		),
		DBQueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "fintech_analyst",
				Subsystem: "db",
				Name:      "query_duration_seconds",
				Help:      "Duration of database queries",
				Buckets:   defaultBuckets,
			},
			[]string{"operation", "table"},
		),
		DBErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fintech_analyst",
				Subsystem: "db",
				Name:      "errors_total",
				Help:      "Total database errors",
			},
			[]string{"operation", "table"},
		),
	}

	return m
}

// InitMetrics initializes the global metrics instance
func InitMetrics() {
	if globalMetrics == nil {
		globalMetrics = NewMetrics(nil)
	}
}

// GetMetrics returns the global metrics instance, initializing it if needed.
// Tests that need isolation should call SetMetrics with a fresh registry.
func GetMetrics() *Metrics {
	if globalMetrics == nil {
		globalMetrics = NewMetrics(prometheus.NewRegistry())
	}
	return globalMetrics
}

// SetMetrics overrides the global metrics instance (useful for testing)
func SetMetrics(m *Metrics) {
	globalMetrics = m
}

// RecordResolutionRequest increments the resolution request counter
func (m *Metrics) RecordResolutionRequest(resource string) {
	m.ResolutionRequestsTotal.WithLabelValues(resource).Inc()
}

// RecordSyntheticFallback increments the synthetic fallback counter
func (m *Metrics) RecordSyntheticFallback(resource string) {
	m.SyntheticFallbacksTotal.WithLabelValues(resource).Inc()
}

// RecordProviderAttempt records a provider invocation and its outcome
func (m *Metrics) RecordProviderAttempt(provider, outcome string, duration time.Duration) {
	m.ProviderAttemptsTotal.WithLabelValues(provider, outcome).Inc()
	m.ProviderDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordProviderSkip records a provider skipped without invocation
func (m *Metrics) RecordProviderSkip(provider, reason string) {
	m.ProviderSkipsTotal.WithLabelValues(provider, reason).Inc()
}

// RecordQuotaExhaustion records an explicit quota-exhaustion signal
func (m *Metrics) RecordQuotaExhaustion(provider string) {
	m.QuotaExhaustionsTotal.WithLabelValues(provider).Inc()
}

// RecordConfidenceScore records an assembled report confidence score
func (m *Metrics) RecordConfidenceScore(score float64) {
	m.ConfidenceScores.Observe(score)
}

// RecordHTTPRequest records metrics for one HTTP request
func (m *Metrics) RecordHTTPRequest(method, route, status string, duration time.Duration, responseSize int) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
	m.HTTPResponseSize.WithLabelValues(method, route).Observe(float64(responseSize))
}

// SetCircuitBreakerState updates the state gauge for a breaker
func (m *Metrics) SetCircuitBreakerState(breaker string, state int) {
	m.CircuitBreakerState.WithLabelValues(breaker).Set(float64(state))
}

// RecordCircuitBreakerTrip increments the trip counter for a breaker
func (m *Metrics) RecordCircuitBreakerTrip(breaker string) {
	m.CircuitBreakerTrips.WithLabelValues(breaker).Inc()
}

// Timer measures elapsed time for a single observation
type Timer struct {
	start time.Time
	m     *Metrics
}

// NewTimer starts a new timer
func (m *Metrics) NewTimer() *Timer {
	return &Timer{start: time.Now(), m: m}
}

// Elapsed returns the time since the timer started
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}

// ObserveResolution records the resolution duration with the given labels
func (t *Timer) ObserveResolution(resource, outcome string) {
	t.m.ResolutionDuration.WithLabelValues(resource, outcome).Observe(t.Elapsed().Seconds())
}

// ObserveDB records the query duration with the given labels
func (t *Timer) ObserveDB(operation, table string) {
	t.m.DBQueryDuration.WithLabelValues(operation, table).Observe(t.Elapsed().Seconds())
}

// RecordDBError increments the database error counter
func (m *Metrics) RecordDBError(operation, table string) {
	m.DBErrorsTotal.WithLabelValues(operation, table).Inc()
}
