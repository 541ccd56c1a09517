package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewMetrics_AllInitialized(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	if m.ResolutionRequestsTotal == nil {
		t.Error("ResolutionRequestsTotal is nil")
	}
	if m.ResolutionDuration == nil {
		t.Error("ResolutionDuration is nil")
	}
	if m.SyntheticFallbacksTotal == nil {
		t.Error("SyntheticFallbacksTotal is nil")
	}
	if m.ProviderAttemptsTotal == nil {
		t.Error("ProviderAttemptsTotal is nil")
	}
	if m.ProviderSkipsTotal == nil {
		t.Error("ProviderSkipsTotal is nil")
	}
	if m.QuotaExhaustionsTotal == nil {
		t.Error("QuotaExhaustionsTotal is nil")
	}
	if m.ConfidenceScores == nil {
		t.Error("ConfidenceScores is nil")
	}
	if m.HTTPRequestsTotal == nil {
		t.Error("HTTPRequestsTotal is nil")
	}
	if m.CircuitBreakerState == nil {
		t.Error("CircuitBreakerState is nil")
	}
	if m.DBQueryDuration == nil {
		t.Error("DBQueryDuration is nil")
	}
}

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordResolutionRequest("quote")
	m.RecordResolutionRequest("quote")
	if got := testutil.ToFloat64(m.ResolutionRequestsTotal.WithLabelValues("quote")); got != 2 {
		t.Errorf("resolution requests = %v, want 2", got)
	}

	m.RecordSyntheticFallback("generation")
	if got := testutil.ToFloat64(m.SyntheticFallbacksTotal.WithLabelValues("generation")); got != 1 {
		t.Errorf("synthetic fallbacks = %v, want 1", got)
	}

	m.RecordProviderSkip("alphavantage", "quota")
	if got := testutil.ToFloat64(m.ProviderSkipsTotal.WithLabelValues("alphavantage", "quota")); got != 1 {
		t.Errorf("provider skips = %v, want 1", got)
	}

	m.RecordQuotaExhaustion("alphavantage")
	if got := testutil.ToFloat64(m.QuotaExhaustionsTotal.WithLabelValues("alphavantage")); got != 1 {
		t.Errorf("quota exhaustions = %v, want 1", got)
	}
}

func TestMetrics_ProviderAttempt(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordProviderAttempt("yahoo", "success", 50*time.Millisecond)
	m.RecordProviderAttempt("yahoo", "soft_failure", 10*time.Millisecond)

	if got := testutil.ToFloat64(m.ProviderAttemptsTotal.WithLabelValues("yahoo", "success")); got != 1 {
		t.Errorf("success attempts = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ProviderAttemptsTotal.WithLabelValues("yahoo", "soft_failure")); got != 1 {
		t.Errorf("soft failure attempts = %v, want 1", got)
	}
}

func TestMetrics_CircuitBreakerState(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.SetCircuitBreakerState("yahoo", 2)
	if got := testutil.ToFloat64(m.CircuitBreakerState.WithLabelValues("yahoo")); got != 2 {
		t.Errorf("breaker state = %v, want 2", got)
	}

	m.RecordCircuitBreakerTrip("yahoo")
	if got := testutil.ToFloat64(m.CircuitBreakerTrips.WithLabelValues("yahoo")); got != 1 {
		t.Errorf("breaker trips = %v, want 1", got)
	}
}

func TestSetMetrics_OverridesGlobal(t *testing.T) {
	original := GetMetrics()
	defer SetMetrics(original)

	replacement := NewMetrics(prometheus.NewRegistry())
	SetMetrics(replacement)

	if GetMetrics() != replacement {
		t.Error("SetMetrics should override the global instance")
	}
}
