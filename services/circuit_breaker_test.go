package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestCircuitBreakerRegistry_ReusesBreakers(t *testing.T) {
	registry := NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig)

	first := registry.GetBreaker(BreakerYahoo)
	second := registry.GetBreaker(BreakerYahoo)
	other := registry.GetBreaker(BreakerFinnhub)

	if first != second {
		t.Error("same name should return the same breaker")
	}
	if first == other {
		t.Error("different names should get distinct breakers")
	}
}

func TestCircuitBreaker_TripsAfterRepeatedFailures(t *testing.T) {
	registry := NewCircuitBreakerRegistry(CircuitBreakerConfig{
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     time.Minute,
	})
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		registry.Execute(ctx, "flaky", func() (any, error) {
			return nil, errors.New("upstream down")
		})
	}

	_, err := registry.Execute(ctx, "flaky", func() (any, error) {
		t.Error("open breaker must not invoke the function")
		return nil, nil
	})
	if err == nil || !strings.Contains(err.Error(), "circuit breaker open") {
		t.Errorf("expected open breaker error, got %v", err)
	}

	status := registry.Status()["flaky"]
	if status.State != "open" {
		t.Errorf("state = %s, want open", status.State)
	}
}

func TestWithCircuitBreaker_TypedResult(t *testing.T) {
	SetGlobalRegistry(NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig))

	result, err := WithCircuitBreaker(context.Background(), "typed", func() (int, error) {
		return 42, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != 42 {
		t.Errorf("result = %d, want 42", result)
	}
}

func TestWithCircuitBreaker_ErrorReturnsZeroValue(t *testing.T) {
	SetGlobalRegistry(NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig))

	result, err := WithCircuitBreaker(context.Background(), "erroring", func() (string, error) {
		return "partial", errors.New("failed")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if result != "" {
		t.Errorf("result = %q, want zero value", result)
	}
}
