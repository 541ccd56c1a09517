package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fintech-analyst/resolver"
)

func longCompletion() string {
	return strings.Repeat("The market outlook remains constructive. ", 10)
}

func TestHuggingFace_FetchGeneration(t *testing.T) {
	resetBreakers(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("authorization = %q", got)
		}
		fmt.Fprintf(w, `[{"generated_text": %q}]`, longCompletion())
	}))
	defer server.Close()

	svc := NewHuggingFaceService("test-token")
	svc.baseURL = server.URL

	text, err := svc.FetchGeneration(context.Background(), "You are an analyst.", "Analyze MSFT.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != longCompletion() {
		t.Errorf("unexpected text: %q", text)
	}
}

func TestHuggingFace_TruncatedTextTriesNextModel(t *testing.T) {
	resetBreakers(t)
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Write([]byte(`[{"generated_text": "too short"}]`))
			return
		}
		fmt.Fprintf(w, `[{"generated_text": %q}]`, longCompletion())
	}))
	defer server.Close()

	svc := NewHuggingFaceService("test-token")
	svc.baseURL = server.URL

	text, err := svc.FetchGeneration(context.Background(), "sys", "user")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want fallthrough to second model", calls)
	}
	if len(text) < minGenerationLength {
		t.Error("returned text should meet the minimum length")
	}
}

func TestHuggingFace_429IsQuotaSignal(t *testing.T) {
	resetBreakers(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	svc := NewHuggingFaceService("test-token")
	svc.baseURL = server.URL

	_, err := svc.FetchGeneration(context.Background(), "sys", "user")
	if !resolver.IsQuotaSignal(err) {
		t.Errorf("429 should classify as quota signal, got %v", err)
	}
}

func TestHuggingFace_AllModelsFailing(t *testing.T) {
	resetBreakers(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	svc := NewHuggingFaceService("test-token")
	svc.baseURL = server.URL

	_, err := svc.FetchGeneration(context.Background(), "sys", "user")
	if err == nil {
		t.Fatal("expected error when every model is unavailable")
	}
	if resolver.IsQuotaSignal(err) {
		t.Error("cold models are a soft failure, not a quota signal")
	}
}
