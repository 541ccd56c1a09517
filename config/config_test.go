package config

import (
	"testing"
)

func TestIsPlaceholder(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"your_alpha_vantage_key_here", true},
		{"YOUR_OPENAI_KEY_HERE", true},
		{"your_key_here", true},
		{"sk-real-key-123", false},
		{"", false},
		{"your_key", false},
		{"key_here", false},
	}

	for _, tt := range tests {
		if got := isPlaceholder(tt.value); got != tt.want {
			t.Errorf("isPlaceholder(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestGetEnvCredential_TreatsPlaceholderAsUnset(t *testing.T) {
	t.Setenv("TEST_CRED", "your_api_key_here")
	if got := getEnvCredential("TEST_CRED"); got != "" {
		t.Errorf("placeholder credential should read as unset, got %q", got)
	}

	t.Setenv("TEST_CRED", "  real-key  ")
	if got := getEnvCredential("TEST_CRED"); got != "real-key" {
		t.Errorf("credential = %q, want trimmed real-key", got)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.AlphaVantage.DailyCap != 25 {
		t.Errorf("daily cap = %d, want 25", cfg.AlphaVantage.DailyCap)
	}
	if cfg.Resolver.ProviderTimeoutSeconds != 10 {
		t.Errorf("provider timeout = %d, want 10", cfg.Resolver.ProviderTimeoutSeconds)
	}
	if cfg.Resolver.MaxSymbolsPerRequest != 3 {
		t.Errorf("max symbols = %d, want 3", cfg.Resolver.MaxSymbolsPerRequest)
	}
	if cfg.HTTP.Port != "8000" {
		t.Errorf("port = %s, want 8000", cfg.HTTP.Port)
	}
}

func TestLoad_PlaceholderDisablesProvider(t *testing.T) {
	t.Setenv("ALPHA_VANTAGE_API_KEY", "your_alpha_vantage_key_here")
	t.Setenv("FINNHUB_API_KEY", "real-finnhub-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.HasAlphaVantage() {
		t.Error("placeholder key should leave alpha vantage disabled")
	}
	if !cfg.HasFinnhub() {
		t.Error("real key should enable finnhub")
	}
}

func TestHasBedrock_NeedsRegionAndModel(t *testing.T) {
	cfg := NewTestConfig()
	if cfg.HasBedrock() {
		t.Error("empty bedrock config should read as disabled")
	}

	cfg.Bedrock.Region = "us-east-1"
	if cfg.HasBedrock() {
		t.Error("region without model should read as disabled")
	}

	cfg.Bedrock.ModelID = "anthropic.claude-3-5-sonnet-20241022-v2:0"
	if !cfg.HasBedrock() {
		t.Error("region and model should enable bedrock")
	}
}

func TestValidate_RejectsBadValues(t *testing.T) {
	cfg := NewTestConfig()
	cfg.Resolver.ConcurrencyLimit = 0
	if err := cfg.Validate(); err == nil {
		t.Error("zero concurrency limit should fail validation")
	}

	cfg = NewTestConfig()
	cfg.AlphaVantage.DailyCap = -1
	if err := cfg.Validate(); err == nil {
		t.Error("negative daily cap should fail validation")
	}
}
