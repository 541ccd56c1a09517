package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration
type Config struct {
	// Database configuration (optional report history)
	Database DatabaseConfig

	// Quote provider configurations
	Alpaca       AlpacaConfig
	AlphaVantage AlphaVantageConfig
	Finnhub      FinnhubConfig

	// Generation provider configurations
	OpenAI      OpenAIConfig
	Bedrock     BedrockConfig
	HuggingFace HuggingFaceConfig

	// Resolver configuration
	Resolver ResolverConfig

	// Synthetic fallback configuration
	Synthetic SyntheticConfig

	// HTTP configuration
	HTTP HTTPConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// AlpacaConfig holds Alpaca API configuration
type AlpacaConfig struct {
	APIKey    string
	APISecret string
}

// AlphaVantageConfig holds Alpha Vantage API configuration
type AlphaVantageConfig struct {
	APIKey   string
	DailyCap int
}

// FinnhubConfig holds Finnhub API configuration
type FinnhubConfig struct {
	APIKey string
}

// OpenAIConfig holds OpenAI API configuration
type OpenAIConfig struct {
	APIKey    string
	Model     string
	MaxTokens int
}

// BedrockConfig holds AWS Bedrock configuration
type BedrockConfig struct {
	Region    string
	ModelID   string
	MaxTokens int
}

// HuggingFaceConfig holds Hugging Face inference API configuration
type HuggingFaceConfig struct {
	APIToken string
}

// ResolverConfig holds tiered-resolver tuning
type ResolverConfig struct {
	ProviderTimeoutSeconds int // per-call timeout for a single provider attempt
	RequestTimeoutSeconds  int // overall deadline for one inbound request
	ConcurrencyLimit       int // concurrent analysis requests admitted
	MaxSymbolsPerRequest   int // symbols resolved for one logical request
}

// SyntheticConfig holds synthetic fallback configuration
type SyntheticConfig struct {
	Seed int64 // 0 means seed from the wall clock at startup
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	Port               string
	CORSAllowedOrigins string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Alpaca: AlpacaConfig{
			APIKey:    getEnvCredential("ALPACA_API_KEY"),
			APISecret: getEnvCredential("ALPACA_API_SECRET"),
		},
		AlphaVantage: AlphaVantageConfig{
			APIKey:   getEnvCredential("ALPHA_VANTAGE_API_KEY"),
			DailyCap: getEnvInt("ALPHA_VANTAGE_DAILY_CAP", 25),
		},
		Finnhub: FinnhubConfig{
			APIKey: getEnvCredential("FINNHUB_API_KEY"),
		},
		OpenAI: OpenAIConfig{
			APIKey:    getEnvCredential("OPENAI_API_KEY"),
			Model:     getEnvString("OPENAI_MODEL", "gpt-4o"),
			MaxTokens: getEnvInt("OPENAI_MAX_TOKENS", 1024),
		},
		Bedrock: BedrockConfig{
			Region:    os.Getenv("AWS_REGION"),
			ModelID:   os.Getenv("BEDROCK_MODEL_ID"),
			MaxTokens: getEnvInt("BEDROCK_MAX_TOKENS", 4096),
		},
		HuggingFace: HuggingFaceConfig{
			APIToken: getEnvCredential("HUGGING_FACE_API_TOKEN"),
		},
		Resolver: ResolverConfig{
			ProviderTimeoutSeconds: getEnvInt("PROVIDER_TIMEOUT_SECONDS", 10),
			RequestTimeoutSeconds:  getEnvInt("REQUEST_TIMEOUT_SECONDS", 30),
			ConcurrencyLimit:       getEnvInt("ANALYSIS_CONCURRENCY_LIMIT", 8),
			MaxSymbolsPerRequest:   getEnvInt("MAX_SYMBOLS_PER_REQUEST", 3),
		},
		Synthetic: SyntheticConfig{
			Seed: getEnvInt64("SYNTHETIC_SEED", 0),
		},
		HTTP: HTTPConfig{
			Port:               getEnvString("PORT", "8000"),
			CORSAllowedOrigins: getEnvString("CORS_ALLOWED_ORIGINS", "*"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Resolver.ProviderTimeoutSeconds <= 0 {
		return fmt.Errorf("PROVIDER_TIMEOUT_SECONDS must be positive, got %d", c.Resolver.ProviderTimeoutSeconds)
	}
	if c.Resolver.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT_SECONDS must be positive, got %d", c.Resolver.RequestTimeoutSeconds)
	}
	if c.Resolver.ConcurrencyLimit <= 0 {
		return fmt.Errorf("ANALYSIS_CONCURRENCY_LIMIT must be positive, got %d", c.Resolver.ConcurrencyLimit)
	}
	if c.Resolver.MaxSymbolsPerRequest <= 0 {
		return fmt.Errorf("MAX_SYMBOLS_PER_REQUEST must be positive, got %d", c.Resolver.MaxSymbolsPerRequest)
	}
	if c.AlphaVantage.DailyCap <= 0 {
		return fmt.Errorf("ALPHA_VANTAGE_DAILY_CAP must be positive, got %d", c.AlphaVantage.DailyCap)
	}
	return nil
}

// HasDatabase returns true if database configuration is available
func (c *Config) HasDatabase() bool {
	return c.Database.URL != ""
}

// HasAlpaca returns true if Alpaca credentials are available
func (c *Config) HasAlpaca() bool {
	return c.Alpaca.APIKey != "" && c.Alpaca.APISecret != ""
}

// HasAlphaVantage returns true if an Alpha Vantage key is available
func (c *Config) HasAlphaVantage() bool {
	return c.AlphaVantage.APIKey != ""
}

// HasFinnhub returns true if a Finnhub key is available
func (c *Config) HasFinnhub() bool {
	return c.Finnhub.APIKey != ""
}

// HasOpenAI returns true if an OpenAI key is available
func (c *Config) HasOpenAI() bool {
	return c.OpenAI.APIKey != ""
}

// HasBedrock returns true if Bedrock configuration is available
func (c *Config) HasBedrock() bool {
	return c.Bedrock.Region != "" && c.Bedrock.ModelID != ""
}

// HasHuggingFace returns true if a Hugging Face token is available
func (c *Config) HasHuggingFace() bool {
	return c.HuggingFace.APIToken != ""
}

// isPlaceholder reports whether a credential still carries the sample value
// shipped in .env templates (e.g. "your_alpha_vantage_key_here"). Such
// values count as absent so the provider is disabled at registration.
func isPlaceholder(v string) bool {
	lower := strings.ToLower(v)
	return strings.HasPrefix(lower, "your_") && strings.HasSuffix(lower, "_here")
}

// getEnvCredential reads a credential, treating placeholder values as unset.
func getEnvCredential(key string) string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" || isPlaceholder(val) {
		return ""
	}
	return val
}

func getEnvString(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseInt(val, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// NewTestConfig creates a Config with default values for testing
func NewTestConfig() *Config {
	return &Config{
		AlphaVantage: AlphaVantageConfig{DailyCap: 25},
		OpenAI:       OpenAIConfig{Model: "gpt-4o", MaxTokens: 1024},
		Resolver: ResolverConfig{
			ProviderTimeoutSeconds: 10,
			RequestTimeoutSeconds:  30,
			ConcurrencyLimit:       8,
			MaxSymbolsPerRequest:   3,
		},
		Synthetic: SyntheticConfig{Seed: 1},
		HTTP: HTTPConfig{
			Port:               "8000",
			CORSAllowedOrigins: "*",
		},
	}
}
