package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"fintech-analyst/observability"
	"fintech-analyst/resolver"
)

// minGenerationLength rejects truncated or degenerate completions so a
// better provider (or the fallback) can serve instead.
const minGenerationLength = 120

// defaultHFModels are tried in order until one produces usable text.
var defaultHFModels = []string{
	"mistralai/Mistral-7B-Instruct-v0.3",
	"microsoft/Phi-3-mini-4k-instruct",
	"google/flan-t5-large",
}

// HuggingFaceService handles communication with the Hugging Face inference API
type HuggingFaceService struct {
	apiToken   string
	httpClient *http.Client
	baseURL    string
	models     []string
}

// NewHuggingFaceService creates a new HuggingFaceService instance
func NewHuggingFaceService(apiToken string) *HuggingFaceService {
	return &HuggingFaceService{
		apiToken:   apiToken,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    "https://api-inference.huggingface.co/models",
		models:     defaultHFModels,
	}
}

// hfRequest is the inference API payload
type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float64 `json:"temperature"`
	ReturnFullText bool    `json:"return_full_text"`
}

// hfGeneration is one element of the inference API response array
type hfGeneration struct {
	GeneratedText string `json:"generated_text"`
}

// FetchGeneration tries each configured model in order and returns the first
// acceptable completion. Rate limiting at the account level is a quota
// signal; a single bad model response is not.
func (s *HuggingFaceService) FetchGeneration(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return WithCircuitBreaker(ctx, BreakerHuggingFace, func() (string, error) {
		prompt := systemPrompt + "\n\n" + userPrompt
		var lastErr error

		for _, model := range s.models {
			text, err := s.invokeModel(ctx, model, prompt)
			if err != nil {
				if resolver.IsQuotaSignal(err) {
					return "", err
				}
				observability.Debug("huggingface model failed",
					"model", model,
					"error", err)
				lastErr = err
				continue
			}
			if len(strings.TrimSpace(text)) < minGenerationLength {
				lastErr = fmt.Errorf("model %s returned truncated text", model)
				continue
			}
			return text, nil
		}

		return "", fmt.Errorf("all huggingface models failed: %w", lastErr)
	})
}

func (s *HuggingFaceService) invokeModel(ctx context.Context, model, prompt string) (string, error) {
	payload := hfRequest{
		Inputs: prompt,
		Parameters: hfParameters{
			MaxNewTokens:   600,
			Temperature:    0.7,
			ReturnFullText: false,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/"+model, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to invoke model: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return "", fmt.Errorf("huggingface rate limited: %w", resolver.ErrQuotaSignal)
	case http.StatusServiceUnavailable:
		// Model is cold loading; treated as a failure for this attempt
		return "", fmt.Errorf("model %s is loading", model)
	default:
		return "", fmt.Errorf("inference request returned status %d", resp.StatusCode)
	}

	var generations []hfGeneration
	if err := json.NewDecoder(resp.Body).Decode(&generations); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(generations) == 0 {
		return "", fmt.Errorf("empty response from model %s", model)
	}

	return generations[0].GeneratedText, nil
}
