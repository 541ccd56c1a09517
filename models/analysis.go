package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// AnalysisType selects the narrative framing for a generation request.
type AnalysisType string

const (
	AnalysisInvestment AnalysisType = "investment"
	AnalysisRisk       AnalysisType = "risk"
	AnalysisMarket     AnalysisType = "market"
	AnalysisGeneral    AnalysisType = "general"
)

// ParseAnalysisType normalizes a request value, defaulting to general.
func ParseAnalysisType(s string) AnalysisType {
	switch AnalysisType(strings.ToLower(strings.TrimSpace(s))) {
	case AnalysisInvestment:
		return AnalysisInvestment
	case AnalysisRisk:
		return AnalysisRisk
	case AnalysisMarket:
		return AnalysisMarket
	default:
		return AnalysisGeneral
	}
}

// AnalysisRequest is the inbound request from the service layer.
type AnalysisRequest struct {
	Prompt              string `json:"prompt"`
	AnalysisType        string `json:"analysis_type"`
	IncludeRealTimeData bool   `json:"include_real_time_data"`
}

// GenerationRequest is the resource key the narrative resolver operates on.
// Quotes carries the live market context resolved earlier in the same
// request so the synthetic fallback can key its templates on real data.
type GenerationRequest struct {
	Prompt       string
	AnalysisType AnalysisType
	Quotes       map[string]*Quote
}

// Report is the final assembled response for an analysis request.
type Report struct {
	GeneratedText         string    `json:"generated_text"`
	ProviderUsed          string    `json:"provider_used"`
	ConfidenceScore       float64   `json:"confidence_score"`
	ProcessingTimeSeconds float64   `json:"processing_time_seconds"`
	Timestamp             time.Time `json:"timestamp"`
}

// ReportRecord is the persisted trace of an assembled report.
type ReportRecord struct {
	ID           uuid.UUID    `json:"id"`
	Prompt       string       `json:"prompt"`
	AnalysisType AnalysisType `json:"analysis_type"`
	ProviderUsed string       `json:"provider_used"`
	Confidence   float64      `json:"confidence"`
	LiveData     bool         `json:"live_data"`
	CreatedAt    time.Time    `json:"created_at"`
}

// ProviderStatus is the per-provider availability snapshot exposed on the
// status endpoint.
type ProviderStatus struct {
	ID        string `json:"id"`
	Resource  string `json:"resource"`
	Priority  int    `json:"priority"`
	Enabled   bool   `json:"enabled"`
	Unlimited bool   `json:"unlimited"`
	CallsUsed int    `json:"calls_used,omitempty"`
	CallCap   int    `json:"call_cap,omitempty"`
	Exhausted bool   `json:"exhausted,omitempty"`
}

// SnapshotEntry pairs a resolved quote with a short outlook line.
type SnapshotEntry struct {
	Quote   *Quote `json:"quote"`
	Outlook string `json:"outlook"`
}

// MarketSnapshot is the response for the market-snapshot endpoint.
type MarketSnapshot struct {
	Entries   map[string]SnapshotEntry `json:"entries"`
	Timestamp time.Time                `json:"timestamp"`
}
