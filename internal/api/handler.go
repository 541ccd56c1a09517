package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"fintech-analyst/config"
	"fintech-analyst/internal/app"
	"fintech-analyst/models"
	"fintech-analyst/observability"
	"fintech-analyst/services"
)

// Handler handles HTTP API requests
type Handler struct {
	app *app.App
	cfg *config.Config
}

// NewHandler creates a new Handler
func NewHandler(application *app.App, cfg *config.Config) *Handler {
	return &Handler{app: application, cfg: cfg}
}

// HandleIndex returns the service banner with provider and quota status
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, map[string]interface{}{
		"service":   "fintech-analyst",
		"status":    "running",
		"providers": h.app.ProviderStatus(),
		"endpoints": []string{
			"POST /analyze-financial-data",
			"POST /market-snapshot",
			"GET /api/health",
			"GET /api/reports",
			"GET /metrics",
		},
	})
}

// HandleHealth returns the health status of the application
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status": "ok",
		"services": map[string]string{
			"database": "unknown",
		},
	}

	if h.app.History() != nil {
		if err := h.app.History().Health(r.Context()); err == nil {
			status["services"].(map[string]string)["database"] = "connected"
		} else {
			status["services"].(map[string]string)["database"] = "disconnected"
			status["status"] = "degraded"
		}
	} else {
		status["services"].(map[string]string)["database"] = "not_configured"
	}

	cbStatus := services.GetGlobalRegistry().Status()
	status["circuit_breakers"] = cbStatus

	for _, cb := range cbStatus {
		if cb.State == "open" {
			status["status"] = "degraded"
			break
		}
	}

	h.jsonResponse(w, status)
}

// HandleAnalyze runs the analysis pipeline for a prompt
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req models.AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		h.jsonError(w, "prompt is required", http.StatusBadRequest)
		return
	}

	report, err := h.app.Analyze(r.Context(), req)
	if err != nil {
		if errors.Is(err, app.ErrQueueFull) {
			h.jsonError(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		observability.Error("analysis request failed", "error", err)
		h.jsonError(w, "analysis failed", http.StatusInternalServerError)
		return
	}

	h.jsonResponse(w, report)
}

// HandleMarketSnapshot returns quotes and outlooks for the tracked symbols
func (h *Handler) HandleMarketSnapshot(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, h.app.Snapshot(r.Context()))
}

// HandleRecentReports returns recent persisted report traces. Without a
// configured database the history is simply empty, not an error.
func (h *Handler) HandleRecentReports(w http.ResponseWriter, r *http.Request) {
	if h.app.History() == nil {
		h.jsonResponse(w, map[string]interface{}{
			"reports": []models.ReportRecord{},
			"count":   0,
		})
		return
	}

	limit := h.ParseLimitParam(r, 20)
	records, err := h.app.History().RecentReports(r.Context(), limit)
	if err != nil {
		observability.Error("failed to load report history", "error", err)
		h.jsonError(w, "failed to load reports", http.StatusInternalServerError)
		return
	}

	h.jsonResponse(w, map[string]interface{}{
		"reports": records,
		"count":   len(records),
	})
}

// ParseLimitParam parses the limit query parameter with a default
func (h *Handler) ParseLimitParam(r *http.Request, defaultLimit int) int {
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			return l
		}
	}
	return defaultLimit
}

func (h *Handler) jsonResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
