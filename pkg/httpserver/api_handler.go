package httpserver

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/mvelez/dexarb/pkg/types"
	"go.uber.org/zap"
)

const defaultRecentLimit = 20

// Ledger is the execution ledger read API exposed over HTTP.
type Ledger interface {
	GetStatus(executionID string) (*types.ExecutionResult, bool)
	GetRecent(limit int) []*types.ExecutionResult
	Stats() types.LedgerStats
}

// OpportunityFinder surfaces the scanner's current view on demand.
type OpportunityFinder interface {
	FindOpportunities(minProfitPct, maxTradeAmount float64) []*types.ArbitrageOpportunity
}

type apiHandler struct {
	ledger         Ledger
	opportunities  OpportunityFinder
	minProfitPct   float64
	maxTradeAmount float64
	logger         *zap.Logger
}

func newAPIHandler(cfg *Config) *apiHandler {
	return &apiHandler{
		ledger:         cfg.Ledger,
		opportunities:  cfg.Opportunities,
		minProfitPct:   cfg.MinProfitPct,
		maxTradeAmount: cfg.MaxTradeAmount,
		logger:         cfg.Logger,
	}
}

func (h *apiHandler) handleExecutionStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, ok := h.ledger.GetStatus(id)
	if !ok {
		writeError(w, http.StatusNotFound, "execution not found")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *apiHandler) handleRecentExecutions(w http.ResponseWriter, r *http.Request) {
	limit := defaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	writeJSON(w, http.StatusOK, h.ledger.GetRecent(limit))
}

func (h *apiHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ledger.Stats())
}

func (h *apiHandler) handleOpportunities(w http.ResponseWriter, r *http.Request) {
	opportunities := h.opportunities.FindOpportunities(h.minProfitPct, h.maxTradeAmount)
	if opportunities == nil {
		opportunities = []*types.ArbitrageOpportunity{}
	}
	writeJSON(w, http.StatusOK, opportunities)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
