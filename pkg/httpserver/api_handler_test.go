package httpserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/mvelez/dexarb/pkg/healthprobe"
	"github.com/mvelez/dexarb/pkg/types"
	"go.uber.org/zap"
)

type fakeLedger struct {
	results map[string]*types.ExecutionResult
	recent  []*types.ExecutionResult
	stats   types.LedgerStats

	lastLimit int
}

func (f *fakeLedger) GetStatus(executionID string) (*types.ExecutionResult, bool) {
	r, ok := f.results[executionID]
	return r, ok
}

func (f *fakeLedger) GetRecent(limit int) []*types.ExecutionResult {
	f.lastLimit = limit
	if limit < len(f.recent) {
		return f.recent[:limit]
	}
	return f.recent
}

func (f *fakeLedger) Stats() types.LedgerStats {
	return f.stats
}

type fakeFinder struct {
	opportunities []*types.ArbitrageOpportunity

	minProfitPct   float64
	maxTradeAmount float64
}

func (f *fakeFinder) FindOpportunities(minProfitPct, maxTradeAmount float64) []*types.ArbitrageOpportunity {
	f.minProfitPct = minProfitPct
	f.maxTradeAmount = maxTradeAmount
	return f.opportunities
}

func newTestServer(ledger Ledger, finder OpportunityFinder) *Server {
	logger, _ := zap.NewDevelopment()
	return New(&Config{
		Port:           "0",
		Logger:         logger,
		HealthChecker:  healthprobe.New(),
		Ledger:         ledger,
		Opportunities:  finder,
		MinProfitPct:   0.5,
		MaxTradeAmount: 10000,
	})
}

func doRequest(s *Server, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleExecutionStatus(t *testing.T) {
	ledger := &fakeLedger{
		results: map[string]*types.ExecutionResult{
			"exec-1": {ExecutionID: "exec-1", Pair: "WETH/USDC", Status: types.ExecutionCompleted},
		},
	}
	s := newTestServer(ledger, &fakeFinder{})

	rec := doRequest(s, "/api/executions/exec-1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var result types.ExecutionResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.ExecutionID != "exec-1" || result.Status != types.ExecutionCompleted {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestHandleExecutionStatusNotFound(t *testing.T) {
	s := newTestServer(&fakeLedger{results: map[string]*types.ExecutionResult{}}, &fakeFinder{})

	rec := doRequest(s, "/api/executions/missing")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "execution not found") {
		t.Errorf("expected error message in body, got %s", rec.Body.String())
	}
}

func TestHandleRecentExecutions(t *testing.T) {
	ledger := &fakeLedger{
		recent: []*types.ExecutionResult{
			{ExecutionID: "exec-2"},
			{ExecutionID: "exec-1"},
		},
	}
	s := newTestServer(ledger, &fakeFinder{})

	tests := []struct {
		name      string
		path      string
		wantCode  int
		wantLimit int
	}{
		{name: "default-limit", path: "/api/executions", wantCode: http.StatusOK, wantLimit: defaultRecentLimit},
		{name: "explicit-limit", path: "/api/executions?limit=5", wantCode: http.StatusOK, wantLimit: 5},
		{name: "zero-limit", path: "/api/executions?limit=0", wantCode: http.StatusBadRequest},
		{name: "negative-limit", path: "/api/executions?limit=-3", wantCode: http.StatusBadRequest},
		{name: "garbage-limit", path: "/api/executions?limit=abc", wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(s, tt.path)
			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rec.Code)
			}
			if tt.wantCode == http.StatusOK && ledger.lastLimit != tt.wantLimit {
				t.Errorf("expected limit %d passed to ledger, got %d", tt.wantLimit, ledger.lastLimit)
			}
		})
	}
}

func TestHandleStats(t *testing.T) {
	ledger := &fakeLedger{
		stats: types.LedgerStats{
			TotalExecutions:      4,
			SuccessfulExecutions: 3,
			SuccessRate:          0.75,
			NetProfitUSD:         130,
		},
	}
	s := newTestServer(ledger, &fakeFinder{})

	rec := doRequest(s, "/api/stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var stats types.LedgerStats
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if stats.TotalExecutions != 4 || stats.SuccessRate != 0.75 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestHandleOpportunities(t *testing.T) {
	finder := &fakeFinder{
		opportunities: []*types.ArbitrageOpportunity{
			{Pair: "WETH/USDC", BuyVenue: "uniswap_v3", SellVenue: "sushiswap"},
		},
	}
	s := newTestServer(&fakeLedger{}, finder)

	rec := doRequest(s, "/api/opportunities")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	if finder.minProfitPct != 0.5 || finder.maxTradeAmount != 10000 {
		t.Errorf("expected configured thresholds passed through, got %f/%f",
			finder.minProfitPct, finder.maxTradeAmount)
	}

	var opportunities []*types.ArbitrageOpportunity
	if err := json.NewDecoder(rec.Body).Decode(&opportunities); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(opportunities) != 1 || opportunities[0].Pair != "WETH/USDC" {
		t.Errorf("unexpected opportunities: %+v", opportunities)
	}
}

func TestHandleOpportunitiesEmpty(t *testing.T) {
	s := newTestServer(&fakeLedger{}, &fakeFinder{})

	rec := doRequest(s, "/api/opportunities")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	// nil from the finder serializes as an empty array, not null.
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("expected empty array, got %s", rec.Body.String())
	}
}

func TestHealthRoutes(t *testing.T) {
	s := newTestServer(&fakeLedger{}, &fakeFinder{})

	if rec := doRequest(s, "/health"); rec.Code != http.StatusOK {
		t.Errorf("expected health 200, got %d", rec.Code)
	}
	if rec := doRequest(s, "/ready"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected ready 503 before SetReady, got %d", rec.Code)
	}

	s.healthChecker.SetReady(true)

	if rec := doRequest(s, "/ready"); rec.Code != http.StatusOK {
		t.Errorf("expected ready 200 after SetReady, got %d", rec.Code)
	}
}
